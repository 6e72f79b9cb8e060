package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestLedger(t *testing.T) (*QuotaLedger, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	redisClient := setupTestRedis(t)

	ledger := NewQuotaLedger(db, redisClient, testLogger(),
		repository.NewDailyQuotaRepository(),
		repository.NewTicketRepository(),
		repository.NewClinicRepository(),
	)
	t.Cleanup(ledger.Stop)

	return ledger, db
}

func testDate() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
}

func seedClinic(t *testing.T, db *gorm.DB, code string, quota int) *entity.Clinic {
	t.Helper()
	clinic := &entity.Clinic{ID: uuid.New(), Code: code, Name: "Poli " + code, DailyQuota: quota}
	require.NoError(t, db.Create(clinic).Error)
	return clinic
}

func TestQuotaLedgerReserveIssuesSequentialNumbers(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 3)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		seq, err := ledger.Reserve(ctx, scope, date, 3)
		require.NoError(t, err)
		assert.Equal(t, want, seq)
	}

	_, err := ledger.Reserve(ctx, scope, date, 3)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// The durable row followed the reservations.
	var row entity.DailyQuota
	require.NoError(t, db.Where("scope_key = ?", scope.QuotaKey).First(&row).Error)
	assert.Equal(t, 3, row.Capacity)
	assert.Equal(t, 3, row.Allocated)
}

func TestQuotaLedgerConcurrentReserveNeverOversells(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 3)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()

	const attempts = 10
	results := make([]int, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ledger.Reserve(context.Background(), scope, date, 3)
		}(i)
	}
	wg.Wait()

	var issued []int
	exhausted := 0
	for i := 0; i < attempts; i++ {
		if errs[i] == nil {
			issued = append(issued, results[i])
		} else {
			assert.ErrorIs(t, errs[i], ErrQuotaExceeded)
			exhausted++
		}
	}

	require.Len(t, issued, 3)
	assert.Equal(t, attempts-3, exhausted)

	sort.Ints(issued)
	assert.Equal(t, []int{1, 2, 3}, issued)
}

func TestQuotaLedgerReleaseNeverRecyclesSequence(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 2)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	seq1, err := ledger.Reserve(ctx, scope, date, 2)
	require.NoError(t, err)
	seq2, err := ledger.Reserve(ctx, scope, date, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, seq1)
	assert.Equal(t, 2, seq2)

	_, err = ledger.Reserve(ctx, scope, date, 2)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, ledger.Release(ctx, scope, date))

	// The freed slot is admitted, but the sequence moves forward.
	seq3, err := ledger.Reserve(ctx, scope, date, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, seq3)
}

func TestQuotaLedgerReleaseClampsAtCapacity(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 2)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	_, err := ledger.Reserve(ctx, scope, date, 2)
	require.NoError(t, err)

	require.NoError(t, ledger.Release(ctx, scope, date))
	require.NoError(t, ledger.Release(ctx, scope, date))
	require.NoError(t, ledger.Release(ctx, scope, date))

	status, err := ledger.Status(ctx, scope, date, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Capacity)
	assert.Equal(t, 2, status.Remaining)
}

func TestQuotaLedgerStatus(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 5)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	// Untouched scope reports the configured default.
	status, err := ledger.Status(ctx, scope, date, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, status.Capacity)
	assert.Equal(t, 0, status.Allocated)
	assert.Equal(t, 5, status.Remaining)

	_, err = ledger.Reserve(ctx, scope, date, 5)
	require.NoError(t, err)
	_, err = ledger.Reserve(ctx, scope, date, 5)
	require.NoError(t, err)

	status, err = ledger.Status(ctx, scope, date, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, status.Capacity)
	assert.Equal(t, 2, status.Allocated)
	assert.Equal(t, 3, status.Remaining)
}

func TestQuotaLedgerAdjustCapacity(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 3)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	_, err := ledger.Reserve(ctx, scope, date, 3)
	require.NoError(t, err)
	_, err = ledger.Reserve(ctx, scope, date, 3)
	require.NoError(t, err)

	require.NoError(t, ledger.AdjustCapacity(ctx, scope, date, 2))

	status, err := ledger.Status(ctx, scope, date, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, status.Capacity)
	assert.Equal(t, 3, status.Remaining)

	// Shrinking below what is already booked clamps the remaining quota at
	// zero instead of going negative.
	require.NoError(t, ledger.AdjustCapacity(ctx, scope, date, -4))

	status, err = ledger.Status(ctx, scope, date, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Capacity)
	assert.Equal(t, 0, status.Remaining)

	_, err = ledger.Reserve(ctx, scope, date, 3)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestQuotaLedgerSyncOnStartup(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 5)
	scope := ClinicScope(clinic.Code, clinic.ID)
	date := testDate()
	ctx := context.Background()

	// Durable state from a previous run: capacity 5, three issued sequences
	// of which one was cancelled. The write-through counter is deliberately
	// wrong to prove the sync recomputes from tickets.
	require.NoError(t, db.Create(&entity.DailyQuota{
		ScopeKey: scope.QuotaKey, QuotaDate: date, Capacity: 5, Allocated: 99,
	}).Error)

	for seq, status := range map[int]entity.TicketStatus{
		1: entity.TicketStatusWaiting,
		2: entity.TicketStatusCancelled,
		3: entity.TicketStatusWaiting,
	} {
		require.NoError(t, db.Create(&entity.Ticket{
			ID:          uuid.New(),
			ClinicID:    clinic.ID,
			ServiceDate: date,
			Sequence:    seq,
			BookingCode: FormatBookingCode(clinic.Code, date, seq),
			NIK:         "3204011212900001",
			Status:      status,
		}).Error)
	}

	require.NoError(t, ledger.SyncOnStartup(ctx))

	// Two active tickets out of five; cancelled seq 2 freed its slot.
	status, err := ledger.Status(ctx, scope, date, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, status.Capacity)
	assert.Equal(t, 3, status.Remaining)

	// The next reservation continues after the highest issued sequence,
	// including the cancelled one.
	seq, err := ledger.Reserve(ctx, scope, date, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, seq)

	// Allocated was healed from the tickets table.
	var row entity.DailyQuota
	require.NoError(t, db.Where("scope_key = ?", scope.QuotaKey).First(&row).Error)
	assert.Equal(t, 3, row.Allocated)
}

func TestDoctorScopeKeepsClinicSequence(t *testing.T) {
	ledger, db := newTestLedger(t)
	clinic := seedClinic(t, db, "INT", 10)
	doctorA := uuid.New()
	doctorB := uuid.New()
	date := testDate()
	ctx := context.Background()

	scopeA := DoctorScope(doctorA, clinic.Code, clinic.ID)
	scopeB := DoctorScope(doctorB, clinic.Code, clinic.ID)

	seq1, err := ledger.Reserve(ctx, scopeA, date, 2)
	require.NoError(t, err)
	seq2, err := ledger.Reserve(ctx, scopeB, date, 2)
	require.NoError(t, err)
	seq3, err := ledger.Reserve(ctx, scopeA, date, 2)
	require.NoError(t, err)

	// Quota is consumed per doctor, but the sequence counter is shared at
	// the clinic so booking codes stay unique.
	assert.Equal(t, []int{1, 2, 3}, []int{seq1, seq2, seq3})

	// Doctor A is now full; doctor B still has room.
	_, err = ledger.Reserve(ctx, scopeA, date, 2)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	seq4, err := ledger.Reserve(ctx, scopeB, date, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, seq4)
}
