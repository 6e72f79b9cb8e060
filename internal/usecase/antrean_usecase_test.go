package usecase

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"antrean-backend/config"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/gateway"
	"antrean-backend/internal/repository"
	"antrean-backend/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixture struct {
	db      *gorm.DB
	ledger  *service.QuotaLedger
	antrean AntreanUsecase
	counter CounterUsecase

	clinic *entity.Clinic
	doctor *entity.Doctor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Clinic{},
		&entity.Doctor{},
		&entity.DoctorSchedule{},
		&entity.DoctorLeave{},
		&entity.DailyQuota{},
		&entity.Ticket{},
		&entity.Counter{},
		&entity.IdempotencyRecord{},
	))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	clinicRepo := repository.NewClinicRepository()
	doctorRepo := repository.NewDoctorRepository()
	scheduleRepo := repository.NewDoctorScheduleRepository()
	leaveRepo := repository.NewDoctorLeaveRepository()
	quotaRepo := repository.NewDailyQuotaRepository()
	ticketRepo := repository.NewTicketRepository()
	counterRepo := repository.NewCounterRepository()
	idemRepo := repository.NewIdempotencyRepository()

	resolver := service.NewScheduleResolver(db, log, scheduleRepo, leaveRepo)
	ledger := service.NewQuotaLedger(db, redisClient, log, quotaRepo, ticketRepo, clinicRepo)
	t.Cleanup(ledger.Stop)

	eligibility := gateway.NewEligibilityClient(config.BPJSConfig{}, log)
	identity := gateway.NewIdentityValidator(config.DukcapilConfig{Bypass: true}, log)

	antrean := NewAntreanUsecase(db, log, clinicRepo, doctorRepo, ticketRepo,
		counterRepo, idemRepo, resolver, ledger, eligibility, identity, config.QuotaScopeClinic)
	counter := NewCounterUsecase(db, log, counterRepo, ticketRepo, clinicRepo, nil)

	f := &fixture{
		db:      db,
		ledger:  ledger,
		antrean: antrean,
		counter: counter,
	}
	f.seedReferenceData(t)
	return f
}

// seedReferenceData creates one clinic with one doctor scheduled every day
// of the week, so any test date resolves.
func (f *fixture) seedReferenceData(t *testing.T) {
	t.Helper()

	f.clinic = &entity.Clinic{ID: uuid.New(), Code: "INT", Name: "Poli Penyakit Dalam", DailyQuota: 3}
	require.NoError(t, f.db.Create(f.clinic).Error)

	f.doctor = &entity.Doctor{ID: uuid.New(), Name: "dr. Ratna", ClinicID: &f.clinic.ID}
	require.NoError(t, f.db.Create(f.doctor).Error)

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		require.NoError(t, f.db.Create(&entity.DoctorSchedule{
			DoctorID:  f.doctor.ID,
			Weekday:   wd,
			StartTime: "08:00",
			EndTime:   "14:00",
			Capacity:  10,
		}).Error)
	}
}

func bookingDate() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
}

func ambilRequest(nik string) *dto.AmbilRequest {
	return &dto.AmbilRequest{
		NIK:            nik,
		KodePoli:       "INT",
		TanggalPeriksa: bookingDate().Format("2006-01-02"),
		Keluhan:        "demam",
	}
}

func TestAmbilIssuesSequentialBookingCodes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	datePart := bookingDate().Format("20060102")

	for i := 1; i <= 3; i++ {
		result, err := f.antrean.Ambil(ctx, ambilRequest(fmt.Sprintf("320401121290%04d", i)))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INT-%s-%03d", datePart, i), result.Kodebooking)
		assert.Equal(t, i, result.NomorAntrean)
		assert.Equal(t, "Poli Penyakit Dalam", result.NamaPoli)
		assert.Equal(t, "dr. Ratna", result.NamaDokter)
		assert.Equal(t, 3-i, result.SisaKuota)
	}

	// The clinic quota of 3 is exhausted even though the doctor slot
	// could hold more.
	_, err := f.antrean.Ambil(ctx, ambilRequest("3204011212900099"))
	assert.ErrorIs(t, err, service.ErrQuotaExceeded)
}

func TestAmbilAfterCancelSkipsFreedSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	datePart := bookingDate().Format("20060102")

	var second *dto.AmbilResponse
	for i := 1; i <= 3; i++ {
		result, err := f.antrean.Ambil(ctx, ambilRequest(fmt.Sprintf("320401121290%04d", i)))
		require.NoError(t, err)
		if i == 2 {
			second = result
		}
	}

	require.NoError(t, f.antrean.Batal(ctx, &dto.BatalRequest{Kodebooking: second.Kodebooking}))

	// The freed slot is bookable again, but the old number stays burned.
	result, err := f.antrean.Ambil(ctx, ambilRequest("3204011212900099"))
	require.NoError(t, err)
	assert.Equal(t, "INT-"+datePart+"-004", result.Kodebooking)
	assert.Equal(t, 4, result.NomorAntrean)
}

func TestAmbilIdempotentReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := ambilRequest("3204011212900001")
	req.RequestID = "req-abc-123"

	first, err := f.antrean.Ambil(ctx, req)
	require.NoError(t, err)

	replay, err := f.antrean.Ambil(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.Kodebooking, replay.Kodebooking)
	assert.Equal(t, first.NomorAntrean, replay.NomorAntrean)

	// The replay consumed no quota: only one ticket exists and two slots
	// remain.
	var count int64
	require.NoError(t, f.db.Model(&entity.Ticket{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	status, err := f.antrean.StatusForDate(ctx, "INT", bookingDate())
	require.NoError(t, err)
	assert.Equal(t, 2, status.Remaining)
}

func TestAmbilRejectsPastDate(t *testing.T) {
	f := newFixture(t)

	req := ambilRequest("3204011212900001")
	req.TanggalPeriksa = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	_, err := f.antrean.Ambil(context.Background(), req)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestAmbilUnknownClinic(t *testing.T) {
	f := newFixture(t)

	req := ambilRequest("3204011212900001")
	req.KodePoli = "XYZ"

	_, err := f.antrean.Ambil(context.Background(), req)
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestAmbilMalformedNIK(t *testing.T) {
	f := newFixture(t)

	// Bypass mode still enforces the 16-digit structural check.
	req := ambilRequest("12345")

	_, err := f.antrean.Ambil(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestAmbilFullDayLeaveMakesClinicUnavailable(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.db.Create(&entity.DoctorLeave{
		DoctorID:  f.doctor.ID,
		LeaveDate: bookingDate(),
		Reason:    "cuti",
	}).Error)

	_, err := f.antrean.Ambil(context.Background(), ambilRequest("3204011212900001"))
	assert.ErrorIs(t, err, service.ErrDoctorUnavailable)
}

func TestBatalUnknownBooking(t *testing.T) {
	f := newFixture(t)

	err := f.antrean.Batal(context.Background(), &dto.BatalRequest{Kodebooking: "INT-20250101-001"})
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestBatalTwiceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.antrean.Ambil(ctx, ambilRequest("3204011212900001"))
	require.NoError(t, err)

	require.NoError(t, f.antrean.Batal(ctx, &dto.BatalRequest{Kodebooking: result.Kodebooking}))

	err = f.antrean.Batal(ctx, &dto.BatalRequest{Kodebooking: result.Kodebooking})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusForDateProjection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Untouched date reports full availability.
	status, err := f.antrean.StatusForDate(ctx, "INT", bookingDate())
	require.NoError(t, err)
	assert.Equal(t, 3, status.Capacity)
	assert.Equal(t, 0, status.Allocated)
	assert.Equal(t, 3, status.Remaining)
	assert.Empty(t, status.CurrentlyServing)

	_, err = f.antrean.Ambil(ctx, ambilRequest("3204011212900001"))
	require.NoError(t, err)
	_, err = f.antrean.Ambil(ctx, ambilRequest("3204011212900002"))
	require.NoError(t, err)

	status, err = f.antrean.StatusForDate(ctx, "INT", bookingDate())
	require.NoError(t, err)
	assert.Equal(t, 2, status.Allocated)
	assert.Equal(t, 1, status.Remaining)
}
