package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrQuotaExceeded is returned when a scope+date has no remaining capacity.
var ErrQuotaExceeded = errors.New("daily quota is exhausted")

// reserveScript atomically consumes one quota slot and issues the next
// sequence number. Runs entirely inside Redis, so concurrent bookings for
// the same scope+date cannot interleave between the two counters.
//
// KEYS[1] = remaining-quota key, KEYS[2] = sequence key.
// Returns: -2 when keys are not seeded yet, -1 when quota is exhausted,
// otherwise the issued (1-based) sequence number.
var reserveScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('EXISTS', KEYS[2]) == 0 then
		return -2
	end
	local remaining = redis.call('DECR', KEYS[1])
	if remaining < 0 then
		redis.call('INCR', KEYS[1])
		return -1
	end
	return redis.call('INCR', KEYS[2])
`)

// releaseScript restores one quota slot, clamped at the configured capacity.
// The sequence key is deliberately untouched: sequence numbers are never
// recycled, even after cancellation.
//
// KEYS[1] = remaining-quota key, KEYS[2] = capacity key.
var releaseScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[2]) == 0 then
		return -2
	end
	local cap = tonumber(redis.call('GET', KEYS[2]))
	local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
	if cur >= cap then
		return cur
	end
	return redis.call('INCR', KEYS[1])
`)

const (
	quotaKeyPrefix    = "antrean:quota:"
	seqKeyPrefix      = "antrean:seq:"
	capacityKeyPrefix = "antrean:cap:"

	scopeKindClinic = "clinic"
	scopeKindDoctor = "doctor"

	// Batch size for startup sync. The pipeline is created and executed
	// inside the batch loop to bound memory.
	syncBatchSize = 500

	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// Scope identifies one quota ledger account. QuotaKey is the capacity scope
// ("clinic:{code}" or "doctor:{uuid}" per deployment policy); SeqKey is
// always the clinic scope so booking codes stay unique per clinic+date.
type Scope struct {
	QuotaKey string
	SeqKey   string
	ClinicID uuid.UUID
	DoctorID *uuid.UUID
}

// ClinicScope keys both quota and sequence on the clinic.
func ClinicScope(clinicCode string, clinicID uuid.UUID) Scope {
	key := scopeKindClinic + ":" + clinicCode
	return Scope{QuotaKey: key, SeqKey: key, ClinicID: clinicID}
}

// DoctorScope keys quota on the doctor while the sequence counter stays on
// the clinic.
func DoctorScope(doctorID uuid.UUID, clinicCode string, clinicID uuid.UUID) Scope {
	return Scope{
		QuotaKey: scopeKindDoctor + ":" + doctorID.String(),
		SeqKey:   scopeKindClinic + ":" + clinicCode,
		ClinicID: clinicID,
		DoctorID: &doctorID,
	}
}

// QuotaStatus is the ledger's read-side projection for one scope+date.
type QuotaStatus struct {
	Capacity  int
	Allocated int
	Remaining int
}

// QuotaLedger is the single source of truth for "is there room". Redis is
// the runtime admission authority (one Lua script per decision); the
// daily_quotas row is written through for durability and rebuilt into Redis
// on startup.
type QuotaLedger struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	quotaRepo   domainRepo.DailyQuotaRepository
	ticketRepo  domainRepo.TicketRepository
	clinicRepo  domainRepo.ClinicRepository

	// Per-scope+date mutex serializing key seeding and capacity
	// adjustments. Reservations themselves never take it.
	scopeMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64
}

// NewQuotaLedger creates the ledger and starts the background mutex
// cleanup goroutine. Call Stop during graceful shutdown.
func NewQuotaLedger(
	db *gorm.DB,
	redisClient *redis.Client,
	log *logrus.Logger,
	quotaRepo domainRepo.DailyQuotaRepository,
	ticketRepo domainRepo.TicketRepository,
	clinicRepo domainRepo.ClinicRepository,
) *QuotaLedger {
	l := &QuotaLedger{
		db:          db,
		redisClient: redisClient,
		log:         log,
		quotaRepo:   quotaRepo,
		ticketRepo:  ticketRepo,
		clinicRepo:  clinicRepo,
		stopChan:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupMutexMapLoop()

	return l
}

// Stop shuts down background work. Safe to call multiple times.
func (l *QuotaLedger) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("QuotaLedger stopped")
	}
}

// Reserve atomically consumes one slot for scope+date and returns the issued
// sequence number (1-based). Returns ErrQuotaExceeded without side effects
// when the scope is full. Capacity is used to seed the ledger lazily on the
// first booking of the day.
func (l *QuotaLedger) Reserve(ctx context.Context, scope Scope, date time.Time, capacity int) (int, error) {
	quotaKey := l.quotaKey(scope, date)
	seqKey := l.seqKey(scope, date)

	for attempt := 0; attempt < 2; attempt++ {
		result, err := reserveScript.Run(ctx, l.redisClient, []string{quotaKey, seqKey}).Int()
		if err != nil {
			l.log.Warnf("Failed reserve script for %s: %+v", quotaKey, err)
			return 0, fmt.Errorf("reserve %s: %w", quotaKey, err)
		}

		switch {
		case result == -2:
			if err := l.ensureKeys(ctx, scope, date, capacity); err != nil {
				return 0, err
			}
			continue
		case result == -1:
			return 0, ErrQuotaExceeded
		default:
			if _, err := l.quotaRepo.IncrementAllocated(l.db.WithContext(ctx), scope.QuotaKey, date, 1); err != nil {
				// Redis already admitted the booking; the row is healed
				// on the next re-sync.
				l.log.Warnf("Failed allocated write-through for %s: %+v", scope.QuotaKey, err)
			}
			l.log.Debugf("Reserved slot for %s: sequence=%d", quotaKey, result)
			return result, nil
		}
	}

	return 0, fmt.Errorf("reserve %s: keys not seeded after ensure", quotaKey)
}

// Release restores one quota slot after a cancellation. The sequence counter
// is never rewound.
func (l *QuotaLedger) Release(ctx context.Context, scope Scope, date time.Time) error {
	mt := l.getScopeMutex(l.quotaKey(scope, date))
	mt.mu.Lock()
	defer mt.mu.Unlock()

	quotaKey := l.quotaKey(scope, date)
	capKey := l.capacityKey(scope, date)

	result, err := releaseScript.Run(ctx, l.redisClient, []string{quotaKey, capKey}).Int()
	if err != nil {
		l.log.Warnf("Failed release script for %s: %+v", quotaKey, err)
		return fmt.Errorf("release %s: %w", quotaKey, err)
	}
	if result == -2 {
		// Keys not seeded (expired or never booked through this node).
		// The DB decrement below still records the release; Redis is
		// re-seeded from the row on the next reserve.
		l.log.Debugf("Release for unseeded scope %s, DB write-through only", quotaKey)
	}

	if _, err := l.quotaRepo.IncrementAllocated(l.db.WithContext(ctx), scope.QuotaKey, date, -1); err != nil {
		l.log.Warnf("Failed allocated write-through (release) for %s: %+v", scope.QuotaKey, err)
	}

	l.log.Debugf("Released slot for %s", quotaKey)
	return nil
}

// Status reports capacity/allocated/remaining for scope+date. Reads Redis
// first and falls back to the daily_quotas row; defaultCapacity is reported
// when no booking has touched the scope yet.
func (l *QuotaLedger) Status(ctx context.Context, scope Scope, date time.Time, defaultCapacity int) (*QuotaStatus, error) {
	vals, err := l.redisClient.MGet(ctx, l.capacityKey(scope, date), l.quotaKey(scope, date)).Result()
	if err == nil && len(vals) == 2 && vals[0] != nil && vals[1] != nil {
		capacity := parseRedisInt(vals[0])
		remaining := parseRedisInt(vals[1])
		return &QuotaStatus{
			Capacity:  capacity,
			Allocated: capacity - remaining,
			Remaining: remaining,
		}, nil
	}
	if err != nil {
		l.log.Warnf("Failed status read for %s, falling back to DB: %+v", scope.QuotaKey, err)
	}

	row, err := l.quotaRepo.FindByScopeAndDate(l.db.WithContext(ctx), scope.QuotaKey, date)
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", scope.QuotaKey, err)
	}
	if row == nil {
		return &QuotaStatus{
			Capacity:  defaultCapacity,
			Allocated: 0,
			Remaining: defaultCapacity,
		}, nil
	}
	return &QuotaStatus{
		Capacity:  row.Capacity,
		Allocated: row.Allocated,
		Remaining: row.Capacity - row.Allocated,
	}, nil
}

// AdjustCapacity applies a capacity delta (schedule or clinic quota edit)
// to both Redis and the daily_quotas row. A negative delta never pushes the
// remaining quota below zero; already-issued tickets keep their slots.
func (l *QuotaLedger) AdjustCapacity(ctx context.Context, scope Scope, date time.Time, delta int) error {
	mt := l.getScopeMutex(l.quotaKey(scope, date))
	mt.mu.Lock()
	defer mt.mu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		l.log.Debugf("Skipping capacity delta for past date %s", date.Format("2006-01-02"))
		return nil
	}

	quotaKey := l.quotaKey(scope, date)
	capKey := l.capacityKey(scope, date)

	exists, err := l.redisClient.Exists(ctx, capKey).Result()
	if err != nil {
		return fmt.Errorf("adjust capacity %s: %w", quotaKey, err)
	}

	if exists > 0 {
		applied := delta
		if applied < 0 {
			remaining, err := l.redisClient.Get(ctx, quotaKey).Int()
			if err != nil && err != redis.Nil {
				return fmt.Errorf("adjust capacity %s: %w", quotaKey, err)
			}
			if remaining+applied < 0 {
				applied = -remaining
			}
		}

		pipe := l.redisClient.TxPipeline()
		pipe.IncrBy(ctx, capKey, int64(delta))
		pipe.IncrBy(ctx, quotaKey, int64(applied))
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("adjust capacity %s: %w", quotaKey, err)
		}
	}

	if err := l.quotaRepo.UpdateCapacity(l.db.WithContext(ctx), scope.QuotaKey, date, delta); err != nil {
		l.log.Warnf("Failed capacity write-through for %s: %+v", scope.QuotaKey, err)
	}

	l.log.Infof("Adjusted capacity for %s by %+d", quotaKey, delta)
	return nil
}

// SyncOnStartup rebuilds Redis from the database for today and future dates.
// Remaining quota and the max issued sequence are recomputed from the
// tickets table, not trusted from the write-through counters. Should run
// before accepting traffic.
func (l *QuotaLedger) SyncOnStartup(ctx context.Context) error {
	l.log.Info("Starting quota ledger re-sync from database...")
	startTime := time.Now()

	if err := l.redisClient.Ping(ctx).Err(); err != nil {
		l.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	offset := 0
	totalSynced := 0

	for {
		rows, err := l.quotaRepo.FindFromDate(l.db.WithContext(ctx), today, syncBatchSize, offset)
		if err != nil {
			return fmt.Errorf("query quota rows at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			if offset == 0 {
				l.log.Info("No active quota rows found for sync")
			}
			break
		}

		pipe := l.redisClient.TxPipeline()

		for _, row := range rows {
			usage, maxSeq, err := l.usageForScopeKey(ctx, row.ScopeKey, row.QuotaDate)
			if err != nil {
				l.log.Warnf("Failed usage query for %s: %+v", row.ScopeKey, err)
				continue
			}

			remaining := row.Capacity - int(usage.ActiveCount)
			if remaining < 0 {
				remaining = 0
			}
			ttl := l.calculateTTL(row.QuotaDate)
			dateSuffix := row.QuotaDate.Format("20060102")

			pipe.Set(ctx, capacityKeyPrefix+row.ScopeKey+":"+dateSuffix, row.Capacity, ttl)
			pipe.Set(ctx, quotaKeyPrefix+row.ScopeKey+":"+dateSuffix, remaining, ttl)
			if maxSeq >= 0 {
				pipe.Set(ctx, seqKeyPrefix+row.ScopeKey+":"+dateSuffix, maxSeq, ttl)
			}

			if err := l.quotaRepo.SetAllocated(l.db.WithContext(ctx), row.ScopeKey, row.QuotaDate, int(usage.ActiveCount)); err != nil {
				l.log.Warnf("Failed allocated heal for %s: %+v", row.ScopeKey, err)
			}
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(rows)

		if len(rows) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	l.log.Infof("Quota ledger re-sync completed: %d scopes synced in %v", totalSynced, time.Since(startTime))
	return nil
}

// ensureKeys lazily seeds the Redis keys for scope+date from the database:
// the daily_quotas row is created on first booking of the day, remaining
// quota and max sequence are recomputed from the tickets table.
func (l *QuotaLedger) ensureKeys(ctx context.Context, scope Scope, date time.Time, capacity int) error {
	mt := l.getScopeMutex(l.quotaKey(scope, date))
	mt.mu.Lock()
	defer mt.mu.Unlock()

	db := l.db.WithContext(ctx)

	// Lazy row creation: explicit check-then-insert inside one transaction.
	row, err := l.quotaRepo.FindByScopeAndDate(db, scope.QuotaKey, date)
	if err != nil {
		return fmt.Errorf("ensure quota row %s: %w", scope.QuotaKey, err)
	}
	if row == nil {
		err = db.Transaction(func(tx *gorm.DB) error {
			existing, err := l.quotaRepo.FindByScopeAndDate(tx, scope.QuotaKey, date)
			if err != nil {
				return err
			}
			if existing != nil {
				row = existing
				return nil
			}
			quota := &entity.DailyQuota{
				ScopeKey:  scope.QuotaKey,
				QuotaDate: date,
				Capacity:  capacity,
			}
			if err := l.quotaRepo.Create(tx, quota); err != nil {
				return err
			}
			row = quota
			return nil
		})
		if err != nil {
			return fmt.Errorf("create quota row %s: %w", scope.QuotaKey, err)
		}
	}

	var usage *domainRepo.TicketUsage
	if scope.DoctorID != nil {
		usage, err = l.ticketRepo.UsageForDoctorDate(db, *scope.DoctorID, date)
	} else {
		usage, err = l.ticketRepo.UsageForClinicDate(db, scope.ClinicID, date)
	}
	if err != nil {
		return fmt.Errorf("usage for %s: %w", scope.QuotaKey, err)
	}

	// The sequence counter always belongs to the clinic.
	clinicUsage, err := l.ticketRepo.UsageForClinicDate(db, scope.ClinicID, date)
	if err != nil {
		return fmt.Errorf("clinic usage for %s: %w", scope.SeqKey, err)
	}

	remaining := row.Capacity - int(usage.ActiveCount)
	if remaining < 0 {
		remaining = 0
	}
	ttl := l.calculateTTL(date)

	pipe := l.redisClient.TxPipeline()
	pipe.SetNX(ctx, l.capacityKey(scope, date), row.Capacity, ttl)
	pipe.SetNX(ctx, l.quotaKey(scope, date), remaining, ttl)
	pipe.SetNX(ctx, l.seqKey(scope, date), clinicUsage.MaxSequence, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("seed keys for %s: %w", scope.QuotaKey, err)
	}

	l.log.Infof("Seeded ledger keys for %s %s: capacity=%d remaining=%d maxSeq=%d",
		scope.QuotaKey, date.Format("2006-01-02"), row.Capacity, remaining, clinicUsage.MaxSequence)
	return nil
}

// usageForScopeKey resolves a stored scope key back to ticket usage. Used
// only by the startup re-sync. Returns maxSeq -1 when the scope does not own
// a sequence counter (doctor scopes).
func (l *QuotaLedger) usageForScopeKey(ctx context.Context, scopeKey string, date time.Time) (*domainRepo.TicketUsage, int, error) {
	db := l.db.WithContext(ctx)

	kind, ident, ok := strings.Cut(scopeKey, ":")
	if !ok {
		return nil, -1, fmt.Errorf("malformed scope key %q", scopeKey)
	}

	switch kind {
	case scopeKindClinic:
		clinic, err := l.clinicRepo.FindByCode(db, ident)
		if err != nil {
			return nil, -1, err
		}
		if clinic == nil {
			return nil, -1, fmt.Errorf("unknown clinic code %q in scope key", ident)
		}
		usage, err := l.ticketRepo.UsageForClinicDate(db, clinic.ID, date)
		if err != nil {
			return nil, -1, err
		}
		return usage, usage.MaxSequence, nil
	case scopeKindDoctor:
		doctorID, err := uuid.Parse(ident)
		if err != nil {
			return nil, -1, fmt.Errorf("malformed doctor scope key %q: %w", scopeKey, err)
		}
		usage, err := l.ticketRepo.UsageForDoctorDate(db, doctorID, date)
		if err != nil {
			return nil, -1, err
		}
		return usage, -1, nil
	default:
		return nil, -1, fmt.Errorf("unknown scope kind %q", kind)
	}
}

func (l *QuotaLedger) quotaKey(scope Scope, date time.Time) string {
	return quotaKeyPrefix + scope.QuotaKey + ":" + date.Format("20060102")
}

func (l *QuotaLedger) seqKey(scope Scope, date time.Time) string {
	return seqKeyPrefix + scope.SeqKey + ":" + date.Format("20060102")
}

func (l *QuotaLedger) capacityKey(scope Scope, date time.Time) string {
	return capacityKeyPrefix + scope.QuotaKey + ":" + date.Format("20060102")
}

func (l *QuotaLedger) getScopeMutex(key string) *mutexWithTimestamp {
	mt, _ := l.scopeMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (l *QuotaLedger) cleanupMutexMapLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			return
		case <-ticker.C:
			l.cleanupStaleMutexes()
		}
	}
}

func (l *QuotaLedger) cleanupStaleMutexes() {
	cutoff := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	l.scopeMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			// lastUsed is checked inside the lock so a concurrent user
			// cannot refresh it between check and delete.
			if mt.lastUsed.Load() < cutoff {
				l.scopeMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale scope mutexes", cleaned)
	}
}

// calculateTTL keeps keys alive until 24 hours after the service date.
func (l *QuotaLedger) calculateTTL(date time.Time) time.Duration {
	expireAt := date.AddDate(0, 0, 1)
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return 1 * time.Minute
	}
	return ttl
}

func parseRedisInt(v interface{}) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}
