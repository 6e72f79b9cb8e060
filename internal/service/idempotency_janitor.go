package service

import (
	"sync"
	"time"

	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const janitorInterval = 1 * time.Hour

// IdempotencyJanitor periodically deletes expired idempotency records.
// Records outlive their booking date by one day, so the table stays small
// without ever breaking a same-day replay.
type IdempotencyJanitor struct {
	db       *gorm.DB
	log      *logrus.Logger
	idemRepo domainRepo.IdempotencyRepository

	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewIdempotencyJanitor(db *gorm.DB, log *logrus.Logger, idemRepo domainRepo.IdempotencyRepository) *IdempotencyJanitor {
	j := &IdempotencyJanitor{
		db:       db,
		log:      log,
		idemRepo: idemRepo,
		stopChan: make(chan struct{}),
	}

	j.wg.Add(1)
	go j.loop()

	return j
}

func (j *IdempotencyJanitor) Stop() {
	j.once.Do(func() {
		close(j.stopChan)
		j.wg.Wait()
	})
}

func (j *IdempotencyJanitor) loop() {
	defer j.wg.Done()

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *IdempotencyJanitor) sweep() {
	deleted, err := j.idemRepo.DeleteExpired(j.db, time.Now().UTC())
	if err != nil {
		j.log.Warnf("Failed idempotency sweep: %+v", err)
		return
	}
	if deleted > 0 {
		j.log.Infof("Swept %d expired idempotency records", deleted)
	}
}
