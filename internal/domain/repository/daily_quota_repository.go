package repository

import (
	"time"

	"antrean-backend/internal/domain/entity"

	"gorm.io/gorm"
)

type DailyQuotaRepository interface {
	Create(db *gorm.DB, quota *entity.DailyQuota) error
	FindByScopeAndDate(db *gorm.DB, scopeKey string, date time.Time) (*entity.DailyQuota, error)
	FindFromDate(db *gorm.DB, from time.Time, limit, offset int) ([]entity.DailyQuota, error)
	// IncrementAllocated adds delta to the allocated count, clamped to
	// [0, capacity]. Returns affected rows.
	IncrementAllocated(db *gorm.DB, scopeKey string, date time.Time, delta int) (int64, error)
	SetAllocated(db *gorm.DB, scopeKey string, date time.Time, allocated int) error
	UpdateCapacity(db *gorm.DB, scopeKey string, date time.Time, delta int) error
}
