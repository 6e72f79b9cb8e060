package repository

import (
	"time"

	"antrean-backend/internal/domain/entity"

	"gorm.io/gorm"
)

type IdempotencyRepository interface {
	Create(db *gorm.DB, record *entity.IdempotencyRecord) error
	FindByKey(db *gorm.DB, key string) (*entity.IdempotencyRecord, error)
	DeleteExpired(db *gorm.DB, now time.Time) (int64, error)
}
