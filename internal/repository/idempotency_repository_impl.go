package repository

import (
	"errors"
	"time"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"gorm.io/gorm"
)

type idempotencyRepository struct{}

func NewIdempotencyRepository() domainRepo.IdempotencyRepository {
	return &idempotencyRepository{}
}

func (r *idempotencyRepository) Create(db *gorm.DB, record *entity.IdempotencyRecord) error {
	return db.Create(record).Error
}

func (r *idempotencyRepository) FindByKey(db *gorm.DB, key string) (*entity.IdempotencyRecord, error) {
	var record entity.IdempotencyRecord
	err := db.Where("request_key = ?", key).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *idempotencyRepository) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("expires_at < ?", now).Delete(&entity.IdempotencyRecord{})
	return result.RowsAffected, result.Error
}
