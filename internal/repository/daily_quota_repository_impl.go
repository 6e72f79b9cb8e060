package repository

import (
	"errors"
	"time"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"gorm.io/gorm"
)

type dailyQuotaRepository struct{}

func NewDailyQuotaRepository() domainRepo.DailyQuotaRepository {
	return &dailyQuotaRepository{}
}

func (r *dailyQuotaRepository) Create(db *gorm.DB, quota *entity.DailyQuota) error {
	return db.Create(quota).Error
}

func (r *dailyQuotaRepository) FindByScopeAndDate(db *gorm.DB, scopeKey string, date time.Time) (*entity.DailyQuota, error) {
	var quota entity.DailyQuota
	err := db.Where("scope_key = ? AND quota_date = ?", scopeKey, date).First(&quota).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quota, nil
}

func (r *dailyQuotaRepository) FindFromDate(db *gorm.DB, from time.Time, limit, offset int) ([]entity.DailyQuota, error) {
	var quotas []entity.DailyQuota
	err := db.Where("quota_date >= ?", from).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&quotas).Error
	if err != nil {
		return nil, err
	}
	return quotas, nil
}

// IncrementAllocated applies delta with the bounds guard in the statement
// itself, so concurrent write-throughs can never push the count below zero
// or above capacity.
func (r *dailyQuotaRepository) IncrementAllocated(db *gorm.DB, scopeKey string, date time.Time, delta int) (int64, error) {
	query := db.Model(&entity.DailyQuota{}).
		Where("scope_key = ? AND quota_date = ?", scopeKey, date)
	if delta > 0 {
		query = query.Where("allocated + ? <= capacity", delta)
	} else {
		query = query.Where("allocated + ? >= 0", delta)
	}
	result := query.Update("allocated", gorm.Expr("allocated + ?", delta))
	return result.RowsAffected, result.Error
}

func (r *dailyQuotaRepository) SetAllocated(db *gorm.DB, scopeKey string, date time.Time, allocated int) error {
	return db.Model(&entity.DailyQuota{}).
		Where("scope_key = ? AND quota_date = ?", scopeKey, date).
		Update("allocated", allocated).Error
}

func (r *dailyQuotaRepository) UpdateCapacity(db *gorm.DB, scopeKey string, date time.Time, delta int) error {
	return db.Model(&entity.DailyQuota{}).
		Where("scope_key = ? AND quota_date = ?", scopeKey, date).
		Update("capacity", gorm.Expr("capacity + ?", delta)).Error
}
