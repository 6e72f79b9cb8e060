package repository

import (
	"errors"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type counterRepository struct{}

func NewCounterRepository() domainRepo.CounterRepository {
	return &counterRepository{}
}

func (r *counterRepository) Create(db *gorm.DB, counter *entity.Counter) error {
	return db.Create(counter).Error
}

func (r *counterRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Counter, error) {
	var counter entity.Counter
	err := db.Where("id = ?", id).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (r *counterRepository) FindByClinic(db *gorm.DB, clinicID uuid.UUID) ([]entity.Counter, error) {
	var counters []entity.Counter
	err := db.Preload("CurrentTicket").
		Where("clinic_id = ?", clinicID).
		Order("label ASC").
		Find(&counters).Error
	if err != nil {
		return nil, err
	}
	return counters, nil
}

func (r *counterRepository) SetCurrentTicket(db *gorm.DB, counterID uuid.UUID, ticketID *uuid.UUID) error {
	return db.Model(&entity.Counter{}).
		Where("id = ?", counterID).
		Update("current_ticket_id", ticketID).Error
}
