package repository

import (
	"antrean-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CounterRepository interface {
	Create(db *gorm.DB, counter *entity.Counter) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Counter, error)
	FindByClinic(db *gorm.DB, clinicID uuid.UUID) ([]entity.Counter, error)
	SetCurrentTicket(db *gorm.DB, counterID uuid.UUID, ticketID *uuid.UUID) error
}
