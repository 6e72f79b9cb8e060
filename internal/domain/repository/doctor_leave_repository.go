package repository

import (
	"time"

	"antrean-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorLeaveRepository interface {
	Create(db *gorm.DB, leave *entity.DoctorLeave) error
	FindByID(db *gorm.DB, id int) (*entity.DoctorLeave, error)
	FindByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DoctorLeave, error)
	FindByDoctor(db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorLeave, error)
	Delete(db *gorm.DB, id int) error
}
