package repository

import (
	"time"

	"antrean-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	Create(db *gorm.DB, schedule *entity.DoctorSchedule) error
	FindByID(db *gorm.DB, id int) (*entity.DoctorSchedule, error)
	FindByDoctorAndWeekday(db *gorm.DB, doctorID uuid.UUID, weekday time.Weekday) (*entity.DoctorSchedule, error)
	FindByDoctor(db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error)
	Update(db *gorm.DB, schedule *entity.DoctorSchedule) error
	Delete(db *gorm.DB, id int) error
}
