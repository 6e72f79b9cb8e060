package repository

import (
	"errors"
	"time"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorLeaveRepository struct{}

func NewDoctorLeaveRepository() domainRepo.DoctorLeaveRepository {
	return &doctorLeaveRepository{}
}

func (r *doctorLeaveRepository) Create(db *gorm.DB, leave *entity.DoctorLeave) error {
	return db.Create(leave).Error
}

func (r *doctorLeaveRepository) FindByID(db *gorm.DB, id int) (*entity.DoctorLeave, error) {
	var leave entity.DoctorLeave
	err := db.Where("id = ?", id).First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave, nil
}

func (r *doctorLeaveRepository) FindByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DoctorLeave, error) {
	var leave entity.DoctorLeave
	err := db.Where("doctor_id = ? AND leave_date = ?", doctorID, date).First(&leave).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave, nil
}

func (r *doctorLeaveRepository) FindByDoctor(db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorLeave, error) {
	var leaves []entity.DoctorLeave
	err := db.Where("doctor_id = ?", doctorID).Order("leave_date ASC").Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}

func (r *doctorLeaveRepository) Delete(db *gorm.DB, id int) error {
	return db.Delete(&entity.DoctorLeave{}, "id = ?", id).Error
}
