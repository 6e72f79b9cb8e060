package usecase

import (
	"context"
	"errors"

	"antrean-backend/internal/converter"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrClinicCodeTaken = errors.New("clinic code already registered")
	ErrDoctorNotFound  = errors.New("doctor not found")
)

// MasterUsecase maintains clinic and doctor reference data.
type MasterUsecase interface {
	CreateClinic(ctx context.Context, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error)
	UpdateClinic(ctx context.Context, id uuid.UUID, req *dto.UpdateClinicRequest) (*dto.ClinicResponse, error)
	GetClinics(ctx context.Context) ([]dto.ClinicResponse, error)
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctors(ctx context.Context) ([]dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
}

type masterUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	clinicRepo repository.ClinicRepository
	doctorRepo repository.DoctorRepository
}

func NewMasterUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	clinicRepo repository.ClinicRepository,
	doctorRepo repository.DoctorRepository,
) MasterUsecase {
	return &masterUsecase{
		db:         db,
		log:        log,
		clinicRepo: clinicRepo,
		doctorRepo: doctorRepo,
	}
}

// CreateClinic inserts a clinic after an explicit uniqueness check; check
// and insert share one transaction since the data layer has no portable
// upsert primitive.
func (u *masterUsecase) CreateClinic(ctx context.Context, req *dto.CreateClinicRequest) (*dto.ClinicResponse, error) {
	clinic := &entity.Clinic{
		ID:         uuid.New(),
		Code:       req.Code,
		Name:       req.Name,
		DailyQuota: req.DailyQuota,
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := u.clinicRepo.FindByCode(tx, req.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrClinicCodeTaken
		}
		return u.clinicRepo.Create(tx, clinic)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Clinic created: code=%s quota=%d", clinic.Code, clinic.DailyQuota)
	return converter.ClinicToResponse(clinic), nil
}

func (u *masterUsecase) UpdateClinic(ctx context.Context, id uuid.UUID, req *dto.UpdateClinicRequest) (*dto.ClinicResponse, error) {
	var clinic *entity.Clinic
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := u.clinicRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrClinicNotFound
		}
		existing.Name = req.Name
		existing.DailyQuota = req.DailyQuota
		if err := u.clinicRepo.Update(tx, existing); err != nil {
			return err
		}
		clinic = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.ClinicToResponse(clinic), nil
}

func (u *masterUsecase) GetClinics(ctx context.Context) ([]dto.ClinicResponse, error) {
	clinics, err := u.clinicRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return converter.ClinicsToResponses(clinics), nil
}

func (u *masterUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor := &entity.Doctor{
		ID:        uuid.New(),
		Name:      req.Name,
		Specialty: req.Specialty,
	}

	if req.ClinicID != "" {
		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			return nil, err
		}
		clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), clinicID)
		if err != nil {
			return nil, err
		}
		if clinic == nil {
			return nil, ErrClinicNotFound
		}
		doctor.ClinicID = &clinicID
	}

	if err := u.doctorRepo.Create(u.db.WithContext(ctx), doctor); err != nil {
		return nil, err
	}

	u.log.Infof("Doctor created: name=%s", doctor.Name)
	return converter.DoctorToResponse(doctor), nil
}

func (u *masterUsecase) GetDoctors(ctx context.Context) ([]dto.DoctorResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return converter.DoctorsToResponses(doctors), nil
}

func (u *masterUsecase) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	return u.doctorRepo.Delete(u.db.WithContext(ctx), id)
}
