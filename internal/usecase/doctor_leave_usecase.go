package usecase

import (
	"context"
	"errors"
	"time"

	"antrean-backend/internal/converter"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrLeaveNotFound = errors.New("leave record not found")
	ErrLeaveExists   = errors.New("doctor already has leave recorded for this date")
)

// DoctorLeaveUsecase maintains the leave calendar the resolver overlays on
// the weekly schedule.
type DoctorLeaveUsecase interface {
	CreateLeave(ctx context.Context, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error)
	GetLeavesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]dto.LeaveResponse, error)
	DeleteLeave(ctx context.Context, id int) error
}

type doctorLeaveUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	leaveRepo  repository.DoctorLeaveRepository
	doctorRepo repository.DoctorRepository
}

func NewDoctorLeaveUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	leaveRepo repository.DoctorLeaveRepository,
	doctorRepo repository.DoctorRepository,
) DoctorLeaveUsecase {
	return &doctorLeaveUsecase{
		db:         db,
		log:        log,
		leaveRepo:  leaveRepo,
		doctorRepo: doctorRepo,
	}
}

// CreateLeave records one leave date. One row per doctor+date: duplicates
// are rejected in the same transaction as the insert.
func (u *doctorLeaveUsecase) CreateLeave(ctx context.Context, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.LeaveDate, time.UTC)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	leave := &entity.DoctorLeave{
		DoctorID:  doctorID,
		LeaveDate: date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := u.leaveRepo.FindByDoctorAndDate(tx, doctorID, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrLeaveExists
		}
		return u.leaveRepo.Create(tx, leave)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Leave recorded: doctor=%s date=%s fullDay=%v", doctor.Name, req.LeaveDate, leave.IsFullDay())
	return converter.LeaveToResponse(leave), nil
}

func (u *doctorLeaveUsecase) GetLeavesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]dto.LeaveResponse, error) {
	leaves, err := u.leaveRepo.FindByDoctor(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	return converter.LeavesToResponses(leaves), nil
}

func (u *doctorLeaveUsecase) DeleteLeave(ctx context.Context, id int) error {
	leave, err := u.leaveRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if leave == nil {
		return ErrLeaveNotFound
	}
	return u.leaveRepo.Delete(u.db.WithContext(ctx), id)
}
