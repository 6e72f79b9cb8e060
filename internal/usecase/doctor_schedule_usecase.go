package usecase

import (
	"context"
	"errors"
	"time"

	"antrean-backend/config"
	"antrean-backend/internal/converter"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/domain/repository"
	"antrean-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrScheduleExists   = errors.New("doctor already has a schedule for this weekday")
	ErrInvalidWindow    = errors.New("schedule start time must be before end time")
)

// DoctorScheduleUsecase maintains the weekly schedule rows the resolver
// reads from.
type DoctorScheduleUsecase interface {
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, id int, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, id int) error
}

type doctorScheduleUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	scheduleRepo repository.DoctorScheduleRepository
	doctorRepo   repository.DoctorRepository
	clinicRepo   repository.ClinicRepository
	ledger       *service.QuotaLedger
	quotaScope   config.QuotaScope
}

func NewDoctorScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	doctorRepo repository.DoctorRepository,
	clinicRepo repository.ClinicRepository,
	ledger *service.QuotaLedger,
	quotaScope config.QuotaScope,
) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		db:           db,
		log:          log,
		scheduleRepo: scheduleRepo,
		doctorRepo:   doctorRepo,
		clinicRepo:   clinicRepo,
		ledger:       ledger,
		quotaScope:   quotaScope,
	}
}

// CreateSchedule validates the window and inserts one weekday row. The
// uniqueness check and insert run inside a single transaction.
func (u *doctorScheduleUsecase) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidWindow
	}

	doctorID, err := uuid.Parse(req.DoctorID)
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

	schedule := &entity.DoctorSchedule{
		DoctorID:  doctorID,
		Weekday:   time.Weekday(req.Weekday),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
	}

	err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := u.scheduleRepo.FindByDoctorAndWeekday(tx, doctorID, schedule.Weekday)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrScheduleExists
		}
		return u.scheduleRepo.Create(tx, schedule)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Schedule created: doctor=%s weekday=%d capacity=%d", doctor.Name, req.Weekday, req.Capacity)
	return converter.ScheduleToResponse(schedule), nil
}

// UpdateSchedule edits the window or capacity. Under doctor-scoped quota, a
// capacity change on today's weekday is pushed to the ledger as a delta so
// already-issued tickets keep their slots.
func (u *doctorScheduleUsecase) UpdateSchedule(ctx context.Context, id int, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidWindow
	}

	var schedule *entity.DoctorSchedule
	var capacityDelta int

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := u.scheduleRepo.FindByID(tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrScheduleNotFound
		}

		capacityDelta = req.Capacity - existing.Capacity
		existing.StartTime = req.StartTime
		existing.EndTime = req.EndTime
		existing.Capacity = req.Capacity

		if err := u.scheduleRepo.Update(tx, existing); err != nil {
			return err
		}
		schedule = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if capacityDelta != 0 && u.quotaScope == config.QuotaScopeDoctor {
		u.pushCapacityDelta(ctx, schedule, capacityDelta)
	}

	return converter.ScheduleToResponse(schedule), nil
}

func (u *doctorScheduleUsecase) GetSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]dto.ScheduleResponse, error) {
	schedules, err := u.scheduleRepo.FindByDoctor(u.db.WithContext(ctx), doctorID)
	if err != nil {
		return nil, err
	}
	return converter.SchedulesToResponses(schedules), nil
}

func (u *doctorScheduleUsecase) DeleteSchedule(ctx context.Context, id int) error {
	schedule, err := u.scheduleRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if schedule == nil {
		return ErrScheduleNotFound
	}
	return u.scheduleRepo.Delete(u.db.WithContext(ctx), id)
}

// pushCapacityDelta forwards a capacity edit to the ledger when it affects
// today's queue. Future weekdays need no push: their keys are seeded from
// the updated row on first booking.
func (u *doctorScheduleUsecase) pushCapacityDelta(ctx context.Context, schedule *entity.DoctorSchedule, delta int) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if today.Weekday() != schedule.Weekday {
		return
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), schedule.DoctorID)
	if err != nil || doctor == nil || doctor.ClinicID == nil {
		u.log.Warnf("Cannot push capacity delta for schedule %d: doctor/clinic unresolved", schedule.ID)
		return
	}
	clinic, err := u.clinicRepo.FindByID(u.db.WithContext(ctx), *doctor.ClinicID)
	if err != nil || clinic == nil {
		u.log.Warnf("Cannot push capacity delta for schedule %d: clinic lookup failed", schedule.ID)
		return
	}

	scope := service.DoctorScope(schedule.DoctorID, clinic.Code, clinic.ID)
	if err := u.ledger.AdjustCapacity(ctx, scope, today, delta); err != nil {
		u.log.Warnf("Failed capacity delta for schedule %d: %+v", schedule.ID, err)
	}
}
