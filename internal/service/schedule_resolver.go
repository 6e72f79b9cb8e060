package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrDoctorUnavailable is returned when no usable working window exists for
// the doctor on the requested date.
var ErrDoctorUnavailable = errors.New("doctor has no available schedule for this date")

// EffectiveSlot is the resolved working window for one doctor on one date:
// the weekly schedule row with any approved leave already subtracted.
type EffectiveSlot struct {
	DoctorID  uuid.UUID
	Date      time.Time
	StartTime string
	EndTime   string
	Capacity  int
}

// ScheduleResolver derives availability from the weekly schedule and the
// leave calendar. Read-only over reference data; safe to call concurrently.
type ScheduleResolver struct {
	db           *gorm.DB
	log          *logrus.Logger
	scheduleRepo domainRepo.DoctorScheduleRepository
	leaveRepo    domainRepo.DoctorLeaveRepository
}

func NewScheduleResolver(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo domainRepo.DoctorScheduleRepository,
	leaveRepo domainRepo.DoctorLeaveRepository,
) *ScheduleResolver {
	return &ScheduleResolver{
		db:           db,
		log:          log,
		scheduleRepo: scheduleRepo,
		leaveRepo:    leaveRepo,
	}
}

// Resolve returns the effective slot for doctor+date, or ErrDoctorUnavailable
// when the weekday has no schedule, a full-day leave applies, or leave
// narrows the window to nothing. Partial leave trims the window edges but
// does not prorate capacity.
func (r *ScheduleResolver) Resolve(ctx context.Context, doctorID uuid.UUID, date time.Time) (*EffectiveSlot, error) {
	db := r.db.WithContext(ctx)

	schedule, err := r.scheduleRepo.FindByDoctorAndWeekday(db, doctorID, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("find schedule for doctor %s: %w", doctorID, err)
	}
	if schedule == nil {
		return nil, ErrDoctorUnavailable
	}

	leave, err := r.leaveRepo.FindByDoctorAndDate(db, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("find leave for doctor %s: %w", doctorID, err)
	}

	start, end := schedule.StartTime, schedule.EndTime
	if leave != nil {
		if leave.IsFullDay() {
			return nil, ErrDoctorUnavailable
		}
		start, end = narrowWindow(start, end, *leave.StartTime, *leave.EndTime)
		if start >= end {
			return nil, ErrDoctorUnavailable
		}
	}

	return &EffectiveSlot{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Capacity:  schedule.Capacity,
	}, nil
}

// narrowWindow subtracts a leave interval from the working window. Leave
// covering an edge trims that edge; leave swallowing the whole window
// collapses it. A gap strictly in the middle leaves the window as-is:
// the doctor still works both sides, and capacity is not prorated.
// "HH:MM" strings compare correctly lexicographically.
func narrowWindow(start, end, leaveStart, leaveEnd string) (string, string) {
	if leaveStart <= start && leaveEnd >= end {
		return start, start
	}
	if leaveStart <= start && leaveEnd > start {
		return leaveEnd, end
	}
	if leaveEnd >= end && leaveStart < end {
		return start, leaveStart
	}
	return start, end
}
