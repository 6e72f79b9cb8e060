package usecase

import (
	"context"
	"testing"
	"time"

	"antrean-backend/config"
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
	"antrean-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduleUsecase(f *fixture) DoctorScheduleUsecase {
	return NewDoctorScheduleUsecase(f.db, testLogger(),
		repository.NewDoctorScheduleRepository(),
		repository.NewDoctorRepository(),
		repository.NewClinicRepository(),
		f.ledger,
		config.QuotaScopeClinic,
	)
}

func newLeaveUsecase(f *fixture) DoctorLeaveUsecase {
	return NewDoctorLeaveUsecase(f.db, testLogger(),
		repository.NewDoctorLeaveRepository(),
		repository.NewDoctorRepository(),
	)
}

func TestCreateScheduleRejectsDuplicateWeekday(t *testing.T) {
	f := newFixture(t)
	uc := newScheduleUsecase(f)
	ctx := context.Background()

	doctor := &entity.Doctor{ID: uuid.New(), Name: "dr. Baru", ClinicID: &f.clinic.ID}
	require.NoError(t, f.db.Create(doctor).Error)

	created, err := uc.CreateSchedule(ctx, &dto.CreateScheduleRequest{
		DoctorID:  doctor.ID.String(),
		Weekday:   int(time.Monday),
		StartTime: "08:00",
		EndTime:   "12:00",
		Capacity:  15,
	})
	require.NoError(t, err)
	assert.Equal(t, int(time.Monday), created.Weekday)

	_, err = uc.CreateSchedule(ctx, &dto.CreateScheduleRequest{
		DoctorID:  doctor.ID.String(),
		Weekday:   int(time.Monday),
		StartTime: "13:00",
		EndTime:   "16:00",
		Capacity:  5,
	})
	assert.ErrorIs(t, err, ErrScheduleExists)
}

func TestCreateScheduleValidatesWindow(t *testing.T) {
	f := newFixture(t)
	uc := newScheduleUsecase(f)

	_, err := uc.CreateSchedule(context.Background(), &dto.CreateScheduleRequest{
		DoctorID:  f.doctor.ID.String(),
		Weekday:   int(time.Monday),
		StartTime: "12:00",
		EndTime:   "08:00",
		Capacity:  10,
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestUpdateSchedule(t *testing.T) {
	f := newFixture(t)
	uc := newScheduleUsecase(f)
	ctx := context.Background()

	var existing entity.DoctorSchedule
	require.NoError(t, f.db.Where("doctor_id = ?", f.doctor.ID).First(&existing).Error)

	updated, err := uc.UpdateSchedule(ctx, existing.ID, &dto.UpdateScheduleRequest{
		StartTime: "09:00",
		EndTime:   "13:00",
		Capacity:  25,
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", updated.StartTime)
	assert.Equal(t, 25, updated.Capacity)

	_, err = uc.UpdateSchedule(ctx, 99999, &dto.UpdateScheduleRequest{
		StartTime: "09:00", EndTime: "13:00", Capacity: 1,
	})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestCreateLeaveRejectsDuplicateDate(t *testing.T) {
	f := newFixture(t)
	uc := newLeaveUsecase(f)
	ctx := context.Background()
	date := bookingDate().Format("2006-01-02")

	created, err := uc.CreateLeave(ctx, &dto.CreateLeaveRequest{
		DoctorID:  f.doctor.ID.String(),
		LeaveDate: date,
		Reason:    "cuti tahunan",
	})
	require.NoError(t, err)
	assert.Equal(t, date, created.LeaveDate)

	_, err = uc.CreateLeave(ctx, &dto.CreateLeaveRequest{
		DoctorID:  f.doctor.ID.String(),
		LeaveDate: date,
		Reason:    "double booked",
	})
	assert.ErrorIs(t, err, ErrLeaveExists)
}

func TestDeleteLeaveRestoresAvailability(t *testing.T) {
	f := newFixture(t)
	uc := newLeaveUsecase(f)
	ctx := context.Background()

	created, err := uc.CreateLeave(ctx, &dto.CreateLeaveRequest{
		DoctorID:  f.doctor.ID.String(),
		LeaveDate: bookingDate().Format("2006-01-02"),
	})
	require.NoError(t, err)

	// Booking is blocked while the full-day leave stands.
	_, err = f.antrean.Ambil(ctx, ambilRequest("3204011212900001"))
	require.Error(t, err)

	require.NoError(t, uc.DeleteLeave(ctx, created.ID))

	_, err = f.antrean.Ambil(ctx, ambilRequest("3204011212900001"))
	assert.NoError(t, err)
}
