package usecase

import (
	"context"
	"io"
	"testing"

	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newMasterUsecase(f *fixture) MasterUsecase {
	return NewMasterUsecase(f.db, testLogger(),
		repository.NewClinicRepository(),
		repository.NewDoctorRepository(),
	)
}

func TestCreateClinicRejectsDuplicateCode(t *testing.T) {
	f := newFixture(t)
	uc := newMasterUsecase(f)
	ctx := context.Background()

	clinic, err := uc.CreateClinic(ctx, &dto.CreateClinicRequest{
		Code: "IGD", Name: "Gawat Darurat", DailyQuota: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, "IGD", clinic.Code)

	// "INT" was seeded by the fixture.
	_, err = uc.CreateClinic(ctx, &dto.CreateClinicRequest{
		Code: "INT", Name: "Duplicate", DailyQuota: 10,
	})
	assert.ErrorIs(t, err, ErrClinicCodeTaken)
}

func TestUpdateClinic(t *testing.T) {
	f := newFixture(t)
	uc := newMasterUsecase(f)
	ctx := context.Background()

	updated, err := uc.UpdateClinic(ctx, f.clinic.ID, &dto.UpdateClinicRequest{
		Name: "Poli Dalam", DailyQuota: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Poli Dalam", updated.Name)
	assert.Equal(t, 7, updated.DailyQuota)

	_, err = uc.UpdateClinic(ctx, uuid.New(), &dto.UpdateClinicRequest{Name: "X", DailyQuota: 1})
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestCreateDoctorValidatesClinic(t *testing.T) {
	f := newFixture(t)
	uc := newMasterUsecase(f)
	ctx := context.Background()

	doctor, err := uc.CreateDoctor(ctx, &dto.CreateDoctorRequest{
		Name: "dr. Sari", Specialty: "Anak", ClinicID: f.clinic.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, f.clinic.ID.String(), doctor.ClinicID)

	// Floating doctor without a clinic binding.
	floating, err := uc.CreateDoctor(ctx, &dto.CreateDoctorRequest{Name: "dr. Tamu"})
	require.NoError(t, err)
	assert.Empty(t, floating.ClinicID)

	_, err = uc.CreateDoctor(ctx, &dto.CreateDoctorRequest{
		Name: "dr. X", ClinicID: uuid.New().String(),
	})
	assert.ErrorIs(t, err, ErrClinicNotFound)
}

func TestDeleteDoctor(t *testing.T) {
	f := newFixture(t)
	uc := newMasterUsecase(f)
	ctx := context.Background()

	require.NoError(t, uc.DeleteDoctor(ctx, f.doctor.ID))
	assert.ErrorIs(t, uc.DeleteDoctor(ctx, f.doctor.ID), ErrDoctorNotFound)
}
