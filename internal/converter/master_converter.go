package converter

import (
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
)

func ClinicToResponse(clinic *entity.Clinic) *dto.ClinicResponse {
	if clinic == nil {
		return nil
	}
	return &dto.ClinicResponse{
		ID:         clinic.ID.String(),
		Code:       clinic.Code,
		Name:       clinic.Name,
		DailyQuota: clinic.DailyQuota,
		CreatedAt:  clinic.CreatedAt,
	}
}

func ClinicsToResponses(clinics []entity.Clinic) []dto.ClinicResponse {
	responses := make([]dto.ClinicResponse, len(clinics))
	for i := range clinics {
		responses[i] = *ClinicToResponse(&clinics[i])
	}
	return responses
}

func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}
	response := &dto.DoctorResponse{
		ID:        doctor.ID.String(),
		Name:      doctor.Name,
		Specialty: doctor.Specialty,
		CreatedAt: doctor.CreatedAt,
	}
	if doctor.ClinicID != nil {
		response.ClinicID = doctor.ClinicID.String()
	}
	return response
}

func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
