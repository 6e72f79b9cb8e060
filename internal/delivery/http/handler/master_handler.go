package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/usecase"
	"antrean-backend/pkg/response"
	"antrean-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// MasterHandler maintains clinic and doctor reference data.
type MasterHandler struct {
	usecase   usecase.MasterUsecase
	validator *validator.CustomValidator
	log       *logrus.Logger
}

func NewMasterHandler(uc usecase.MasterUsecase, v *validator.CustomValidator, log *logrus.Logger) *MasterHandler {
	return &MasterHandler{
		usecase:   uc,
		validator: v,
		log:       log,
	}
}

func (h *MasterHandler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.usecase.CreateClinic(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicCodeTaken) {
			response.Conflict(w, "Clinic code already registered")
			return
		}
		h.log.Errorf("Failed to create clinic: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Created(w, "Clinic created", clinic)
}

func (h *MasterHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid clinic id")
		return
	}

	var req dto.UpdateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	clinic, err := h.usecase.UpdateClinic(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicNotFound) {
			response.NotFound(w, "Clinic not found")
			return
		}
		h.log.Errorf("Failed to update clinic: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Clinic updated", clinic)
}

func (h *MasterHandler) GetClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.usecase.GetClinics(r.Context())
	if err != nil {
		h.log.Errorf("Failed to list clinics: %+v", err)
		response.InternalServerError(w, "")
		return
	}
	response.Success(w, "Ok", clinics)
}

func (h *MasterHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.usecase.CreateDoctor(r.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrClinicNotFound) {
			response.NotFound(w, "Clinic not found")
			return
		}
		h.log.Errorf("Failed to create doctor: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Created(w, "Doctor created", doctor)
}

func (h *MasterHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.usecase.GetDoctors(r.Context())
	if err != nil {
		h.log.Errorf("Failed to list doctors: %+v", err)
		response.InternalServerError(w, "")
		return
	}
	response.Success(w, "Ok", doctors)
}

func (h *MasterHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor id")
		return
	}

	if err := h.usecase.DeleteDoctor(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrDoctorNotFound) {
			response.NotFound(w, "Doctor not found")
			return
		}
		h.log.Errorf("Failed to delete doctor: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Doctor deleted", nil)
}
