package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/usecase"
	"antrean-backend/pkg/response"
	"antrean-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ScheduleHandler maintains weekly schedules and the leave calendar.
type ScheduleHandler struct {
	scheduleUsecase usecase.DoctorScheduleUsecase
	leaveUsecase    usecase.DoctorLeaveUsecase
	validator       *validator.CustomValidator
	log             *logrus.Logger
}

func NewScheduleHandler(
	scheduleUsecase usecase.DoctorScheduleUsecase,
	leaveUsecase usecase.DoctorLeaveUsecase,
	v *validator.CustomValidator,
	log *logrus.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		leaveUsecase:    leaveUsecase,
		validator:       v,
		log:             log,
	}
}

func (h *ScheduleHandler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.scheduleUsecase.CreateSchedule(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrScheduleExists):
			response.Conflict(w, "Doctor already has a schedule for this weekday")
		case errors.Is(err, usecase.ErrInvalidWindow):
			response.BadRequest(w, "start_time must be before end_time")
		default:
			h.log.Errorf("Failed to create schedule: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Created(w, "Schedule created", schedule)
}

func (h *ScheduleHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid schedule id")
		return
	}

	var req dto.UpdateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.scheduleUsecase.UpdateSchedule(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrScheduleNotFound):
			response.NotFound(w, "Schedule not found")
		case errors.Is(err, usecase.ErrInvalidWindow):
			response.BadRequest(w, "start_time must be before end_time")
		default:
			h.log.Errorf("Failed to update schedule: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Success(w, "Schedule updated", schedule)
}

func (h *ScheduleHandler) GetSchedulesByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor id")
		return
	}

	schedules, err := h.scheduleUsecase.GetSchedulesByDoctor(r.Context(), doctorID)
	if err != nil {
		h.log.Errorf("Failed to list schedules: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Ok", schedules)
}

func (h *ScheduleHandler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid schedule id")
		return
	}

	if err := h.scheduleUsecase.DeleteSchedule(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrScheduleNotFound) {
			response.NotFound(w, "Schedule not found")
			return
		}
		h.log.Errorf("Failed to delete schedule: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Schedule deleted", nil)
}

func (h *ScheduleHandler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	leave, err := h.leaveUsecase.CreateLeave(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDoctorNotFound):
			response.NotFound(w, "Doctor not found")
		case errors.Is(err, usecase.ErrLeaveExists):
			response.Conflict(w, "Doctor already has leave recorded for this date")
		default:
			h.log.Errorf("Failed to record leave: %+v", err)
			response.InternalServerError(w, "")
		}
		return
	}

	response.Created(w, "Leave recorded", leave)
}

func (h *ScheduleHandler) GetLeavesByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor id")
		return
	}

	leaves, err := h.leaveUsecase.GetLeavesByDoctor(r.Context(), doctorID)
	if err != nil {
		h.log.Errorf("Failed to list leaves: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Ok", leaves)
}

func (h *ScheduleHandler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid leave id")
		return
	}

	if err := h.leaveUsecase.DeleteLeave(r.Context(), id); err != nil {
		if errors.Is(err, usecase.ErrLeaveNotFound) {
			response.NotFound(w, "Leave record not found")
			return
		}
		h.log.Errorf("Failed to delete leave: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	response.Success(w, "Leave deleted", nil)
}
