package converter

import (
	"antrean-backend/internal/delivery/dto"
	"antrean-backend/internal/domain/entity"
)

func ScheduleToResponse(schedule *entity.DoctorSchedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}
	return &dto.ScheduleResponse{
		ID:        schedule.ID,
		DoctorID:  schedule.DoctorID.String(),
		Weekday:   int(schedule.Weekday),
		StartTime: schedule.StartTime,
		EndTime:   schedule.EndTime,
		Capacity:  schedule.Capacity,
		CreatedAt: schedule.CreatedAt,
	}
}

func SchedulesToResponses(schedules []entity.DoctorSchedule) []dto.ScheduleResponse {
	responses := make([]dto.ScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = *ScheduleToResponse(&schedules[i])
	}
	return responses
}

func LeaveToResponse(leave *entity.DoctorLeave) *dto.LeaveResponse {
	if leave == nil {
		return nil
	}
	return &dto.LeaveResponse{
		ID:        leave.ID,
		DoctorID:  leave.DoctorID.String(),
		LeaveDate: leave.LeaveDate.Format("2006-01-02"),
		StartTime: leave.StartTime,
		EndTime:   leave.EndTime,
		Reason:    leave.Reason,
	}
}

func LeavesToResponses(leaves []entity.DoctorLeave) []dto.LeaveResponse {
	responses := make([]dto.LeaveResponse, len(leaves))
	for i := range leaves {
		responses[i] = *LeaveToResponse(&leaves[i])
	}
	return responses
}
