package repository

import (
	"errors"
	"time"

	"antrean-backend/internal/domain/entity"
	domainRepo "antrean-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ticketRepository struct{}

func NewTicketRepository() domainRepo.TicketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Create(db *gorm.DB, ticket *entity.Ticket) error {
	return db.Create(ticket).Error
}

func (r *ticketRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := db.Preload("Clinic").Where("id = ?", id).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByBookingCode(db *gorm.DB, code string) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := db.Preload("Clinic").Where("booking_code = ?", code).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByClinicAndDate(db *gorm.DB, clinicID uuid.UUID, date time.Time) ([]entity.Ticket, error) {
	var tickets []entity.Ticket
	err := db.Where("clinic_id = ? AND service_date = ?", clinicID, date).
		Order("sequence ASC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) FindLowestWaiting(db *gorm.DB, clinicID uuid.UUID, date time.Time) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := db.Where("clinic_id = ? AND service_date = ? AND status = ?",
		clinicID, date, entity.TicketStatusWaiting).
		Order("sequence ASC").
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// ClaimForCounter is the calling-station race point: the WHERE clause keeps
// selection and binding in one statement, so two stations can never claim
// the same ticket.
func (r *ticketRepository) ClaimForCounter(db *gorm.DB, ticketID, counterID uuid.UUID, calledAt time.Time) (int64, error) {
	result := db.Model(&entity.Ticket{}).
		Where("id = ? AND status = ? AND counter_id IS NULL", ticketID, entity.TicketStatusWaiting).
		Updates(map[string]interface{}{
			"status":     entity.TicketStatusCalled,
			"counter_id": counterID,
			"called_at":  calledAt,
		})
	return result.RowsAffected, result.Error
}

func (r *ticketRepository) UpdateStatusIf(db *gorm.DB, ticketID uuid.UUID, from, to entity.TicketStatus, at time.Time) (int64, error) {
	updates := map[string]interface{}{"status": to}
	switch to {
	case entity.TicketStatusServed:
		updates["served_at"] = at
	case entity.TicketStatusCancelled:
		updates["cancelled_at"] = at
	}
	result := db.Model(&entity.Ticket{}).
		Where("id = ? AND status = ?", ticketID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *ticketRepository) UsageForClinicDate(db *gorm.DB, clinicID uuid.UUID, date time.Time) (*domainRepo.TicketUsage, error) {
	var usage domainRepo.TicketUsage
	err := db.Model(&entity.Ticket{}).
		Select("COUNT(CASE WHEN status != ? THEN 1 END) as active_count, COALESCE(MAX(sequence), 0) as max_sequence",
			entity.TicketStatusCancelled).
		Where("clinic_id = ? AND service_date = ?", clinicID, date).
		Scan(&usage).Error
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *ticketRepository) UsageForDoctorDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*domainRepo.TicketUsage, error) {
	var usage domainRepo.TicketUsage
	err := db.Model(&entity.Ticket{}).
		Select("COUNT(CASE WHEN status != ? THEN 1 END) as active_count, COALESCE(MAX(sequence), 0) as max_sequence",
			entity.TicketStatusCancelled).
		Where("doctor_id = ? AND service_date = ?", doctorID, date).
		Scan(&usage).Error
	if err != nil {
		return nil, err
	}
	return &usage, nil
}
