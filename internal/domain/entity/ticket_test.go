package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    TicketStatus
		to      TicketStatus
		allowed bool
	}{
		{"waiting to called", TicketStatusWaiting, TicketStatusCalled, true},
		{"waiting to cancelled", TicketStatusWaiting, TicketStatusCancelled, true},
		{"waiting to served", TicketStatusWaiting, TicketStatusServed, false},
		{"waiting to no_show", TicketStatusWaiting, TicketStatusNoShow, false},
		{"called to served", TicketStatusCalled, TicketStatusServed, true},
		{"called to no_show", TicketStatusCalled, TicketStatusNoShow, true},
		{"called to cancelled", TicketStatusCalled, TicketStatusCancelled, false},
		{"called to waiting", TicketStatusCalled, TicketStatusWaiting, false},
		{"served is terminal", TicketStatusServed, TicketStatusCalled, false},
		{"cancelled is terminal", TicketStatusCancelled, TicketStatusWaiting, false},
		{"no_show is terminal", TicketStatusNoShow, TicketStatusWaiting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTicketIsTerminal(t *testing.T) {
	assert.False(t, (&Ticket{Status: TicketStatusWaiting}).IsTerminal())
	assert.False(t, (&Ticket{Status: TicketStatusCalled}).IsTerminal())
	assert.True(t, (&Ticket{Status: TicketStatusServed}).IsTerminal())
	assert.True(t, (&Ticket{Status: TicketStatusCancelled}).IsTerminal())
	assert.True(t, (&Ticket{Status: TicketStatusNoShow}).IsTerminal())
}

func TestLeaveIsFullDay(t *testing.T) {
	start, end := "09:00", "11:00"

	assert.True(t, (&DoctorLeave{}).IsFullDay())
	assert.True(t, (&DoctorLeave{StartTime: &start}).IsFullDay())
	assert.False(t, (&DoctorLeave{StartTime: &start, EndTime: &end}).IsFullDay())
}
