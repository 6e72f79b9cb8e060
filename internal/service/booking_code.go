package service

import (
	"fmt"
	"time"
)

// FormatBookingCode renders the human-presentable booking code, e.g.
// "INT-20251218-007". Pure formatting: uniqueness follows from the ledger's
// (clinic, date, sequence) guarantee. Sequences above 999 widen naturally.
func FormatBookingCode(clinicPrefix string, date time.Time, sequence int) string {
	return fmt.Sprintf("%s-%s-%03d", clinicPrefix, date.Format("20060102"), sequence)
}
