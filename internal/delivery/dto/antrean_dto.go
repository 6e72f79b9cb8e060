package dto

// Request DTOs

// AmbilRequest is the take-a-ticket request. Field names follow the
// national mobile-JKN bridging contract.
type AmbilRequest struct {
	NomorKartu     string `json:"nomorkartu" validate:"omitempty,min=11,max=20"`
	NIK            string `json:"nik" validate:"required,len=16,numeric"`
	KodePoli       string `json:"kodepoli" validate:"required,max=10"`
	TanggalPeriksa string `json:"tanggalperiksa" validate:"required,datetime=2006-01-02"`
	Keluhan        string `json:"keluhan" validate:"max=500"`

	// RequestID is the idempotency key, taken from the X-Request-ID
	// header rather than the body.
	RequestID string `json:"-"`
}

type BatalRequest struct {
	Kodebooking string `json:"kodebooking" validate:"required,max=30"`
}

// Response DTOs

type AmbilResponse struct {
	Kodebooking    string `json:"kodebooking"`
	NomorAntrean   int    `json:"nomorantrean"`
	KodePoli       string `json:"kodepoli"`
	NamaPoli       string `json:"namapoli"`
	TanggalPeriksa string `json:"tanggalperiksa"`
	NamaDokter     string `json:"namadokter,omitempty"`
	JamPraktik     string `json:"jampraktik,omitempty"`
	SisaKuota      int    `json:"sisakuota"`
}

type ServingCounter struct {
	Counter     string `json:"counter"`
	Kodebooking string `json:"kodebooking"`
}

type StatusResponse struct {
	Capacity         int              `json:"capacity"`
	Allocated        int              `json:"allocated"`
	Remaining        int              `json:"remaining"`
	CurrentlyServing []ServingCounter `json:"currentlyServing"`
}
