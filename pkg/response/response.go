package response

import (
	"encoding/json"
	"net/http"
)

// Metadata carries the domain outcome. Code 200 with a non-empty response
// signals success; any other code is a business or internal error. The
// shape follows the national antrean bridging contract.
type Metadata struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Envelope struct {
	Metadata Metadata    `json:"metadata"`
	Response interface{} `json:"response,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Success writes metadata code 200 with the payload.
func Success(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{
		Metadata: Metadata{Code: http.StatusOK, Message: message},
		Response: data,
	})
}

// Created writes metadata code 201 with the payload.
func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{
		Metadata: Metadata{Code: http.StatusCreated, Message: message},
		Response: data,
	})
}

// Error writes a non-200 metadata code with a human-readable message. The
// HTTP status mirrors the metadata code so plain HTTP clients behave too.
func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Envelope{
		Metadata: Metadata{Code: code, Message: message},
	})
}

func BadRequest(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Invalid request"
	}
	Error(w, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message)
}

func Conflict(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Conflict"
	}
	Error(w, http.StatusConflict, message)
}

// InternalServerError deliberately hides internal detail from callers.
func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message)
}

// ValidationError reports field-level validation failures.
func ValidationError(w http.ResponseWriter, errors map[string]string) {
	JSON(w, http.StatusBadRequest, Envelope{
		Metadata: Metadata{Code: http.StatusBadRequest, Message: "Validation failed"},
		Response: errors,
	})
}
