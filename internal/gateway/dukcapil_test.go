package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"antrean-backend/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestIdentityValidatorBypassMode(t *testing.T) {
	v := NewIdentityValidator(config.DukcapilConfig{Bypass: true}, testLogger())

	// Structurally valid NIK passes without a registry call.
	assert.NoError(t, v.Validate(context.Background(), "3204011212900001"))

	// The structural check is never bypassed.
	assert.ErrorIs(t, v.Validate(context.Background(), "12345"), ErrInvalidNIK)
	assert.ErrorIs(t, v.Validate(context.Background(), "32040112129000AB"), ErrInvalidNIK)
	assert.ErrorIs(t, v.Validate(context.Background(), "32040112129000011"), ErrInvalidNIK)
}

func TestIdentityValidatorRegistryLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		switch r.URL.Path {
		case "/nik/3204011212900001":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	v := NewIdentityValidator(config.DukcapilConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
	}, testLogger())

	assert.NoError(t, v.Validate(context.Background(), "3204011212900001"))
	assert.ErrorIs(t, v.Validate(context.Background(), "3204011212900002"), ErrInvalidNIK)
}

func TestIdentityValidatorRegistryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	v := NewIdentityValidator(config.DukcapilConfig{
		BaseURL: server.URL,
		APIKey:  "secret",
	}, testLogger())

	err := v.Validate(context.Background(), "3204011212900001")
	require.Error(t, err)
	// A registry failure is not the same as an invalid NIK.
	assert.NotErrorIs(t, err, ErrInvalidNIK)
}
