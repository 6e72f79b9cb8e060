package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"antrean-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckParticipantActive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/peserta/0001234567890", r.URL.Path)
		assert.Equal(t, "cons-id", r.Header.Get("X-Cons-ID"))
		fmt.Fprint(w, `{"response":{"noKartu":"0001234567890","nama":"Budi","status":"AKTIF"}}`)
	}))
	defer server.Close()

	c := NewEligibilityClient(config.BPJSConfig{BaseURL: server.URL, ConsID: "cons-id"}, testLogger())

	participant, err := c.CheckParticipant(context.Background(), "0001234567890")
	require.NoError(t, err)
	assert.True(t, participant.IsActive())
	assert.Equal(t, "Budi", participant.Name)
}

func TestCheckParticipantInactive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"noKartu":"0001234567890","status":"NON-AKTIF"}}`)
	}))
	defer server.Close()

	c := NewEligibilityClient(config.BPJSConfig{BaseURL: server.URL}, testLogger())

	participant, err := c.CheckParticipant(context.Background(), "0001234567890")
	require.NoError(t, err)
	assert.False(t, participant.IsActive())
}

func TestCheckParticipantOutage(t *testing.T) {
	// A closed server simulates an unreachable service.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	t.Run("outage blocks when degraded operation is off", func(t *testing.T) {
		c := NewEligibilityClient(config.BPJSConfig{BaseURL: server.URL}, testLogger())

		_, err := c.CheckParticipant(context.Background(), "0001234567890")
		assert.ErrorIs(t, err, ErrEligibilityUnavailable)
	})

	t.Run("outage degrades when allowed", func(t *testing.T) {
		c := NewEligibilityClient(config.BPJSConfig{BaseURL: server.URL, AllowOnOutage: true}, testLogger())

		participant, err := c.CheckParticipant(context.Background(), "0001234567890")
		require.NoError(t, err)
		// Nil participant means "could not verify", never "inactive".
		assert.Nil(t, participant)
	})
}

func TestCheckParticipantServerErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewEligibilityClient(config.BPJSConfig{BaseURL: server.URL, AllowOnOutage: true}, testLogger())

	participant, err := c.CheckParticipant(context.Background(), "0001234567890")
	require.NoError(t, err)
	assert.Nil(t, participant)
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewEligibilityClient(config.BPJSConfig{}, testLogger()).Enabled())
	assert.True(t, NewEligibilityClient(config.BPJSConfig{BaseURL: "http://x"}, testLogger()).Enabled())
}
