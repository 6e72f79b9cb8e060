package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"antrean-backend/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitEncounter(t *testing.T) {
	var tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/accesstoken", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":"3600"}`)
	})
	mux.HandleFunc("/Encounter", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewEncounterClient(config.SatuSehatConfig{
		AuthURL:  server.URL,
		FHIRURL:  server.URL,
		OrgID:    "org-1",
		Enabled:  true,
		Timeout:  5 * time.Second,
		ClientID: "id",
	}, testLogger())

	enc := Encounter{BookingCode: "INT-20251218-007", NIK: "3204011212900001", ServedAt: time.Now()}

	require.NoError(t, c.SubmitEncounter(context.Background(), enc))
	require.NoError(t, c.SubmitEncounter(context.Background(), enc))

	// The token is cached across submissions.
	assert.EqualValues(t, 1, tokenCalls.Load())
}

func TestSubmitEncounterDisabledIsNoop(t *testing.T) {
	c := NewEncounterClient(config.SatuSehatConfig{Enabled: false}, testLogger())
	assert.NoError(t, c.SubmitEncounter(context.Background(), Encounter{}))
}

func TestSubmitEncounterRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/accesstoken", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-1","expires_in":"3600"}`)
	})
	mux.HandleFunc("/Encounter", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewEncounterClient(config.SatuSehatConfig{
		AuthURL: server.URL,
		FHIRURL: server.URL,
		Enabled: true,
		Timeout: 5 * time.Second,
	}, testLogger())

	err := c.SubmitEncounter(context.Background(), Encounter{BookingCode: "X"})
	assert.Error(t, err)
}
