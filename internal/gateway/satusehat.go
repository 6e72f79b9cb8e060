package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"antrean-backend/config"

	"github.com/sirupsen/logrus"
)

// tokenManager caches the SatuSehat OAuth2 client-credentials token and
// refreshes it on expiry. Read-mostly: the fast path is an RLock hit,
// refresh takes the write lock with a double-check.
type tokenManager struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func (tm *tokenManager) getToken(ctx context.Context) (string, error) {
	tm.mu.RLock()
	if tm.token != "" && time.Now().Before(tm.expiresAt) {
		defer tm.mu.RUnlock()
		return tm.token, nil
	}
	tm.mu.RUnlock()

	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && time.Now().Before(tm.expiresAt) {
		return tm.token, nil
	}

	data := url.Values{}
	data.Set("client_id", tm.clientID)
	data.Set("client_secret", tm.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tm.authURL+"/accesstoken?grant_type=client_credentials",
		bytes.NewBufferString(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	if expiresIn <= 60 {
		expiresIn = 3600
	}

	tm.token = result.AccessToken
	// Refresh a minute early to avoid using a token at the edge of expiry.
	tm.expiresAt = time.Now().Add(time.Duration(expiresIn-60) * time.Second)

	return tm.token, nil
}

// Encounter is the minimal episode payload pushed to the national health
// record when a ticket is served.
type Encounter struct {
	BookingCode string    `json:"booking_code"`
	NIK         string    `json:"nik"`
	ClinicCode  string    `json:"clinic_code"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	ServedAt    time.Time `json:"served_at"`
}

// EncounterClient submits encounters to SatuSehat. Submission is a
// fire-and-log side channel: failures are recorded for later retry and
// never block or roll back ticket flow.
type EncounterClient struct {
	httpClient *http.Client
	tokens     *tokenManager
	fhirURL    string
	orgID      string
	enabled    bool
	timeout    time.Duration
	log        *logrus.Logger
}

func NewEncounterClient(cfg config.SatuSehatConfig, log *logrus.Logger) *EncounterClient {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &EncounterClient{
		httpClient: httpClient,
		tokens: &tokenManager{
			httpClient:   httpClient,
			authURL:      cfg.AuthURL,
			clientID:     cfg.ClientID,
			clientSecret: cfg.ClientSecret,
		},
		fhirURL: cfg.FHIRURL,
		orgID:   cfg.OrgID,
		enabled: cfg.Enabled,
		timeout: cfg.Timeout,
		log:     log,
	}
}

// SubmitEncounter performs one synchronous submission.
func (c *EncounterClient) SubmitEncounter(ctx context.Context, enc Encounter) error {
	if !c.enabled {
		return nil
	}

	token, err := c.tokens.getToken(ctx)
	if err != nil {
		return fmt.Errorf("satusehat token: %w", err)
	}

	payload := map[string]interface{}{
		"resourceType": "Encounter",
		"status":       "finished",
		"serviceProvider": map[string]string{
			"reference": "Organization/" + c.orgID,
		},
		"identifier": []map[string]string{
			{"system": "http://sys-ids/encounter", "value": enc.BookingCode},
		},
		"subject": map[string]string{
			"reference": "Patient/" + enc.NIK,
		},
		"period": map[string]string{
			"start": enc.ServedAt.Format(time.RFC3339),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal encounter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.fhirURL+"/Encounter", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build encounter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit encounter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("encounter rejected with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// SubmitEncounterAsync submits in the background and only logs failures.
// Detached from the caller's context so a finished HTTP request does not
// cancel the submission.
func (c *EncounterClient) SubmitEncounterAsync(enc Encounter) {
	if !c.enabled {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		if err := c.SubmitEncounter(ctx, enc); err != nil {
			c.log.Errorf("Encounter submission failed for %s (queued for retry reporting): %+v", enc.BookingCode, err)
		} else {
			c.log.Infof("Encounter submitted for %s", enc.BookingCode)
		}
	}()
}
