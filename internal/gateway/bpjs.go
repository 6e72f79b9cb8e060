package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"antrean-backend/config"

	"github.com/sirupsen/logrus"
)

// ErrEligibilityUnavailable is returned when the eligibility service cannot
// be reached and degraded operation is not allowed.
var ErrEligibilityUnavailable = errors.New("eligibility service is unavailable")

// Participant is the subset of the national insurance lookup the booking
// path cares about.
type Participant struct {
	CardNumber string `json:"noKartu"`
	Name       string `json:"nama"`
	Status     string `json:"status"`
}

// IsActive reports whether the participant may book on insurance.
func (p *Participant) IsActive() bool {
	return p != nil && p.Status == "AKTIF"
}

// EligibilityClient checks national insurance participant status. It is
// consumed, never implemented, by the booking engine: the caller only sees
// active / not active / unavailable.
type EligibilityClient struct {
	httpClient    *http.Client
	baseURL       string
	consID        string
	secret        string
	allowOnOutage bool
	log           *logrus.Logger
}

func NewEligibilityClient(cfg config.BPJSConfig, log *logrus.Logger) *EligibilityClient {
	return &EligibilityClient{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		baseURL:       cfg.BaseURL,
		consID:        cfg.ConsID,
		secret:        cfg.Secret,
		allowOnOutage: cfg.AllowOnOutage,
		log:           log,
	}
}

// Enabled reports whether a backing service is configured at all.
func (c *EligibilityClient) Enabled() bool {
	return c.baseURL != ""
}

// CheckParticipant looks up a card number. On outage it returns (nil, nil)
// when degraded operation is allowed — the caller must treat a nil
// participant as "could not verify", not as inactive.
func (c *EligibilityClient) CheckParticipant(ctx context.Context, cardNumber string) (*Participant, error) {
	url := fmt.Sprintf("%s/peserta/%s", c.baseURL, cardNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build eligibility request: %w", err)
	}
	req.Header.Set("X-Cons-ID", c.consID)
	req.Header.Set("X-Signature", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.allowOnOutage {
			c.log.Warnf("Eligibility service unreachable, proceeding degraded: %+v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrEligibilityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.allowOnOutage && resp.StatusCode >= 500 {
			c.log.Warnf("Eligibility service returned %d, proceeding degraded", resp.StatusCode)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: status %d", ErrEligibilityUnavailable, resp.StatusCode)
	}

	var body struct {
		Response Participant `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode eligibility response: %w", err)
	}

	return &body.Response, nil
}
