package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"antrean-backend/config"

	"github.com/sirupsen/logrus"
)

// ErrInvalidNIK is returned when the population registry rejects the
// identity number (or it is structurally malformed).
var ErrInvalidNIK = errors.New("NIK failed identity validation")

// IdentityValidator checks NIKs against the population registry. Bypass is a
// named mode, not an exception fallback: when enabled (explicitly, or
// because no credential is configured) every structurally valid NIK passes
// and a warning is logged.
type IdentityValidator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bypass     bool
	log        *logrus.Logger
}

func NewIdentityValidator(cfg config.DukcapilConfig, log *logrus.Logger) *IdentityValidator {
	if cfg.Bypass {
		log.Warn("Identity validation running in bypass mode: all NIKs treated as valid")
	}
	return &IdentityValidator{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		bypass:     cfg.Bypass,
		log:        log,
	}
}

// Validate checks one NIK. The 16-digit structural check always applies,
// even in bypass mode.
func (v *IdentityValidator) Validate(ctx context.Context, nik string) error {
	if !isWellFormedNIK(nik) {
		return ErrInvalidNIK
	}

	if v.bypass {
		v.log.Debugf("Bypass mode: skipping registry lookup for NIK %s****", nik[:4])
		return nil
	}

	url := fmt.Sprintf("%s/nik/%s", v.baseURL, nik)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("X-API-Key", v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrInvalidNIK
	default:
		return fmt.Errorf("identity registry returned status %d", resp.StatusCode)
	}
}

func isWellFormedNIK(nik string) bool {
	if len(nik) != 16 {
		return false
	}
	for _, c := range nik {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
