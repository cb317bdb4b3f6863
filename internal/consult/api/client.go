// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     api
// Description: REST client for the consultation backend
// License:     MIT
// ============================================================================

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/arogya/teleconsult/pkg/core/logging"
)

// Client talks to the consultation backend REST endpoints
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewClient creates a REST client. baseURL is the API root, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.New("api")
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Vitals are the patient measurements required to open a consultation
type Vitals struct {
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

// LanguagePreferences select the consultation languages
type LanguagePreferences struct {
	Preferred string `json:"preferred"`
	Interface string `json:"interface"`
}

// PatientDetails is the payload for starting a consultation
type PatientDetails struct {
	FirstName           string              `json:"first_name"`
	LastName            string              `json:"last_name"`
	Age                 int                 `json:"age"`
	Gender              string              `json:"gender"`
	Email               string              `json:"email"`
	Mobile              string              `json:"mobile"`
	Vitals              Vitals              `json:"vitals"`
	LanguagePreferences LanguagePreferences `json:"language_preferences"`
}

// Consultation is the backend's view of a session
type Consultation struct {
	ConsultationID string `json:"consultation_id"`
	Status         string `json:"status"`
}

// Start opens a new consultation and returns its id
func (c *Client) Start(ctx context.Context, details PatientDetails) (Consultation, error) {
	payload, err := json.Marshal(details)
	if err != nil {
		return Consultation{}, fmt.Errorf("failed to encode patient details: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/consultation/start", bytes.NewReader(payload))
	if err != nil {
		return Consultation{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Consultation{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Consultation{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Consultation{}, fmt.Errorf("start failed (status %d): %s", resp.StatusCode, string(body))
	}

	var result Consultation
	if err := json.Unmarshal(body, &result); err != nil {
		return Consultation{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.ConsultationID == "" {
		return Consultation{}, fmt.Errorf("backend returned no consultation id")
	}

	c.logger.Info("consultation started", "consultation_id", result.ConsultationID)
	return result, nil
}

// StatusInfo describes the current state of a consultation
type StatusInfo struct {
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Active reports whether the consultation accepts messages
func (s StatusInfo) Active() bool {
	return s.Status == "active"
}

// Status fetches the state of a consultation
func (c *Client) Status(ctx context.Context, consultationID string) (StatusInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/consultation/status/"+consultationID, nil)
	if err != nil {
		return StatusInfo{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return StatusInfo{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatusInfo{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return StatusInfo{}, fmt.Errorf("consultation %s not found", consultationID)
	}
	if resp.StatusCode != http.StatusOK {
		return StatusInfo{}, fmt.Errorf("status failed (status %d): %s", resp.StatusCode, string(body))
	}

	var info StatusInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return StatusInfo{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return info, nil
}

// DownloadReport fetches the consultation report PDF and writes it to
// path, creating parent directories as needed
func (c *Client) DownloadReport(ctx context.Context, consultationID, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/report/"+consultationID, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("no report for consultation %s", consultationID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("report download failed (status %d): %s", resp.StatusCode, string(body))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	c.logger.Info("report saved", "consultation_id", consultationID, "path", path, "bytes", n)
	return nil
}
