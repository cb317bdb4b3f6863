// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     stt
// Description: HTTP client for the backend speech-to-text endpoint
// License:     MIT
// ============================================================================

package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/arogya/teleconsult/pkg/core/logging"
)

// Client uploads recordings to the backend speech-to-text endpoint
type Client struct {
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewClient creates a speech-to-text client. baseURL is the API root,
// e.g. "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.New("stt")
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type sttResponse struct {
	Status   string `json:"status"`
	Text     string `json:"text"`
	Language struct {
		Detected   string  `json:"detected"`
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"language"`
	EnglishText string `json:"english_text"`
}

// Transcribe uploads the WAV recording and returns the transcription
func (c *Client) Transcribe(ctx context.Context, wav []byte, req Request) (Result, error) {
	if len(wav) == 0 {
		return Result{}, fmt.Errorf("no audio to transcribe")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "recording.wav")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return Result{}, fmt.Errorf("failed to write audio data: %w", err)
	}

	if err := writer.WriteField("consultation_id", req.ConsultationID); err != nil {
		return Result{}, fmt.Errorf("failed to write consultation_id field: %w", err)
	}
	if req.SourceLanguage != "" {
		if err := writer.WriteField("source_language", req.SourceLanguage); err != nil {
			return Result{}, fmt.Errorf("failed to write source_language field: %w", err)
		}
	}
	if err := writer.WriteField("enable_auto_detect", strconv.FormatBool(req.AutoDetect)); err != nil {
		return Result{}, fmt.Errorf("failed to write enable_auto_detect field: %w", err)
	}
	if req.VoiceGender != "" {
		prefs, _ := json.Marshal(map[string]string{"gender": req.VoiceGender})
		if err := writer.WriteField("voice_preferences", string(prefs)); err != nil {
			return Result{}, fmt.Errorf("failed to write voice_preferences field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := c.baseURL + "/speech-to-text"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Debug("uploading recording", "url", url, "size", len(wav))
	start := time.Now()

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("speech-to-text error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp sttResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Result{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.Status != "success" {
		return Result{}, fmt.Errorf("speech-to-text failed: status %q", apiResp.Status)
	}

	c.logger.Debug("transcription complete",
		"duration", time.Since(start),
		"language", apiResp.Language.Detected,
		"text_length", len(apiResp.Text),
	)

	return Result{
		Text:         apiResp.Text,
		EnglishText:  apiResp.EnglishText,
		Language:     apiResp.Language.Detected,
		LanguageName: apiResp.Language.Name,
		Confidence:   apiResp.Language.Confidence,
	}, nil
}
