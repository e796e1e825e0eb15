// Package webhook implements the client for the AI assistant endpoint.
// Every AI interaction (chat, correction drafting, report generation) goes
// through a single POST to the configured webhook URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
)

// Modes accepted by the assistant endpoint.
const (
	ModeChat       = "chat"
	ModeCorrection = "correction"
	ModeReport     = "report"
)

// Request is the payload sent to the assistant endpoint. PupilID is only
// set in report mode, where the workflow writes the generated report row
// itself.
type Request struct {
	ExamID       int64  `json:"examId"`
	TeacherID    int64  `json:"teacherId"`
	Message      string `json:"message"`
	Mode         string `json:"mode"`
	CorrectionID *int64 `json:"correctionId,omitempty"`
	PupilID      *int64 `json:"pupilId,omitempty"`
}

// Response is the assistant's reply. ExamID and CorrectionID are present
// only when the assistant created or modified the referenced row.
type Response struct {
	Output       string `json:"output"`
	ExamID       *int64 `json:"examId,omitempty"`
	CorrectionID *int64 `json:"correctionId,omitempty"`
}

// Client posts assistant requests to a fixed endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a webhook client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts the request and decodes the assistant's reply. Any transport
// failure, non-2xx status or undecodable body maps to ErrWebhookFailed so
// callers can treat the assistant as a single fallible dependency.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error().Err(err).Str("mode", req.Mode).Int64("examID", req.ExamID).Msg("Webhook request failed")
		return nil, apperrors.ErrWebhookFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Error().
			Int("status", resp.StatusCode).
			Str("mode", req.Mode).
			Int64("examID", req.ExamID).
			Str("body", string(snippet)).
			Msg("Webhook returned non-success status")
		return nil, apperrors.ErrWebhookFailed
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		logger.Error().Err(err).Str("mode", req.Mode).Msg("Webhook returned undecodable body")
		return nil, apperrors.ErrWebhookFailed
	}

	logger.Debug().
		Str("mode", req.Mode).
		Int64("examID", req.ExamID).
		Dur("elapsed", time.Since(start)).
		Msg("Webhook request completed")
	return &out, nil
}
