// Package webhook implements the Discord webhook sink.
//
// It converts a types.Message into Discord's execute-webhook JSON using the
// discordgo wire structs, POSTs it through the shared external.BaseClient and
// classifies the response. Each call makes a single attempt.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"slskdrelay/internal/config"
	"slskdrelay/internal/external"
	"slskdrelay/internal/types"
)

// maxResponseBodyRead limits how much of a response body we read for error
// messages.
const maxResponseBodyRead = 4096

// defaultTimeout applies when the config leaves DISCORD_TIMEOUT at zero.
const defaultTimeout = 10 * time.Second

// DiscordSink delivers messages to a single Discord webhook.
type DiscordSink struct {
	webhookURL types.SecretString
	timeout    time.Duration
	client     *external.BaseClient
	logger     *slog.Logger
}

// NewDiscordSink creates a DiscordSink posting to cfg.WebhookURL through client.
func NewDiscordSink(cfg config.DiscordConfig, client *external.BaseClient, logger *slog.Logger) (*DiscordSink, error) {
	if cfg.WebhookURL.IsZero() {
		return nil, fmt.Errorf("discord sink: webhook URL is empty")
	}
	if client == nil {
		return nil, fmt.Errorf("discord sink: client is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &DiscordSink{
		webhookURL: cfg.WebhookURL,
		timeout:    timeout,
		client:     client,
		logger:     logger.With("sink", "discord"),
	}, nil
}

// Deliver POSTs msg to the webhook and returns the status Discord answered
// with. Any non-2xx status, timeout or transport failure is returned as an
// error; the status is 0 when no response was received.
//
// Response handling:
//   - 2xx: success (Discord answers 204 No Content without ?wait)
//   - 429: upstream_rate_limited, Retry-After recorded in the error details
//   - Other 4xx: upstream_rejected (bad payload, deleted webhook)
//   - 5xx: upstream_unavailable
func (s *DiscordSink) Deliver(ctx context.Context, msg types.Message) (int, error) {
	payload, err := json.Marshal(ToWebhookParams(msg))
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode discord payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL.Unmask(), bytes.NewReader(payload))
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create discord request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	s.logger.DebugContext(ctx, "delivering discord message", "payload_size", len(payload))

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WarnContext(ctx, "discord delivery failed", "error", err.Error())
		return 0, err
	}
	defer resp.Body.Close()

	// Read response body (limited to prevent memory abuse).
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyRead))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		s.logger.DebugContext(ctx, "discord accepted message", "status", resp.StatusCode)
		return resp.StatusCode, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, s.handle429(ctx, resp, body)

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return resp.StatusCode, s.handleFailure(ctx, types.ErrCodeUpstreamRejected, resp.StatusCode, body)

	default: // 5xx and anything unexpected
		return resp.StatusCode, s.handleFailure(ctx, types.ErrCodeUpstreamUnavailable, resp.StatusCode, body)
	}
}

// handle429 records Discord's Retry-After hint. The relay does not wait and
// retry; the hint is only surfaced in logs and error details.
func (s *DiscordSink) handle429(ctx context.Context, resp *http.Response, body []byte) error {
	retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))

	s.logger.WarnContext(ctx, "discord rate limited (429)",
		"retry_after_seconds", retryAfter.Seconds(),
		"body", truncateBody(body),
	)

	return types.NewAppErrorWithDetails(
		types.ErrCodeUpstreamRateLimited,
		"discord rate limit exceeded",
		ValidateResponse(resp.StatusCode, body),
		map[string]any{"retry_after_seconds": retryAfter.Seconds()},
	)
}

func (s *DiscordSink) handleFailure(ctx context.Context, code types.ErrorCode, status int, body []byte) error {
	s.logger.ErrorContext(ctx, "discord rejected message",
		"status", status,
		"body", truncateBody(body),
	)

	return types.NewAppErrorWithDetails(
		code,
		fmt.Sprintf("discord returned %d", status),
		ValidateResponse(status, body),
		map[string]any{"status": status},
	)
}

// parseRetryAfter extracts the retry delay from a Retry-After header value.
// Discord sends fractional seconds; HTTP-date is accepted as well. Returns 0
// when the header is missing or unparseable.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(header, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
