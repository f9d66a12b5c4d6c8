// Package handlers contains the HTTP handlers mounted on the core chassis.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"slskdrelay/internal/core"
	"slskdrelay/internal/notifications/relay"
	"slskdrelay/internal/types"
)

// Response messages for accepted events.
const (
	MessageProcessed = "Webhook processed successfully"
	MessageIgnored   = "Notification ignored"
)

// Relayer runs one raw event through the relay pipeline.
type Relayer interface {
	Relay(ctx context.Context, raw []byte) relay.Outcome
}

// WebhookResponse is the body returned for accepted events.
type WebhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WebhookHandler accepts slskd notifications and relays them to Discord.
type WebhookHandler struct {
	relayer      Relayer
	path         string
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewWebhookHandler creates a WebhookHandler serving POST requests on path.
func NewWebhookHandler(relayer Relayer, path string, maxBodyBytes int64, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = "/webhook"
	}
	return &WebhookHandler{
		relayer:      relayer,
		path:         path,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// RegisterRoutes mounts the handler. It matches core.Server.RouteRegistrars.
func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post(h.path, h.Receive)
}

// Receive handles POST {path}. Every request produces at most one delivery
// attempt; the response reports whether it succeeded.
//
//	200 success  delivered, or ignored (replayed chat)
//	400          body too large, unreadable or not a JSON object
//	500          delivery failed or no sink configured
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := core.ReadBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.logger.WarnContext(r.Context(), "rejected webhook body",
			"request_id", types.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		core.Error(w, r, err)
		return
	}

	outcome := h.relayer.Relay(r.Context(), body)

	switch outcome.Status {
	case relay.OutcomeDelivered:
		core.JSON(w, r, http.StatusOK, WebhookResponse{Status: "success", Message: MessageProcessed})
	case relay.OutcomeSuppressed:
		core.JSON(w, r, http.StatusOK, WebhookResponse{Status: "success", Message: MessageIgnored})
	default:
		if outcome.Err == nil {
			core.Error(w, r, types.NewAppError(types.ErrCodeInternalUnexpected, "relay failed without an error", nil))
			return
		}
		core.Error(w, r, outcome.Err)
	}
}
