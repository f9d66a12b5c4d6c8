// Package relay runs one inbound slskd event through decode, translate and
// deliver, and reports what happened as an Outcome.
//
// The dispatcher knows nothing about HTTP or Discord. The sink is injected as
// a Deliverer and called at most once per event; there is no retry.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/mo"

	"slskdrelay/internal/types"
)

// Translator maps a decoded event to zero or one outbound message.
type Translator interface {
	Translate(ev types.Event) mo.Option[types.Message]
}

// Deliverer hands a message to the outbound sink. It returns the sink's
// status code when one was received.
type Deliverer interface {
	Deliver(ctx context.Context, msg types.Message) (int, error)
}

// DeliverFunc adapts a plain function to the Deliverer interface.
type DeliverFunc func(ctx context.Context, msg types.Message) (int, error)

// Deliver calls f(ctx, msg).
func (f DeliverFunc) Deliver(ctx context.Context, msg types.Message) (int, error) {
	return f(ctx, msg)
}

// OutcomeStatus classifies how a relay attempt ended.
type OutcomeStatus string

const (
	OutcomeDelivered   OutcomeStatus = "delivered"
	OutcomeSuppressed  OutcomeStatus = "suppressed"
	OutcomeClientError OutcomeStatus = "client_error"
	OutcomeServerError OutcomeStatus = "server_error"
)

// Outcome is the result of relaying one event.
type Outcome struct {
	Status OutcomeStatus
	// Kind is the decoded event kind; empty when decoding failed.
	Kind types.EventKind
	// SinkStatus is the status code the sink answered with, or 0 when the
	// sink was never reached.
	SinkStatus int
	// Err is set for OutcomeClientError and OutcomeServerError.
	Err *types.AppError
}

// HTTPStatus maps the outcome onto the status the relay answers the sender with.
func (o Outcome) HTTPStatus() int {
	switch o.Status {
	case OutcomeDelivered, OutcomeSuppressed:
		return http.StatusOK
	case OutcomeClientError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Dispatcher wires a Translator to a Deliverer.
type Dispatcher struct {
	translator Translator
	deliverer  Deliverer
	logger     *slog.Logger
}

// NewDispatcher creates a Dispatcher. A nil deliverer is accepted; every
// non-suppressed event then fails with internal_sink_not_configured.
func NewDispatcher(translator Translator, deliverer Deliverer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		translator: translator,
		deliverer:  deliverer,
		logger:     logger,
	}
}

// Relay decodes raw, translates it and delivers the result at most once.
func (d *Dispatcher) Relay(ctx context.Context, raw []byte) Outcome {
	ev, err := types.DecodeEvent(raw)
	if err != nil {
		appErr := asAppError(err, types.ErrCodeValidationInvalidJSON, "invalid JSON in request body")
		d.logger.WarnContext(ctx, "rejected malformed event",
			"error", appErr.Error(),
			"body_size", len(raw),
		)
		return Outcome{Status: OutcomeClientError, Err: appErr}
	}

	kind := ev.Kind()
	d.logger.InfoContext(ctx, "received event", "kind", string(kind))
	d.logger.DebugContext(ctx, "event payload", "kind", string(kind), "payload", string(raw))

	msg, ok := d.translator.Translate(ev).Get()
	if !ok {
		d.logger.InfoContext(ctx, "event ignored", "kind", string(kind))
		return Outcome{Status: OutcomeSuppressed, Kind: kind}
	}

	if d.deliverer == nil {
		appErr := types.NewAppError(types.ErrCodeInternalSinkNotConfigured, "no notification sink is configured", nil)
		d.logger.ErrorContext(ctx, "cannot deliver event", "kind", string(kind), "error", appErr.Error())
		return Outcome{Status: OutcomeServerError, Kind: kind, Err: appErr}
	}

	status, err := d.deliverer.Deliver(ctx, msg)
	if err != nil {
		appErr := types.NewAppError(types.ErrCodeInternalSinkDelivery, "failed to deliver notification", err)
		d.logger.ErrorContext(ctx, "delivery failed",
			"kind", string(kind),
			"sink_status", status,
			"error", err.Error(),
		)
		return Outcome{Status: OutcomeServerError, Kind: kind, SinkStatus: status, Err: appErr}
	}

	d.logger.InfoContext(ctx, "event delivered", "kind", string(kind), "sink_status", status)
	return Outcome{Status: OutcomeDelivered, Kind: kind, SinkStatus: status}
}

func asAppError(err error, code types.ErrorCode, message string) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewAppError(code, message, err)
}
