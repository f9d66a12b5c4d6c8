package external

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
)

// BreakerProbe reports a BaseClient's circuit breaker as a health component.
// An open breaker means notifications are currently being dropped.
type BreakerProbe struct {
	client *BaseClient
}

// NewBreakerProbe creates a probe for client.
func NewBreakerProbe(client *BaseClient) *BreakerProbe {
	return &BreakerProbe{client: client}
}

// Name returns the breaker name.
func (p *BreakerProbe) Name() string {
	return p.client.BreakerName()
}

// Check fails while the breaker is open. Half-open counts as healthy since
// the next delivery is allowed through.
func (p *BreakerProbe) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state := p.client.BreakerState(); state == gobreaker.StateOpen {
		return fmt.Errorf("circuit breaker %s is %s", p.client.BreakerName(), state)
	}
	return nil
}
