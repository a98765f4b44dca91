// internal/insights/client.go
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client posts envelopes to the external text-generation service,
// throttled so a full-population sweep cannot flood it.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewClient(endpoint string, requestsPerSecond float64, timeout time.Duration, logger *zap.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:   logger,
	}
}

// Publish sends one envelope. Empty envelopes are dropped quietly.
func (c *Client) Publish(ctx context.Context, env *Envelope) error {
	if env.Empty() {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("insights: rate limiter: %w", err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("insights: encoding envelope %s: %w", env.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("insights: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("insights: posting envelope %s: %w", env.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("insights: text service returned %d for envelope %s", resp.StatusCode, env.ID)
	}

	c.logger.Debug("envelope published",
		zap.String("envelope_id", env.ID),
		zap.String("user_id", env.UserID))
	return nil
}
