package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"towerdeck/internal/config"
	towerdeck_errors "towerdeck/pkg/errors"
)

// BrainClient forwards control commands to the external ATC decision service.
// The brain owns all flight-plan and sequencing logic; this side only relays
// requests and surfaces the upstream response unmodified.
type BrainClient struct {
	baseURL string
	client  *http.Client
}

func NewBrainClient(cfg config.BrainConfig) *BrainClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrainClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Start forwards POST /api/start. A non-success upstream response comes back
// as an UpstreamError carrying the status and body verbatim; a transport
// failure means the brain is unreachable.
func (b *BrainClient) Start(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/start", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("brain unreachable: %w", towerdeck_errors.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, respBody, &towerdeck_errors.UpstreamError{
			Status: resp.StatusCode,
			Body:   respBody,
		}
	}
	return resp.StatusCode, respBody, nil
}

// Health pings the brain's health endpoint. Best-effort: the brain being down
// degrades the dashboard but never blocks it.
func (b *BrainClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return towerdeck_errors.ErrServiceUnavailable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return towerdeck_errors.ErrServiceUnavailable
	}
	return nil
}
