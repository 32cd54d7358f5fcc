package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/thammystudio/studio-crm/pkg/logger"
)

var (
	ErrNoAvailableProviders = errors.New("no available providers")
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
	StatusPending   DeliveryStatus = "PENDING"
)

type SendRequest struct {
	MessageID   string `json:"message_id"`
	PhoneNumber string `json:"phone_number"`
	Content     string `json:"content"`
	Channel     string `json:"channel"`
	Priority    string `json:"priority"`
}

type SendResponse struct {
	MessageID   string         `json:"message_id"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	OperatorID  string         `json:"operator_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

type ProviderConfig struct {
	Name   string
	URL    string
	Weight int
}

type Config struct {
	Providers               []ProviderConfig
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	// Dial replaces the TCP dialer of every provider client when set.
	Dial fasthttp.DialFunc
}

type ProviderStats struct {
	Name        string  `json:"name"`
	State       string  `json:"state"`
	Sent        int64   `json:"sent"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
}

// Client sends follow-up messages to the best available provider and fails
// over to the next one when a request errors.
type Client struct {
	config    Config
	providers []*Provider
	mu        sync.RWMutex
	now       func() time.Time
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if len(config.Providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}

	cfg := *config
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.CircuitBreakerTimeout <= 0 {
		cfg.CircuitBreakerTimeout = 30 * time.Second
	}

	client := &Client{
		config:    cfg,
		providers: make([]*Provider, 0, len(cfg.Providers)),
		now:       time.Now,
	}

	for _, pc := range cfg.Providers {
		if pc.Name == "" || pc.URL == "" {
			return nil, fmt.Errorf("provider %q: name and url are required", pc.Name)
		}
		httpClient := &fasthttp.Client{
			MaxConnsPerHost:     cfg.MaxConns,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
			Dial:                cfg.Dial,
		}
		client.providers = append(client.providers, NewProvider(pc.Name, pc.URL, pc.Weight, httpClient))
		logger.Info("provider initialized", "name", pc.Name, "url", pc.URL, "weight", pc.Weight)
	}

	return client, nil
}

// candidates returns available providers, best score first.
func (c *Client) candidates() []*Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]*Provider, 0, len(c.providers))
	for _, p := range c.providers {
		if p.Available(now) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b *Provider) int {
		switch sa, sb := a.score(), b.score(); {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return out
}

// SendSMS sends through the best scored provider. A failure lowers that
// provider's score, so the retry goes to the next one.
func (c *Client) SendSMS(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	lastErr := ErrNoAvailableProviders
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 && c.config.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		providers := c.candidates()
		if len(providers) == 0 {
			lastErr = ErrNoAvailableProviders
			continue
		}
		provider := providers[0]

		start := time.Now()
		raw, err := c.doRequest(ctx, provider, fasthttp.MethodPost, "/api/v1/sms/send", body)
		if err != nil {
			if provider.recordFailure(c.now(), c.config.CircuitBreakerThreshold, c.config.CircuitBreakerTimeout) {
				logger.Warn("circuit breaker opened", "provider", provider.name, "timeout", c.config.CircuitBreakerTimeout)
			}
			logger.Warn("provider request failed", "provider", provider.name, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}
		provider.recordSuccess()

		var resp SendResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		logger.Info("message sent to provider",
			"message_id", req.MessageID,
			"status", string(resp.Status),
			"provider", provider.name,
			"latency_ms", time.Since(start).Milliseconds())
		return &resp, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, provider *Provider, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(provider.url + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := provider.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK && status != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", status, resp.Body())
	}

	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) Stats() []ProviderStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := make([]ProviderStats, 0, len(c.providers))
	for _, p := range c.providers {
		stats = append(stats, ProviderStats{
			Name:        p.name,
			State:       p.State(now).String(),
			Sent:        p.sent.Load(),
			Failed:      p.failed.Load(),
			SuccessRate: p.SuccessRate(),
		})
	}
	return stats
}

func (c *Client) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.providers {
		p.client.CloseIdleConnections()
	}
	logger.Info("operator client closed")
	return nil
}
