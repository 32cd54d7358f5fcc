package gateway

import (
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

type ProviderState int

const (
	StateHealthy ProviderState = iota
	StateCircuitOpen
)

func (s ProviderState) String() string {
	switch s {
	case StateHealthy:
		return "HEALTHY"
	case StateCircuitOpen:
		return "CIRCUIT_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Provider is one SMS/Zalo operator endpoint guarded by a circuit breaker.
type Provider struct {
	name   string
	url    string
	weight int
	client *fasthttp.Client

	sent             atomic.Int64
	failed           atomic.Int64
	consecutiveFails atomic.Int32
	openUntil        atomic.Int64 // unix nanos; zero when closed
}

func NewProvider(name, url string, weight int, client *fasthttp.Client) *Provider {
	return &Provider{name: name, url: url, weight: weight, client: client}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) State(now time.Time) ProviderState {
	if until := p.openUntil.Load(); until != 0 && now.UnixNano() < until {
		return StateCircuitOpen
	}
	return StateHealthy
}

// Available reports whether requests may be sent. After the cooldown the
// breaker is half-open: the next request is let through and its outcome
// decides whether the circuit closes.
func (p *Provider) Available(now time.Time) bool {
	return p.State(now) == StateHealthy
}

func (p *Provider) recordSuccess() {
	p.sent.Add(1)
	p.consecutiveFails.Store(0)
	p.openUntil.Store(0)
}

// recordFailure returns true when this failure opened the circuit.
func (p *Provider) recordFailure(now time.Time, threshold int, cooldown time.Duration) bool {
	p.failed.Add(1)
	fails := p.consecutiveFails.Add(1)
	if threshold <= 0 || int(fails) < threshold {
		return false
	}
	p.openUntil.Store(now.Add(cooldown).UnixNano())
	p.consecutiveFails.Store(0)
	return true
}

// SuccessRate is 1 for a provider that has not been used yet.
func (p *Provider) SuccessRate() float64 {
	sent, failed := p.sent.Load(), p.failed.Load()
	if sent+failed == 0 {
		return 1
	}
	return float64(sent) / float64(sent+failed)
}

func (p *Provider) score() float64 {
	return float64(p.weight) * p.SuccessRate()
}
