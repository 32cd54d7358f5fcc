package services

import (
	"context"
	"errors"
	"fmt"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	deps map[string]Pinger
}

// NewHealthService checks the named dependencies, e.g. "postgres" and "redis".
func NewHealthService(deps map[string]Pinger) *HealthService {
	return &HealthService{deps: deps}
}

// Check pings every dependency and returns a per-dependency status along with
// the joined errors.
func (s *HealthService) Check(ctx context.Context) (map[string]string, error) {
	status := make(map[string]string, len(s.deps))
	var errs []error
	for name, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			status[name] = "down"
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		status[name] = "up"
	}
	return status, errors.Join(errs...)
}
