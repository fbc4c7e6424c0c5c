package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/compliment-hotline/compliment-bot/internal/health"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// Probes implements HealthChecker on top of the aggregate component checker.
type Probes struct {
	checker *health.Checker
	log     *slog.Logger
}

// NewProbes creates a new Probes instance. The checker may be nil, in which
// case readiness always succeeds.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Liveness reports whether the process is running at all.
func (p *Probes) Liveness(ctx context.Context) error {
	if p.log != nil {
		p.log.Debug("liveness probe called")
	}
	return nil
}

// Readiness runs the registered component checks and fails when any of them does.
func (p *Probes) Readiness(ctx context.Context) error {
	if p.log != nil {
		p.log.Debug("readiness probe called")
	}

	if p.checker == nil {
		return nil
	}

	for name, status := range p.checker.Check(ctx) {
		if status != "OK" {
			return fmt.Errorf("component %s not ready: %s", name, status)
		}
	}

	return nil
}
