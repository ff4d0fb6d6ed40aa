// Package health checks the external dependencies a mining run is configured
// to use, so that an operator can verify Postgres, Redis and Kafka before a
// long batch starts.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check pings one dependency. A nil error means it is reachable.
type Check func(ctx context.Context) error

// ComponentHealth is the outcome of one check.
type ComponentHealth struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency"`
}

// Report lists every component sorted by name. Status is down as soon as one
// component is down.
type Report struct {
	Status     Status            `json:"status"`
	Components []ComponentHealth `json:"components"`
	Timestamp  string            `json:"timestamp"`
}

// Err returns an ErrUnavailable error naming the failed components, or nil.
func (r Report) Err() error {
	var down []string
	for _, c := range r.Components {
		if c.Status == StatusDown {
			down = append(down, fmt.Sprintf("%s (%s)", c.Name, c.Message))
		}
	}
	if len(down) == 0 {
		return nil
	}
	return apperrors.Newf(apperrors.ErrUnavailable, "preflight", "unreachable: %s", strings.Join(down, ", "))
}

// Checker runs registered checks concurrently, each bounded by timeout.
type Checker struct {
	mu      sync.Mutex
	checks  map[string]Check
	timeout time.Duration
	logger  *slog.Logger
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: timeout,
		logger:  slog.Default().With("component", "health"),
	}
}

func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

func (c *Checker) Run(ctx context.Context) Report {
	c.mu.Lock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	checks := make([]Check, len(names))
	sort.Strings(names)
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	c.mu.Unlock()

	report := Report{
		Status:     StatusUp,
		Components: make([]ComponentHealth, len(names)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	var g errgroup.Group
	for i := range names {
		i := i
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			start := time.Now()
			err := checks[i](cctx)
			comp := ComponentHealth{
				Name:    names[i],
				Status:  StatusUp,
				Latency: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				comp.Status = StatusDown
				comp.Message = err.Error()
			}
			report.Components[i] = comp
			return nil
		})
	}
	_ = g.Wait()
	for _, comp := range report.Components {
		if comp.Status == StatusDown {
			report.Status = StatusDown
			c.logger.Warn("dependency unreachable", "name", comp.Name, "error", comp.Message)
		}
	}
	return report
}
