// Package health exposes liveness and readiness for the graph server.
// Liveness means the process is responsive; readiness means the store is
// open and at least one ingestion pass has completed.
package health

import (
	"sync"
	"time"
)

// Status represents the health of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the outcome of one component check.
type Check struct {
	Name        string         `json:"name"`
	Status      Status         `json:"status"`
	Message     string         `json:"message,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	LastChecked time.Time      `json:"last_checked"`
	Duration    time.Duration  `json:"duration_ms"`
}

// CheckFunc performs one component check.
type CheckFunc func() Check

// Response is the aggregate over all checks; worst status wins.
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// Checker runs registered checks. Readiness and liveness are separate
// sets, registered independently.
type Checker struct {
	mu    sync.RWMutex
	ready map[string]CheckFunc
	live  map[string]CheckFunc
}

// NewChecker creates an empty checker.
func NewChecker() *Checker {
	return &Checker{
		ready: make(map[string]CheckFunc),
		live:  make(map[string]CheckFunc),
	}
}

// RegisterReadiness adds a readiness check.
func (c *Checker) RegisterReadiness(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready[name] = fn
}

// RegisterLiveness adds a liveness check.
func (c *Checker) RegisterLiveness(name string, fn CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live[name] = fn
}

// Readiness runs all readiness checks.
func (c *Checker) Readiness() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return run(c.ready)
}

// Liveness runs all liveness checks. With none registered the process is
// alive by virtue of answering.
func (c *Checker) Liveness() Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return run(c.live)
}

func run(checks map[string]CheckFunc) Response {
	response := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(checks)),
	}

	for name, fn := range checks {
		start := time.Now()
		check := fn()
		check.Name = name
		check.Duration = time.Since(start)
		check.LastChecked = start
		response.Checks[name] = check

		switch check.Status {
		case StatusUnhealthy:
			response.Status = StatusUnhealthy
		case StatusDegraded:
			if response.Status != StatusUnhealthy {
				response.Status = StatusDegraded
			}
		}
	}
	return response
}
