package scheduler

import (
	"sync"
	"time"
)

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	Message     string    `json:"message"`
}

// Health tracks the health of named components. It is safe for concurrent use.
type Health struct {
	mu         sync.RWMutex
	components map[string]HealthStatus
	now        func() time.Time
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]HealthStatus),
		now:        time.Now,
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.components[component] = HealthStatus{
		Healthy:     true,
		LastCheck:   now,
		LastSuccess: now,
		Message:     message,
	}
}

// SetUnhealthy marks a component as unhealthy, keeping its last success time.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.components[component]
	h.components[component] = HealthStatus{
		Healthy:     false,
		LastCheck:   h.now(),
		LastSuccess: prev.LastSuccess,
		LastError:   err.Error(),
		Message:     err.Error(),
	}
}

// Status returns the status of a component and whether it was ever recorded.
func (h *Health) Status(component string) (HealthStatus, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status, ok := h.components[component]
	return status, ok
}

// All returns a copy of every component status.
func (h *Health) All() map[string]HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]HealthStatus, len(h.components))
	for name, status := range h.components {
		result[name] = status
	}
	return result
}

// Healthy returns true if all components are healthy.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}
	return true
}
