package scheduler

import (
	"maps"
	"sync"
	"time"
)

// HealthStatus is the last known state of one scheduled task.
type HealthStatus struct {
	Healthy     bool
	LastCheck   time.Time
	LastSuccess time.Time
	LastError   error
	Message     string
}

// Health tracks the outcome of each scheduled task.
type Health struct {
	mu         sync.RWMutex
	components map[string]HealthStatus
}

// NewHealth creates an empty tracker.
func NewHealth() *Health {
	return &Health{components: make(map[string]HealthStatus)}
}

// SetHealthy records a successful run of component.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.components[component] = HealthStatus{
		Healthy:     true,
		LastCheck:   now,
		LastSuccess: now,
		Message:     message,
	}
}

// SetUnhealthy records a failed run. The last success time is kept.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.components[component]
	status.Healthy = false
	status.LastCheck = time.Now()
	status.LastError = err
	status.Message = err.Error()
	h.components[component] = status
}

// GetStatus returns a copy of the component status, or nil if it never ran.
func (h *Health) GetStatus(component string) *HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status, ok := h.components[component]
	if !ok {
		return nil
	}
	return &status
}

// GetAllStatuses returns a copy of every status.
func (h *Health) GetAllStatuses() map[string]HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return maps.Clone(h.components)
}

// IsOverallHealthy reports whether no task's last run failed.
func (h *Health) IsOverallHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}
	return true
}
