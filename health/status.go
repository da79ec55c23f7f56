package health

import (
	"time"
)

// Well-known status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status represents the health state of a source or the whole subsystem
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // "healthy", "unhealthy", "degraded"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// NewHealthy creates a healthy status for a component
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a degraded status for a component. Degraded means the
// component is serving (the last good synonym map is still live) but its
// source could not be refreshed.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusDegraded,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates an unhealthy status for a component
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   false,
		Status:    StatusUnhealthy,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Aggregate combines component statuses into a single system status. The
// system is unhealthy only if every component is unhealthy; any non-healthy
// component degrades the aggregate.
func Aggregate(systemName string, statuses []Status) Status {
	if len(statuses) == 0 {
		return NewHealthy(systemName, "no components registered")
	}

	healthy := 0
	unhealthy := 0
	for _, s := range statuses {
		switch {
		case s.IsHealthy():
			healthy++
		case s.IsUnhealthy():
			unhealthy++
		}
	}

	agg := Status{
		Component:   systemName,
		Timestamp:   time.Now(),
		SubStatuses: statuses,
	}

	switch {
	case healthy == len(statuses):
		agg.Healthy = true
		agg.Status = StatusHealthy
		agg.Message = "all sources healthy"
	case unhealthy == len(statuses):
		agg.Status = StatusUnhealthy
		agg.Message = "all sources unhealthy"
	default:
		agg.Status = StatusDegraded
		agg.Message = "some sources degraded"
	}

	return agg
}
