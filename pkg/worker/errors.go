package worker

import "errors"

var (
	// ErrNilProcessor indicates the pool was constructed without a processor function
	ErrNilProcessor = errors.New("worker: processor function is nil")
	// ErrPoolNotStarted indicates work was submitted before Start
	ErrPoolNotStarted = errors.New("worker: pool not started")
	// ErrPoolStopped indicates work was submitted after Stop
	ErrPoolStopped = errors.New("worker: pool stopped")
	// ErrPoolAlreadyStarted indicates Start was called twice
	ErrPoolAlreadyStarted = errors.New("worker: pool already started")
	// ErrQueueFull indicates the work queue is at capacity
	ErrQueueFull = errors.New("worker: queue full")
	// ErrStopTimeout indicates workers did not drain within the stop timeout
	ErrStopTimeout = errors.New("worker: stop timeout exceeded")
)
