package filter

import (
	"sync"

	"github.com/c360/dynsynonym/metric"
)

// Consumers tracks live token filter instances for bookkeeping and the
// active-consumers gauge. It holds no reference to any consumer, only a
// name keyed by a registration ID.
type Consumers struct {
	metrics *metric.Metrics

	mu      sync.Mutex
	entries map[uint64]string
	nextID  uint64
}

// NewConsumers creates a consumer registry. metrics may be nil, in which
// case only counts are tracked.
func NewConsumers(metrics *metric.Metrics) *Consumers {
	return &Consumers{
		metrics: metrics,
		entries: make(map[uint64]string),
	}
}

// Register records a new live consumer and returns its registration. The
// consumer closes the registration on its own teardown.
func (c *Consumers) Register(name string) *Registration {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.entries[id] = name
	count := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ActiveConsumers.Set(float64(count))
	}

	return &Registration{consumers: c, id: id}
}

// Count returns the number of currently registered consumers
func (c *Consumers) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Names returns the names of currently registered consumers
func (c *Consumers) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.entries))
	for _, name := range c.entries {
		names = append(names, name)
	}
	return names
}

func (c *Consumers) remove(id uint64) {
	c.mu.Lock()
	delete(c.entries, id)
	count := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.ActiveConsumers.Set(float64(count))
	}
}

// Registration is a consumer's membership in the registry. Closing it
// removes the entry; Close is idempotent.
type Registration struct {
	consumers *Consumers
	id        uint64
	once      sync.Once
}

// Close removes this consumer from the registry
func (r *Registration) Close() error {
	r.once.Do(func() {
		r.consumers.remove(r.id)
	})
	return nil
}
