package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
	"github.com/c360/dynsynonym/filter"
	"github.com/c360/dynsynonym/health"
	"github.com/c360/dynsynonym/metric"
	"github.com/c360/dynsynonym/scheduler"
	"github.com/c360/dynsynonym/source"
	"github.com/c360/dynsynonym/synonym"
)

// Controller is the lifecycle owner of the reload pipeline. It is
// constructed once per hosting unit (index, node, process), collects filter
// definitions, and exposes Start/Close to the host.
type Controller struct {
	cfg       config.EngineConfig
	logger    *slog.Logger
	registry  *metric.Registry
	monitor   *health.Monitor
	scheduler *scheduler.Scheduler
	consumers *filter.Consumers

	mu          sync.Mutex
	definitions map[string]*definition
	started     bool
	closed      bool
}

// definition binds one named filter definition to its source and handle
type definition struct {
	cfg    config.FilterConfig
	src    source.Source
	handle *synonym.Handle
}

// Controller is the engine's implementation of the filter construction
// surface.
var _ filter.HandleProvider = (*Controller)(nil)

// New creates a controller with its own metric registry, health monitor,
// and scheduler. A nil logger falls back to slog.Default().
func New(cfg config.EngineConfig, logger *slog.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := metric.NewRegistry()
	monitor := health.NewMonitor()

	return &Controller{
		cfg:         cfg,
		logger:      logger.With("component", "engine"),
		registry:    registry,
		monitor:     monitor,
		scheduler:   scheduler.New(cfg, registry, monitor, logger),
		consumers:   filter.NewConsumers(registry.CoreMetrics()),
		definitions: make(map[string]*definition),
	}, nil
}

// AddDefinition registers a named filter definition. Definitions added
// after Start begin polling immediately, with an eager first load.
// Configuration problems are surfaced synchronously here and are fatal to
// this definition; nothing is retried.
func (c *Controller) AddDefinition(name string, fcfg config.FilterConfig) error {
	c.mu.Lock()
	eager, err := c.addDefinitionLocked(name, fcfg)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if eager {
		c.scheduler.PollAll(context.Background())
	}
	return nil
}

// addDefinitionLocked does the registration under c.mu. It reports whether
// the caller must run an eager poll because the engine is already started.
func (c *Controller) addDefinitionLocked(name string, fcfg config.FilterConfig) (bool, error) {
	if c.closed {
		return false, errors.WrapFatal(errors.ErrAlreadyClosed, "Controller", "AddDefinition", "add definition")
	}
	if name == "" {
		return false, errors.WrapFatal(errors.ErrMissingConfig, "Controller", "AddDefinition",
			"definition name is required")
	}
	if _, exists := c.definitions[name]; exists {
		return false, errors.WrapFatal(errors.ErrInvalidConfig, "Controller", "AddDefinition",
			fmt.Sprintf("duplicate definition %q", name))
	}

	src, err := source.New(fcfg)
	if err != nil {
		return false, err
	}

	handle := synonym.NewHandle(nil)
	err = c.scheduler.Register(scheduler.TaskSpec{
		Source: src,
		Handle: handle,
		CompileOptions: synonym.Options{
			Expand:  fcfg.Expand,
			Lenient: fcfg.Lenient,
		},
		Interval: fcfg.PollInterval(),
	})
	if err != nil {
		_ = src.Close()
		return false, err
	}

	c.definitions[name] = &definition{cfg: fcfg, src: src, handle: handle}
	c.logger.Info("filter definition added",
		"definition", name,
		"source", src.Describe().String(),
		"poll_interval", fcfg.PollInterval())
	return c.started, nil
}

// Define returns the handle for a named definition, creating it on first
// use. Callers holding a loose configuration map, such as the bleve filter
// constructor, resolve through here so the same definition is shared by
// every analyzer that references it.
func (c *Controller) Define(name string, fcfg config.FilterConfig) (*synonym.Handle, error) {
	c.mu.Lock()
	if def, ok := c.definitions[name]; ok {
		c.mu.Unlock()
		return def.handle, nil
	}

	eager, err := c.addDefinitionLocked(name, fcfg)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	handle := c.definitions[name].handle
	c.mu.Unlock()

	if eager {
		c.scheduler.PollAll(context.Background())
	}
	return handle, nil
}

// Handle returns the live handle for a named definition
func (c *Controller) Handle(name string) (*synonym.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	def, ok := c.definitions[name]
	if !ok {
		return nil, false
	}
	return def.handle, true
}

// Consumers returns the consumer registry
func (c *Controller) Consumers() *filter.Consumers {
	return c.consumers
}

// NewFilter constructs a registered token filter for a named definition
func (c *Controller) NewFilter(name string) (*filter.SynonymFilter, error) {
	handle, ok := c.Handle(name)
	if !ok {
		return nil, errors.WrapFatal(errors.ErrInvalidConfig, "Controller", "NewFilter",
			fmt.Sprintf("unknown filter definition %q", name))
	}
	return filter.NewSynonymFilter(handle, c.consumers.Register(name)), nil
}

// Start launches the scheduler and performs an eager initial poll so
// filters have rules before the first tick. Starting twice is an error.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.WrapFatal(errors.ErrAlreadyClosed, "Controller", "Start", "start after close")
	}
	if c.started {
		return errors.ErrAlreadyStarted
	}

	if err := c.scheduler.Start(ctx); err != nil {
		return errors.WrapFatal(err, "Controller", "Start", "start scheduler")
	}
	c.started = true

	c.scheduler.PollAll(ctx)
	c.logger.Info("engine started", "definitions", len(c.definitions))
	return nil
}

// Close tears the pipeline down: no new poll cycle starts, in-flight
// cycles get the configured grace period, then source resources are
// released regardless. Idempotent and safe to call concurrently; only the
// first effective call performs work. Shutdown problems are logged, not
// returned: teardown is best-effort and always completes.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.started {
		if err := c.scheduler.Stop(c.cfg.ShutdownGrace); err != nil {
			c.logger.Error("poll cycles did not drain in time, force-releasing resources",
				"error", err, "grace", c.cfg.ShutdownGrace)
		}
	}

	for name, def := range c.definitions {
		if err := def.src.Close(); err != nil {
			c.logger.Warn("source close failed", "definition", name, "error", err)
		}
	}

	c.logger.Info("engine closed")
	return nil
}

// Reload forces one poll cycle for every definition on the calling
// goroutine, outside the periodic schedule.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return errors.ErrNotStarted
	}
	c.mu.Unlock()

	c.scheduler.PollAll(ctx)
	return nil
}

// Health returns the aggregated health of all sources
func (c *Controller) Health() health.Status {
	return c.monitor.AggregateHealth("dynsynonym")
}

// MetricsRegistry exposes the metric registry for the host's scrape
// endpoint.
func (c *Controller) MetricsRegistry() *metric.Registry {
	return c.registry
}
