package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
	"github.com/c360/dynsynonym/health"
	"github.com/c360/dynsynonym/metric"
	"github.com/c360/dynsynonym/pkg/worker"
	"github.com/c360/dynsynonym/synonym"
)

// Scheduler polls registered synonym sources on their configured intervals
// and publishes freshly compiled maps. It is an explicitly constructed,
// explicitly owned instance: no process-wide state, no ambient globals.
type Scheduler struct {
	logger  *slog.Logger
	metrics *metric.Metrics
	monitor *health.Monitor
	pool    *worker.Pool[*task]

	lifecycleMu sync.Mutex
	tasks       []*task
	started     bool
	stopped     bool
	pollCtx     context.Context
	cancel      context.CancelFunc
	tickerWg    sync.WaitGroup
}

// New creates a scheduler backed by a shared worker pool sized from the
// engine configuration.
func New(cfg config.EngineConfig, registry *metric.Registry, monitor *health.Monitor, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		logger:  logger.With("component", "scheduler"),
		metrics: registry.CoreMetrics(),
		monitor: monitor,
	}
	s.pool = worker.NewPool(cfg.Workers, cfg.QueueSize, s.runCycle,
		worker.WithMetrics[*task](registry, "poll_pool"))
	return s
}

// Register adds a poll task for a source. Tasks registered after Start
// begin ticking immediately; registration after Stop is rejected.
func (s *Scheduler) Register(spec TaskSpec) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.stopped {
		return errors.WrapFatal(errors.ErrAlreadyClosed, "Scheduler", "Register",
			"register task after stop")
	}
	if spec.Source == nil || spec.Handle == nil {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Scheduler", "Register",
			"task needs a source and a handle")
	}
	if spec.Interval <= 0 {
		return errors.WrapFatal(errors.ErrInvalidConfig, "Scheduler", "Register",
			"poll interval must be positive")
	}

	t := newTask(spec)
	s.tasks = append(s.tasks, t)

	if s.started {
		s.tickerWg.Add(1)
		go s.runTicker(s.pollCtx, t)
	}
	return nil
}

// Start launches the worker pool and one ticker per registered task. The
// context bounds all polling: cancelling it prevents any new cycle from
// starting.
func (s *Scheduler) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started {
		return errors.ErrAlreadyStarted
	}

	pollCtx, cancel := context.WithCancel(ctx)
	s.pollCtx = pollCtx
	s.cancel = cancel

	if err := s.pool.Start(pollCtx); err != nil {
		cancel()
		return errors.WrapFatal(err, "Scheduler", "Start", "start worker pool")
	}

	for _, t := range s.tasks {
		s.tickerWg.Add(1)
		go s.runTicker(pollCtx, t)
	}

	s.started = true
	s.logger.Info("scheduler started", "tasks", len(s.tasks))
	return nil
}

// PollAll runs one cycle for every registered task synchronously on the
// calling goroutine. Used for the eager initial load at engine start so
// filters have rules before the first tick.
func (s *Scheduler) PollAll(ctx context.Context) {
	s.lifecycleMu.Lock()
	tasks := make([]*task, len(s.tasks))
	copy(tasks, s.tasks)
	s.lifecycleMu.Unlock()

	for _, t := range tasks {
		if !t.tryAcquire() {
			continue
		}
		_ = s.runCycle(ctx, t)
	}
}

// Stop cancels all poll tasks and waits up to timeout for in-flight cycles
// to drain. Returns ErrShutdownTimeout if a cycle outlived the grace
// period; resources are force-released by the owner regardless.
func (s *Scheduler) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started || s.stopped {
		return nil
	}
	s.stopped = true

	// No new cycle starts after this
	s.cancel()

	deadline := time.Now().Add(timeout)
	tickersDone := make(chan struct{})
	go func() {
		s.tickerWg.Wait()
		close(tickersDone)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-tickersDone:
	case <-timer.C:
		return errors.WrapTransient(errors.ErrShutdownTimeout, "Scheduler", "Stop",
			"wait for tickers")
	}

	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	if err := s.pool.Stop(remaining); err != nil {
		return errors.WrapTransient(errors.ErrShutdownTimeout, "Scheduler", "Stop",
			"drain in-flight poll cycles")
	}

	s.logger.Info("scheduler stopped")
	return nil
}

// runTicker fires the task on its interval until the poll context is
// cancelled.
func (s *Scheduler) runTicker(ctx context.Context, t *task) {
	defer s.tickerWg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.submit(t)
		}
	}
}

// submit hands the task to the pool unless its previous cycle is still
// running.
func (s *Scheduler) submit(t *task) {
	if !t.tryAcquire() {
		s.metrics.PollCycles.WithLabelValues(t.key(), metric.ResultSkipped).Inc()
		s.logger.Debug("poll tick skipped, previous cycle still running", "source", t.key())
		return
	}

	if err := s.pool.Submit(t); err != nil {
		t.release()
		s.metrics.PollCycles.WithLabelValues(t.key(), metric.ResultSkipped).Inc()
		s.logger.Warn("poll tick dropped", "source", t.key(), "error", err)
	}
}

// runCycle executes one poll cycle: change check, fetch, compile, swap.
// Every failure is contained here; the returned error only feeds pool
// statistics. The caller must hold the task's in-flight guard.
func (s *Scheduler) runCycle(ctx context.Context, t *task) error {
	defer t.release()

	if contextDone(ctx) {
		return ctx.Err()
	}

	key := t.key()
	log := s.logger.With("source", key, "task_id", t.id)

	changed, err := t.source.CheckChanged(ctx)
	if err != nil {
		s.reportFetchFailure(log, key, "change check failed", err)
		return err
	}

	if !changed && !t.forceReload {
		s.metrics.PollCycles.WithLabelValues(key, metric.ResultNoChange).Inc()
		s.metrics.SourceUp.WithLabelValues(key).Set(1)
		s.monitor.UpdateHealthy(key, "source unchanged")
		log.Debug("poll cycle complete", "result", "no_change")
		return nil
	}

	start := time.Now()

	text, err := t.source.Fetch(ctx)
	if err != nil {
		s.reportFetchFailure(log, key, "fetch failed, serving last good map", err)
		return err
	}

	compiled, err := synonym.Compile(text, t.opts)
	if err != nil {
		// Fail closed: the previous map keeps serving. The marker already
		// advanced with the fetch, so force a refetch next poll.
		t.forceReload = true
		s.metrics.PollCycles.WithLabelValues(key, metric.ResultCompileFailed).Inc()
		s.metrics.SourceUp.WithLabelValues(key).Set(1)
		s.monitor.UpdateDegraded(key, "malformed rules, serving last good map")
		log.Error("compile failed, serving last good map", "error", err)
		return err
	}

	t.forceReload = false
	old := t.handle.Swap(compiled)

	s.metrics.PollCycles.WithLabelValues(key, metric.ResultReloaded).Inc()
	s.metrics.ReloadDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
	s.metrics.LastReload.WithLabelValues(key).SetToCurrentTime()
	s.metrics.SynonymRules.WithLabelValues(key).Set(float64(compiled.Rules()))
	s.metrics.SynonymTerms.WithLabelValues(key).Set(float64(compiled.Terms()))
	s.metrics.SourceUp.WithLabelValues(key).Set(1)
	s.monitor.UpdateHealthy(key, fmt.Sprintf("reloaded %d rules", compiled.Rules()))

	log.Info("synonym map reloaded",
		"rules", compiled.Rules(),
		"terms", compiled.Terms(),
		"fingerprint", compiled.Fingerprint(),
		"previous_fingerprint", old.Fingerprint(),
		"duration", time.Since(start))
	return nil
}

func (s *Scheduler) reportFetchFailure(log *slog.Logger, key, msg string, err error) {
	s.metrics.PollCycles.WithLabelValues(key, metric.ResultFetchFailed).Inc()
	s.metrics.SourceUp.WithLabelValues(key).Set(0)
	s.monitor.UpdateDegraded(key, msg)
	log.Warn(msg, "error", err, "class", errors.Classify(err))
}
