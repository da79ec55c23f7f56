package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/dynsynonym/source"
	"github.com/c360/dynsynonym/synonym"
)

// TaskSpec describes one periodic poll task: the source to watch, the
// handle to publish compiled maps into, and how to compile.
type TaskSpec struct {
	Source         source.Source
	Handle         *synonym.Handle
	CompileOptions synonym.Options
	Interval       time.Duration
}

// task is a registered poll task. Cycle execution for one task is
// serialized by the inFlight guard; forceReload is only touched from
// inside a cycle and so needs no further synchronization.
type task struct {
	id       string
	source   source.Source
	handle   *synonym.Handle
	opts     synonym.Options
	interval time.Duration

	inFlight atomic.Bool

	// forceReload makes the next cycle refetch even when the source
	// reports no change. Set after a compile failure: the freshness marker
	// advanced with the fetch, but the fetched text never became the
	// serving map, so the rules must be retried next poll.
	forceReload bool
}

func newTask(spec TaskSpec) *task {
	opts := spec.CompileOptions
	return &task{
		id:       uuid.NewString(),
		source:   spec.Source,
		handle:   spec.Handle,
		opts:     opts,
		interval: spec.Interval,
	}
}

func (t *task) key() string {
	return t.source.Describe().String()
}

// tick submits the task if no cycle for it is in flight. Returns false if
// the tick was skipped.
func (t *task) tryAcquire() bool {
	return t.inFlight.CompareAndSwap(false, true)
}

func (t *task) release() {
	t.inFlight.Store(false)
}

// contextDone reports whether the poll context was cancelled, without
// blocking.
func contextDone(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
