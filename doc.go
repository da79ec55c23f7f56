// Package dynsynonym provides a dynamically-reloadable synonym dictionary
// subsystem for token-filter pipelines.
//
// # Architecture
//
// The module is organized around a small set of cooperating packages:
//
//   - source: rule text acquisition from local files or remote HTTP
//     endpoints, with cheap change detection ahead of any full fetch
//   - synonym: rule compilation into immutable lookup maps, and the
//     atomically swappable Handle that token filters read through
//   - scheduler: periodic polling of every registered source over a
//     shared worker pool, with non-overlapping cycles per source
//   - filter: the bleve token filter surface and the pull-only consumer
//     registry
//   - engine: the lifecycle controller that wires definitions, sources,
//     handles, and the scheduler together, and owns startup and teardown
//
// # Reload semantics
//
// Reloads fail closed: a source outage or a malformed rule set never
// disturbs the currently serving synonym map. The old map keeps serving
// and the problem is retried on the next poll cycle. Swaps are atomic and
// lock-free on the read path; a token stream in flight keeps the map it
// started with.
//
// # Hosting
//
// The engine is an explicitly owned instance with no process-wide state.
// Library hosts construct a Controller, add filter definitions, and call
// Start and Close around their own lifecycle. cmd/dynsynonym wraps the
// same engine in a standalone daemon with Prometheus metrics and a health
// endpoint.
package dynsynonym
