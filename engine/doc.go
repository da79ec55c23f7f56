// Package engine owns the lifecycle of the dynamic synonym subsystem. A
// Controller wires filter definitions to sources, handles, and the poll
// scheduler, starts everything exactly once, and guarantees deterministic,
// idempotent teardown: cancel poll tasks, bound in-flight work by a grace
// period, then release source resources. The host decides when to call
// Close; the controller guarantees what Close does.
package engine
