// Package metric provides Prometheus metrics for the synonym reload
// pipeline: poll cycle outcomes, reload timings, rule counts, and active
// consumer bookkeeping. A single Registry owns the Prometheus registry and
// all collector registration.
package metric
