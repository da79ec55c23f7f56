// Package health provides health tracking for synonym sources and the
// reload pipeline. The scheduler reports each poll outcome per source; the
// engine aggregates source statuses into one subsystem status for the host.
package health
