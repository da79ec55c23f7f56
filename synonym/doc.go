// Package synonym implements the core of the dynamic synonym subsystem:
// compiling raw rule text into an immutable lookup map and sharing the
// current map with concurrent token filters through an atomically swappable
// handle.
//
// A compiled Map is never mutated after construction. Readers obtain the
// current map with Handle.Get, which is a single atomic pointer load and
// safe on the per-token hot path; the scheduler replaces the map with
// Handle.Swap after a successful recompile. Readers holding a superseded
// map keep using it unharmed until they next call Get.
package synonym
