// Package source abstracts where synonym rule text comes from. A Source
// supports cheap change detection (CheckChanged) separate from the
// expensive content fetch (Fetch), so the scheduler can poll frequently
// without re-reading unchanged rules.
//
// Freshness markers (file mtime and size, or HTTP ETag/Last-Modified
// validators) are held in memory only and advance solely on a successful
// fetch: a failed poll leaves the marker at the last known good state so
// the next cycle retries from scratch.
package source
