package source

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/c360/dynsynonym/config"
)

// FileSource reads synonym rules from a local file. Change detection
// compares the file's modification time and size against the values
// recorded by the last successful Fetch. A missing or unreadable file is a
// configuration problem on the host and is surfaced as ErrSourceUnavailable
// rather than silently swallowed.
type FileSource struct {
	path string

	mu       sync.Mutex
	lastMod  time.Time
	lastSize int64
	loaded   bool
}

// NewFileSource creates a file-backed source for the given path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// CheckChanged compares the file's current mtime and size against the
// freshness marker. Before the first successful Fetch it always reports
// changed so the initial load happens.
func (f *FileSource) CheckChanged(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return false, unavailable(err, "FileSource", "CheckChanged", fmt.Sprintf("stat %s", f.path))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		return true, nil
	}
	return !info.ModTime().Equal(f.lastMod) || info.Size() != f.lastSize, nil
}

// Fetch reads the whole file and advances the freshness marker on success
func (f *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stat before read so the recorded marker is never newer than the
	// content we return; a write between the two shows up as changed on
	// the next poll.
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, unavailable(err, "FileSource", "Fetch", fmt.Sprintf("stat %s", f.path))
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, unavailable(err, "FileSource", "Fetch", fmt.Sprintf("read %s", f.path))
	}

	f.mu.Lock()
	f.lastMod = info.ModTime()
	f.lastSize = info.Size()
	f.loaded = true
	f.mu.Unlock()

	return data, nil
}

// Describe identifies this source
func (f *FileSource) Describe() Descriptor {
	return Descriptor{Kind: config.SourceLocal, Location: f.path}
}

// Close is a no-op for file sources; there is no pooled resource to release
func (f *FileSource) Close() error {
	return nil
}
