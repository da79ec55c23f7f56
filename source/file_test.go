package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/dynsynonym/config"
	"github.com/c360/dynsynonym/errors"
)

func writeRules(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFileSource_InitialLoadAndChangeDetection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "synonyms.txt")
	writeRules(t, path, "a,b,c")

	src := NewFileSource(path)
	defer src.Close()

	// First poll always reports changed
	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(data))

	// No upstream change: repeated checks stay false
	for i := 0; i < 3; i++ {
		changed, err = src.CheckChanged(ctx)
		require.NoError(t, err)
		assert.False(t, changed)
	}
}

func TestFileSource_DetectsEdit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "synonyms.txt")
	writeRules(t, path, "a,b,c")

	src := NewFileSource(path)
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	// Backdate mtime so the edit is distinguishable even on coarse
	// filesystem timestamp granularity
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	changed, err := src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed)

	writeRules(t, path, "a,b,c,d")
	data, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c,d", string(data))

	changed, err = src.CheckChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestFileSource_MissingFileSurfaced(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "synonyms.txt")
	writeRules(t, path, "a,b,c,d")

	src := NewFileSource(path)
	defer src.Close()

	_, err := src.Fetch(ctx)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	_, err = src.CheckChanged(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
	assert.True(t, errors.IsTransient(err))

	_, err = src.Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func TestFileSource_Describe(t *testing.T) {
	src := NewFileSource("/etc/synonyms.txt")
	d := src.Describe()
	assert.Equal(t, config.SourceLocal, d.Kind)
	assert.Equal(t, "local:/etc/synonyms.txt", d.String())
}

func TestFileSource_CloseIdempotent(t *testing.T) {
	src := NewFileSource("/etc/synonyms.txt")
	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
}

func TestNew_DispatchesOnKind(t *testing.T) {
	fileCfg := config.DefaultFilterConfig()
	fileCfg.Location = "/etc/synonyms.txt"

	src, err := New(fileCfg)
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	remoteCfg := config.DefaultFilterConfig()
	remoteCfg.SourceKind = config.SourceRemote
	remoteCfg.Location = "http://rules.internal/synonyms.txt"

	src, err = New(remoteCfg)
	require.NoError(t, err)
	assert.IsType(t, &RemoteSource{}, src)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultFilterConfig() // no location
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}
