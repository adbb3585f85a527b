package syncer

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSync returns a synchronizer over fresh source/replica roots (source
// created, replica not) plus the buffer its log records land in.
func newTestSync(t *testing.T) (*Synchronizer, string, string, *bytes.Buffer) {
	t.Helper()
	base := t.TempDir()
	source := filepath.Join(base, "source")
	replica := filepath.Join(base, "replica")
	require.NoError(t, os.MkdirAll(source, 0o755))

	log, buf := newTestLogger()
	return New(source, replica, log), source, replica, buf
}

func TestSynchronizeConvergence(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	writeFile(t, source, "a.txt", "alpha")
	writeFile(t, source, "docs/report.pdf", "pdf-bytes")
	writeFile(t, source, "docs/sub/deep.txt", "deep")
	require.NoError(t, os.MkdirAll(filepath.Join(source, "empty"), 0o755))

	require.NoError(t, s.Synchronize())

	log, _ := newTestLogger()
	assert.True(t, Snapshot(source, log).Equal(Snapshot(replica, log)),
		"replica snapshot must equal source snapshot after one pass")

	content, err := os.ReadFile(filepath.Join(replica, "docs", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))
	assert.DirExists(t, filepath.Join(replica, "docs"))
	assert.DirExists(t, filepath.Join(replica, "empty"))
}

func TestSynchronizeIdempotence(t *testing.T) {
	s, source, _, buf := newTestSync(t)
	writeFile(t, source, "a.txt", "alpha")
	writeFile(t, source, "b/c.txt", "nested")

	require.NoError(t, s.Synchronize())

	buf.Reset()
	require.NoError(t, s.Synchronize())

	second := buf.String()
	assert.NotContains(t, second, "COPIED")
	assert.NotContains(t, second, "CREATED DIRECTORY")
	assert.NotContains(t, second, "REMOVED")
	assert.Contains(t, second, "synchronization completed")
}

func TestSynchronizeNeverMutatesSource(t *testing.T) {
	s, source, _, _ := newTestSync(t)
	writeFile(t, source, "a.txt", "alpha")
	writeFile(t, source, "b/c.txt", "nested")

	log, _ := newTestLogger()
	before := Snapshot(source, log)
	beforeDigest, err := fileDigest(filepath.Join(source, "a.txt"))
	require.NoError(t, err)

	require.NoError(t, s.Synchronize())
	require.NoError(t, s.Synchronize())

	assert.True(t, before.Equal(Snapshot(source, log)))
	afterDigest, err := fileDigest(filepath.Join(source, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, beforeDigest, afterDigest)
}

func TestSynchronizeMissingSourceLeavesReplicaUntouched(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	writeFile(t, source, "a.txt", "alpha")
	require.NoError(t, s.Synchronize())

	// source vanishes between passes
	require.NoError(t, os.RemoveAll(source))

	err := s.Synchronize()
	assert.ErrorIs(t, err, ErrSourceMissing)
	assert.FileExists(t, filepath.Join(replica, "a.txt"),
		"a vanished source must never be interpreted as delete-everything")
}

func TestSynchronizeSkipsIdenticalFiles(t *testing.T) {
	s, source, replica, buf := newTestSync(t)
	writeFile(t, source, "a.txt", "same content")
	dst := writeFile(t, replica, "a.txt", "same content")

	// identical content, divergent mtime: still no rewrite
	stale := time.Now().Add(-72 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(dst, stale, stale))

	require.NoError(t, s.Synchronize())

	assert.NotContains(t, buf.String(), "COPIED")
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, stale.Unix(), info.ModTime().Unix(), "identical file must not be rewritten")
}

func TestSynchronizeEmptySourceClearsReplica(t *testing.T) {
	s, _, replica, _ := newTestSync(t)
	writeFile(t, replica, "a.txt", "stale")
	writeFile(t, replica, "b/c.txt", "stale nested")

	require.NoError(t, s.Synchronize())

	entries, err := os.ReadDir(replica)
	require.NoError(t, err)
	assert.Empty(t, entries, "replica must be emptied when source is empty")
}

func TestSynchronizeOverwritesSameSizeDifferentContent(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	writeFile(t, source, "x.txt", "hello")
	writeFile(t, replica, "x.txt", "world") // same byte length

	require.NoError(t, s.Synchronize())

	content, err := os.ReadFile(filepath.Join(replica, "x.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestSynchronizeCreatesReplicaRoot(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	writeFile(t, source, "docs/report.pdf", "pdf-bytes")

	require.NoError(t, s.Synchronize())

	assert.DirExists(t, replica)
	assert.FileExists(t, filepath.Join(replica, "docs", "report.pdf"))
}

func TestSynchronizeRemovesReplicaOnlyEntries(t *testing.T) {
	s, source, replica, buf := newTestSync(t)
	writeFile(t, source, "keep.txt", "keep")
	require.NoError(t, s.Synchronize())

	writeFile(t, replica, "stray.txt", "stray")
	writeFile(t, replica, "stray-dir/nested/deep.txt", "stray")

	buf.Reset()
	require.NoError(t, s.Synchronize())

	assert.FileExists(t, filepath.Join(replica, "keep.txt"))
	assert.NoFileExists(t, filepath.Join(replica, "stray.txt"))
	assert.NoDirExists(t, filepath.Join(replica, "stray-dir"))
	assert.Contains(t, buf.String(), "REMOVED FILE")
	assert.Contains(t, buf.String(), "REMOVED DIRECTORY")
}

func TestSynchronizePicksUpSourceChanges(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	writeFile(t, source, "a.txt", "first version")
	require.NoError(t, s.Synchronize())

	writeFile(t, source, "a.txt", "second version, longer")
	writeFile(t, source, "new.txt", "brand new")

	require.NoError(t, s.Synchronize())

	content, err := os.ReadFile(filepath.Join(replica, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second version, longer", string(content))
	assert.FileExists(t, filepath.Join(replica, "new.txt"))
}

func TestSynchronizeKindMismatchIsLeftAlone(t *testing.T) {
	s, source, replica, _ := newTestSync(t)
	require.NoError(t, os.MkdirAll(filepath.Join(source, "entry"), 0o755))
	writeFile(t, replica, "entry", "a file where source has a directory")

	require.NoError(t, s.Synchronize())

	// existing replica entry is treated as present regardless of kind
	info, err := os.Stat(filepath.Join(replica, "entry"))
	require.NoError(t, err)
	assert.False(t, info.IsDir(), "kind-mismatched entry is left untouched")
}

func TestSynchronizeContinuesPastItemFailures(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission failures are not enforceable as root")
	}

	s, source, replica, buf := newTestSync(t)
	writeFile(t, source, "readable.txt", "ok")
	locked := writeFile(t, source, "locked.txt", "secret")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	require.NoError(t, s.Synchronize(), "per-item failures must not abort the pass")

	assert.FileExists(t, filepath.Join(replica, "readable.txt"))
	assert.NoFileExists(t, filepath.Join(replica, "locked.txt"))
	assert.Contains(t, buf.String(), "copy failed")
	assert.Contains(t, strings.ToLower(buf.String()), "failed=1")
}

func TestSynchronizeLogsPassMarkers(t *testing.T) {
	s, source, replica, buf := newTestSync(t)
	writeFile(t, source, "a.txt", "alpha")

	require.NoError(t, s.Synchronize())

	out := buf.String()
	assert.Contains(t, out, "starting synchronization")
	assert.Contains(t, out, "synchronization completed")
	assert.Contains(t, out, slog.String("source", source).String())
	assert.Contains(t, out, slog.String("replica", replica).String())
}
