// Package syncer implements one-way directory synchronization: each pass
// makes the replica tree an exact copy of the source tree, comparing files by
// content and tolerating per-item failures without aborting the pass.
package syncer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/syncwell/replicator/internal/paths"
)

var ErrSourceMissing = errors.New("source directory does not exist")

// Synchronizer mirrors a source directory into a replica directory. Both
// roots are fixed at construction; all outcomes are reported through the
// injected logger.
type Synchronizer struct {
	sourceRoot  string
	replicaRoot string
	log         *slog.Logger
}

func New(sourceRoot, replicaRoot string, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		sourceRoot:  sourceRoot,
		replicaRoot: replicaRoot,
		log:         log,
	}
}

// passStats counts per-item outcomes of one pass. Failed items are skipped,
// never retried within the pass.
type passStats struct {
	copied  int
	created int
	removed int
	failed  int
}

// Synchronize performs one reconciliation pass. The replica root is created
// if absent. Per-item failures are logged and skipped; the only fatal
// condition is a missing source root, which leaves the replica completely
// untouched.
func (s *Synchronizer) Synchronize() error {
	s.log.Info("starting synchronization", "source", s.sourceRoot, "replica", s.replicaRoot)

	// A vanished source must never read as "delete everything in the
	// replica". Abort the pass and let the next scheduled one retry.
	if !paths.DirExists(s.sourceRoot) {
		s.log.Error("source directory does not exist", "path", s.sourceRoot)
		return ErrSourceMissing
	}

	if err := paths.EnsureDir(s.replicaRoot); err != nil {
		return fmt.Errorf("create replica root %s: %w", s.replicaRoot, err)
	}

	sourceSet := Snapshot(s.sourceRoot, s.log)
	replicaSet := Snapshot(s.replicaRoot, s.log)

	var stats passStats
	s.applyAdditive(sourceSet, &stats)
	s.applySubtractive(sourceSet, replicaSet, &stats)

	s.log.Info("synchronization completed",
		"copied", stats.copied,
		"created", stats.created,
		"removed", stats.removed,
		"failed", stats.failed,
	)
	return nil
}

// applyAdditive lands new and changed source content in the replica: missing
// directories are created, missing files are copied, and existing files that
// fail the content check are overwritten. Order within the set is immaterial
// because copyFile and createDirectory create missing parents themselves.
func (s *Synchronizer) applyAdditive(sourceSet mapset.Set[string], stats *passStats) {
	sourceSet.Each(func(rel string) bool {
		srcPath := filepath.Join(s.sourceRoot, rel)
		dstPath := filepath.Join(s.replicaRoot, rel)

		srcInfo, err := os.Stat(srcPath)
		if err != nil {
			// entry disappeared between snapshot and apply
			s.log.Error("stat failed", "path", srcPath, "error", err)
			stats.failed++
			return false
		}

		if srcInfo.IsDir() {
			// an existing replica entry of any kind is left untouched
			if pathExists(dstPath) {
				return false
			}
			if err := s.createDirectory(dstPath); err != nil {
				s.log.Error("create directory failed", "path", dstPath, "error", err)
				stats.failed++
				return false
			}
			stats.created++
			return false
		}

		if s.identicalFiles(srcPath, dstPath) {
			return false
		}
		if err := s.copyFile(srcPath, dstPath); err != nil {
			s.log.Error("copy failed", "src", srcPath, "dst", dstPath, "error", err)
			stats.failed++
			return false
		}
		stats.copied++
		return false
	})
}

// applySubtractive removes every replica entry with no counterpart in the
// source. Removing a directory takes its descendants with it; their own set
// members then hit the already-removed branch of removePath.
func (s *Synchronizer) applySubtractive(sourceSet, replicaSet mapset.Set[string], stats *passStats) {
	replicaSet.Difference(sourceSet).Each(func(rel string) bool {
		target := filepath.Join(s.replicaRoot, rel)
		if err := s.removePath(target); err != nil {
			s.log.Error("remove failed", "path", target, "error", err)
			stats.failed++
			return false
		}
		stats.removed++
		return false
	})
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
