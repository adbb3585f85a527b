package syncer

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
)

// Snapshot walks root and returns the set of slash-separated relative paths
// for every file and directory beneath it, including empty directories. The
// root itself is not a member of the set.
//
// A missing root yields an empty set: the replica not existing yet is the
// normal first-run state, not an error. An unreadable subtree is logged and
// skipped without aborting the rest of the walk.
func Snapshot(root string, log *slog.Logger) mapset.Set[string] {
	// single worker per pass, no locking needed
	snapshot := mapset.NewThreadUnsafeSet[string]()

	if _, err := os.Stat(root); err != nil {
		return snapshot
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Error("scan failed", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			log.Error("scan failed", "path", path, "error", err)
			return nil
		}
		snapshot.Add(filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		log.Error("scan failed", "path", root, "error", err)
	}

	return snapshot
}
