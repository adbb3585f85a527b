package syncer

import (
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/syncwell/replicator/internal/paths"
)

// copyFile copies src to dst, creating dst's parent directories as needed and
// overwriting dst if present. Permission bits and modification time are
// carried over from the source.
func (s *Synchronizer) copyFile(src, dst string) error {
	if err := paths.EnsureParent(dst); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	written, err := io.Copy(dstFile, srcFile)
	if cerr := dstFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	if err := os.Chtimes(dst, time.Now(), srcInfo.ModTime()); err != nil {
		return err
	}

	s.log.Info("COPIED", "src", src, "dst", dst, "size", humanize.Bytes(uint64(written)))
	return nil
}

// createDirectory creates path and any missing ancestors. Idempotent.
func (s *Synchronizer) createDirectory(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}

	s.log.Info("CREATED DIRECTORY", "path", path)
	return nil
}

// removePath deletes a file, or a directory and everything beneath it. A path
// that is already gone is a benign race (its parent was removed earlier in
// the same pass), logged and ignored.
func (s *Synchronizer) removePath(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		s.log.Debug("already removed", "path", path)
		return nil
	}
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		s.log.Info("REMOVED DIRECTORY", "path", path)
		return nil
	}

	if err := os.Remove(path); err != nil {
		return err
	}
	s.log.Info("REMOVED FILE", "path", path)
	return nil
}
