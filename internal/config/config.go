// Package config holds the replicator run parameters and their validation.
// Validation happens before any filesystem access so a bad invocation never
// leaves a half-created replica behind.
package config

import (
	"errors"
	"fmt"

	"github.com/syncwell/replicator/internal/paths"
)

var (
	ErrSourceRequired   = errors.New("source path is required")
	ErrReplicaRequired  = errors.New("replica path is required")
	ErrNegativeInterval = errors.New("interval must not be negative")
	ErrNegativeCount    = errors.New("count must not be negative")
	ErrOverlappingRoots = errors.New("source and replica paths must not overlap")
	ErrLogFileRequired  = errors.New("log file path is required")
)

// Config describes one replicator run: which tree to mirror where, how many
// passes to make, how long to wait between them, and where to log.
type Config struct {
	Source   string
	Replica  string
	Interval int // seconds between passes
	Count    int // number of passes
	LogFile  string
}

// Validate checks the run parameters and resolves all paths to absolute form.
// It does not require either root to exist; source existence is checked at
// synchronization time, and the replica is created on the first pass.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ErrSourceRequired
	}
	if c.Replica == "" {
		return ErrReplicaRequired
	}
	if c.LogFile == "" {
		return ErrLogFileRequired
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeInterval, c.Interval)
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeCount, c.Count)
	}

	source, err := paths.ResolvePath(c.Source)
	if err != nil {
		return fmt.Errorf("resolve source path %q: %w", c.Source, err)
	}
	replica, err := paths.ResolvePath(c.Replica)
	if err != nil {
		return fmt.Errorf("resolve replica path %q: %w", c.Replica, err)
	}
	logFile, err := paths.ResolvePath(c.LogFile)
	if err != nil {
		return fmt.Errorf("resolve log file path %q: %w", c.LogFile, err)
	}

	// A replica inside its own source (or the reverse) would feed the
	// synchronizer its own output on every pass.
	if paths.Contains(source, replica) || paths.Contains(replica, source) {
		return fmt.Errorf("%w: source %q, replica %q", ErrOverlappingRoots, source, replica)
	}

	c.Source = source
	c.Replica = replica
	c.LogFile = logFile
	return nil
}
