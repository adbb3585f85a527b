package syncer

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/syncwell/replicator/internal/paths"
)

var ErrReplicaLocked = errors.New("replica is locked by another replicator instance")

// ReplicaLock guards a replica root against concurrent replicator instances.
// The reconciliation invariants only hold when a single process mutates the
// replica. The lock file sits next to the replica root, never inside it, so
// it can never be swept up by a subtractive pass.
type ReplicaLock struct {
	flock *flock.Flock
}

func NewReplicaLock(replicaRoot string) *ReplicaLock {
	return &ReplicaLock{
		flock: flock.New(replicaRoot + ".lock"),
	}
}

func (l *ReplicaLock) Acquire() error {
	if err := paths.EnsureParent(l.flock.Path()); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	locked, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("lock replica: %w", err)
	}
	if !locked {
		return ErrReplicaLocked
	}

	return nil
}

func (l *ReplicaLock) Release() error {
	// don't delete a lock file this process never held
	if !l.flock.Locked() {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("unlock replica: %w", err)
	}

	return os.Remove(l.flock.Path())
}
