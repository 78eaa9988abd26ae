package lease

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/flock"

	"JobFeed/internal/ports"
)

// ErrHeld is returned while another run, in this or another process, owns the lease.
var ErrHeld = ports.ErrLeaseHeld

// FileLease is a run lease. Runs inside one process are always exclusive;
// with a path set, an advisory file lock extends that to other processes.
type FileLease struct {
	path string
	mu   sync.Mutex
}

var _ ports.RunLease = (*FileLease)(nil)

// NewFileLease creates a lease on path. An empty path keeps it in-process.
func NewFileLease(path string) *FileLease {
	return &FileLease{path: path}
}

// TryAcquire takes the lease without blocking.
func (l *FileLease) TryAcquire() (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrHeld
	}
	if l.path == "" {
		return l.mu.Unlock, nil
	}

	fl, err := l.lockFile()
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}

	return func() {
		_ = fl.Unlock()
		l.mu.Unlock()
	}, nil
}

func (l *FileLease) lockFile() (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create lease dir for %s", l.path)
	}

	fl := flock.New(l.path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "lock %s", l.path)
	}
	if !locked {
		return nil, ErrHeld
	}
	return fl, nil
}
