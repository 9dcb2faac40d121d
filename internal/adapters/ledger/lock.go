package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultLockTimeout bounds how long a writer waits for the ledger lock.
const DefaultLockTimeout = 5 * time.Second

var ErrLockTimeout = errors.New("ledger lock timeout")

// fileLock is an exclusive advisory lock held on a sidecar file.
type fileLock struct {
	file *os.File
}

// acquireFileLock takes an exclusive flock on lockPath, polling until the
// timeout or ctx expires.
func acquireFileLock(ctx context.Context, lockPath string, timeout time.Duration) (*fileLock, error) {
	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file %q: %w", lockPath, err)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &fileLock{file: file}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = file.Close()
			return nil, fmt.Errorf("flock %q: %w", lockPath, err)
		}

		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, lockPath)
		}

		select {
		case <-ctx.Done():
			_ = file.Close()
			return nil, fmt.Errorf("acquire lock %q: %w", lockPath, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

func (l *fileLock) release() {
	if l.file != nil {
		_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
		_ = l.file.Close()
	}
}
