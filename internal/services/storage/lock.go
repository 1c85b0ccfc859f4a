package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/killallgit/textcast/pkg/errors"
)

// fileLock is a cooperative lock signalled by the existence of a marker file.
// A marker left behind by a crashed holder must be removed by hand.
type fileLock struct {
	path    string
	retries int
	delay   time.Duration
}

// acquire creates the marker exclusively, retrying with a fixed delay. It
// returns a release func that removes the marker.
func (l *fileLock) acquire(ctx context.Context) (func(), error) {
	for attempt := 1; attempt <= l.retries; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
			_ = f.Close()
			return l.release, nil
		}
		if !os.IsExist(err) {
			return nil, apperrors.FileError("lock", l.path, err)
		}

		if attempt == l.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeLockTimeout, "lock acquisition cancelled").
				WithDetail("lock", l.path).
				WithDetail("attempts", attempt)
		case <-time.After(l.delay):
		}
	}

	log.Warn("metadata lock busy", "lock", l.path, "attempts", l.retries)
	return nil, apperrors.LockTimeout(l.path, l.retries)
}

func (l *fileLock) release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to release metadata lock", "lock", l.path, "error", err)
	}
}
