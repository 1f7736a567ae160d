package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nightlyone/lockfile"
)

// orphanAgeThreshold protects unlocked directories that may still be starting up.
const orphanAgeThreshold = 10 * time.Minute

// CleanOrphaned removes sandbox directories under baseDir left behind by
// killed processes. Directories whose lock is held by a live process are
// never removed. Unlocked directories are removed once they are older than
// orphanAgeThreshold, or immediately when force is set.
func CleanOrphaned(baseDir string, force bool) (int, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	matches, err := filepath.Glob(filepath.Join(baseDir, DirPrefix+"*"))
	if err != nil {
		return 0, fmt.Errorf("finding sandbox dirs: %w", err)
	}

	removed := 0
	for _, match := range matches {
		// Never follow symlinks
		info, err := os.Lstat(match)
		if err != nil || info.Mode()&os.ModeSymlink != 0 || !info.IsDir() {
			continue
		}

		if !canRemove(match, info, force) {
			continue
		}

		recheck, err := os.Lstat(match)
		if err != nil || recheck.Mode()&os.ModeSymlink != 0 || !recheck.IsDir() {
			continue
		}
		if err := os.RemoveAll(match); err == nil {
			removed++
		}
	}
	return removed, nil
}

func canRemove(dir string, info os.FileInfo, force bool) bool {
	lockPath, err := filepath.Abs(filepath.Join(dir, LockFileName))
	if err != nil {
		return false
	}

	if _, statErr := os.Stat(lockPath); statErr != nil {
		return force || time.Since(info.ModTime()) >= orphanAgeThreshold
	}

	lock, err := lockfile.New(lockPath)
	if err != nil {
		return false
	}

	tryErr := lock.TryLock()
	switch {
	case tryErr == nil:
		// Owner gone, lock is now ours
		_ = lock.Unlock()
		return true
	case errors.Is(tryErr, lockfile.ErrBusy):
		return false
	case errors.Is(tryErr, lockfile.ErrDeadOwner), errors.Is(tryErr, lockfile.ErrInvalidPid):
		return true
	default:
		return false
	}
}
