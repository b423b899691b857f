// Package buildlog stores one log file per package variant build.
package buildlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
	"golang.org/x/xerrors"
)

// Path returns the log file of variant within dir.
func Path(dir, variant string) string {
	return filepath.Join(dir, variant+".log")
}

// Log is a build log. It replaces the previous log of the same variant
// atomically once finished, so readers never see a partial log.
type Log struct {
	f     *renameio.PendingFile
	start time.Time
}

// Create starts the log of building pkg in variant, stored in dir.
func Create(dir, pkg, variant string) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := renameio.TempFile(dir, Path(dir, variant))
	if err != nil {
		return nil, xerrors.Errorf("creating build log: %w", err)
	}
	l := &Log{f: f, start: time.Now()}
	fmt.Fprintf(f, "# %s (variant %s), started %s\n", pkg, variant, l.start.Format(time.RFC3339))
	return l, nil
}

func (l *Log) Write(p []byte) (int, error) { return l.f.Write(p) }

// Finish records the result of the build and moves the log into place.
func (l *Log) Finish(buildErr error) error {
	dur := time.Since(l.start).Round(time.Millisecond)
	if buildErr != nil {
		fmt.Fprintf(l.f, "# build failed after %v: %v\n", dur, buildErr)
	} else {
		fmt.Fprintf(l.f, "# build succeeded after %v\n", dur)
	}
	if err := l.f.CloseAtomicallyReplace(); err != nil {
		l.f.Cleanup()
		return err
	}
	return nil
}

// Latest returns the most recently written log in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return "", err
	}
	var (
		latest  string
		modTime time.Time
	)
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return "", err
		}
		if latest == "" || fi.ModTime().After(modTime) {
			latest, modTime = m, fi.ModTime()
		}
	}
	if latest == "" {
		return "", xerrors.Errorf("no build logs found in %s", dir)
	}
	return latest, nil
}
