// Package pid keeps one running instance per state directory, so two
// processes never record automation into the same database.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/prxgyz/internal/errors"
)

const (
	fileName = "prxgyz.pid"
	filePerm = 0o600
	dirPerm  = 0o755
)

// File is a held PID file.
type File struct {
	path string
}

// Path returns the PID file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

// Acquire writes the current process ID into dir. It fails with
// ErrAlreadyRunning if the file names a live process; a stale file is
// replaced.
func Acquire(dir string) (*File, error) {
	errFactory := errors.New()
	path := Path(dir)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	if owner, ok := readPID(path); ok && owner != os.Getpid() && alive(owner) {
		return nil, errFactory.WithData(errors.ErrAlreadyRunning, struct {
			PID  int
			Path string
		}{owner, path})
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), filePerm); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return &File{path: path}, nil
}

// Release removes the PID file if it still names this process.
func (f *File) Release() error {
	if f == nil {
		return nil
	}

	owner, ok := readPID(f.path)
	if !ok || owner != os.Getpid() {
		return nil
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrShutdownFailed, err)
	}
	return nil
}

func readPID(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
