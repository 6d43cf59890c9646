package pid_test

import (
	"os"
	"os/exec"
	"strconv"
	"testing"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	dir := t.TempDir()

	f, err := pid.Acquire(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(pid.Path(dir))
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	// Re-acquiring from the same process is allowed.
	_, err = pid.Acquire(dir)
	require.NoError(t, err)

	require.NoError(t, f.Release())
	assert.NoFileExists(t, pid.Path(dir))
	assert.NoError(t, f.Release(), "release is idempotent")
}

func TestAcquireReplacesStaleFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(pid.Path(dir), []byte("not a pid"), 0o600))

	f, err := pid.Acquire(dir)
	require.NoError(t, err)
	defer f.Release()
}

func TestAcquireRefusesLiveOwner(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start helper process: %v", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(pid.Path(dir), []byte(strconv.Itoa(cmd.Process.Pid)), 0o600))

	_, err := pid.Acquire(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrAlreadyRunning, errors.CodeOf(err))
}

func TestReleaseLeavesForeignFile(t *testing.T) {
	dir := t.TempDir()
	f, err := pid.Acquire(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(pid.Path(dir), []byte("1"), 0o600))
	require.NoError(t, f.Release())
	assert.FileExists(t, pid.Path(dir))
}

func TestNilRelease(t *testing.T) {
	var f *pid.File
	assert.NoError(t, f.Release())
}
