package wipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wipeforge/wipeforge/internal/models"
)

// stubSanitizer scripts driver behavior for tests.
type stubSanitizer struct {
	status models.WipeStatus
	err    error
}

func (s *stubSanitizer) Name() string { return "stub" }

func (s *stubSanitizer) Sanitize(ctx context.Context, deviceID, method string) (models.WipeStatus, error) {
	return s.status, s.err
}

func TestExecuteSuccess(t *testing.T) {
	dir := t.TempDir()
	e := NewExecutor(&stubSanitizer{status: models.StatusSuccess}, dir)

	outcome, err := e.Execute(context.Background(), models.WipeRequest{
		DeviceID:   "1A2B-3C4D",
		DeviceName: "Dell Laptop",
		Method:     "Gutmann Method",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSuccess, outcome.Status)
	assert.NotEmpty(t, outcome.LogID)
	assert.False(t, outcome.CompletedAt.IsZero())

	for _, path := range []string{outcome.LogFile, outcome.CertificateFile} {
		info, err := os.Stat(path)
		require.NoError(t, err, "artifact %s", path)
		assert.Greater(t, info.Size(), int64(0))
		assert.Equal(t, dir, filepath.Dir(path))
	}

	// The atomic writer must not leave temp files behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".artifact-"), "stale temp file %s", entry.Name())
	}
}

func TestExecuteEmptyDeviceID(t *testing.T) {
	e := NewExecutor(&stubSanitizer{status: models.StatusSuccess}, t.TempDir())

	_, err := e.Execute(context.Background(), models.WipeRequest{Method: "Gutmann Method"})
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestExecuteDeviceUnavailable(t *testing.T) {
	e := NewExecutor(&stubSanitizer{err: fmt.Errorf("%w: no such disk", ErrDeviceUnavailable)}, t.TempDir())

	_, err := e.Execute(context.Background(), models.WipeRequest{DeviceID: "D1", Method: "Gutmann Method"})
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestExecuteDriverFailure(t *testing.T) {
	e := NewExecutor(&stubSanitizer{err: fmt.Errorf("controller reset mid-pass")}, t.TempDir())

	_, err := e.Execute(context.Background(), models.WipeRequest{DeviceID: "D1", Method: "Gutmann Method"})
	assert.ErrorIs(t, err, ErrSanitizationFailed)
}

func TestExecuteTimeoutIsSanitizationFailure(t *testing.T) {
	e := NewExecutor(NewSimulatedSanitizer(time.Second), t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.Execute(ctx, models.WipeRequest{DeviceID: "D1", Method: "Gutmann Method"})
	assert.ErrorIs(t, err, ErrSanitizationFailed)
}

func TestExecuteArtifactWriteFailure(t *testing.T) {
	// Point the artifact directory below a regular file so it cannot be
	// created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	e := NewExecutor(&stubSanitizer{status: models.StatusSuccess}, filepath.Join(blocker, "artifacts"))

	_, err := e.Execute(context.Background(), models.WipeRequest{DeviceID: "D1", Method: "Gutmann Method"})
	assert.ErrorIs(t, err, ErrArtifactWrite)
}

func TestArtifactWriteFailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	w := NewArtifactWriter(dir)
	outcome := &models.WipeOutcome{
		LogID:       "atomic-test",
		DeviceID:    "D1",
		DeviceName:  "Dell Laptop",
		Method:      "Gutmann Method",
		Status:      models.StatusSuccess,
		CompletedAt: time.Now(),
	}

	// Occupy the certificate's final name with a directory so the rename
	// fails after the temp file is fully written.
	certPath := filepath.Join(dir, "certificate_atomic-test.txt")
	require.NoError(t, os.Mkdir(certPath, 0755))

	_, _, err := w.Write(outcome, "stub")
	require.Error(t, err)

	// Nothing partial may surface at the final name, and the temp file
	// must be cleaned up.
	info, statErr := os.Stat(certPath)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".artifact-"),
			"leftover temp file %s", entry.Name())
	}
}

func TestSimulatedSanitizerCompletes(t *testing.T) {
	s := NewSimulatedSanitizer(time.Millisecond)
	status, err := s.Sanitize(context.Background(), "D1", "Gutmann Method")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, status)
}
