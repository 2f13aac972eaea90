package wipe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wipeforge/wipeforge/internal/models"
)

// ArtifactWriter persists the two evidence artifacts of a wipe: the
// human-readable operation log and the completion certificate. Each file is
// written to a temp file and renamed into place, so a half-written artifact
// is never visible under its final name.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates an ArtifactWriter rooted at dir
func NewArtifactWriter(dir string) *ArtifactWriter {
	return &ArtifactWriter{dir: dir}
}

// Write persists the operation log and certificate for the outcome and
// returns their paths.
func (w *ArtifactWriter) Write(outcome *models.WipeOutcome, driver string) (logPath, certPath string, err error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	logPath = filepath.Join(w.dir, fmt.Sprintf("wipe_%s.log", outcome.LogID))
	certPath = filepath.Join(w.dir, fmt.Sprintf("certificate_%s.txt", outcome.LogID))

	if err := w.writeAtomic(logPath, operationLog(outcome, driver)); err != nil {
		return "", "", err
	}
	if err := w.writeAtomic(certPath, certificate(outcome)); err != nil {
		return "", "", err
	}
	return logPath, certPath, nil
}

func (w *ArtifactWriter) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(w.dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}

func operationLog(o *models.WipeOutcome, driver string) []byte {
	return []byte(fmt.Sprintf(
		"log_id: %s\ndevice_id: %s\ndevice_name: %s\nmethod: %s\ndriver: %s\nstatus: %s\ncompleted_at: %s\n",
		o.LogID, o.DeviceID, o.DeviceName, o.Method, driver, o.Status,
		o.CompletedAt.UTC().Format(time.RFC3339Nano),
	))
}

func certificate(o *models.WipeOutcome) []byte {
	return []byte(fmt.Sprintf(
		"DATA SANITIZATION CERTIFICATE\n\nCertificate ID: %s\nDevice: %s (%s)\nMethod: %s\nStatus: %s\nCompleted: %s\n",
		o.LogID, o.DeviceName, o.DeviceID, o.Method, o.Status,
		o.CompletedAt.UTC().Format(time.RFC3339Nano),
	))
}
