package wipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wipeforge/wipeforge/internal/models"
)

// Executor drives a sanitization against a device and produces a structured
// outcome plus evidence artifacts. It has no dependency on the chain.
type Executor struct {
	sanitizer Sanitizer
	artifacts *ArtifactWriter
	now       func() time.Time
}

// NewExecutor creates an Executor using the given driver and artifact
// directory.
func NewExecutor(sanitizer Sanitizer, artifactDir string) *Executor {
	return &Executor{
		sanitizer: sanitizer,
		artifacts: NewArtifactWriter(artifactDir),
		now:       time.Now,
	}
}

// Execute runs the sanitization and returns its outcome. Any returned error
// means the run has no trustworthy terminal status and must not be recorded
// on the chain.
func (e *Executor) Execute(ctx context.Context, req models.WipeRequest) (*models.WipeOutcome, error) {
	if req.DeviceID == "" {
		return nil, fmt.Errorf("%w: empty device id", ErrDeviceUnavailable)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("%w: no sanitization method", ErrSanitizationFailed)
	}

	status, err := e.sanitizer.Sanitize(ctx, req.DeviceID, req.Method)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			return nil, err
		}
		// A timeout or cancellation leaves the run without a verified
		// terminal status.
		return nil, fmt.Errorf("%w: %v", ErrSanitizationFailed, err)
	}

	outcome := &models.WipeOutcome{
		LogID:       uuid.NewString(),
		DeviceID:    req.DeviceID,
		DeviceName:  req.DeviceName,
		Method:      req.Method,
		Status:      status,
		CompletedAt: e.now().UTC(),
	}

	logPath, certPath, err := e.artifacts.Write(outcome, e.sanitizer.Name())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactWrite, err)
	}
	outcome.LogFile = logPath
	outcome.CertificateFile = certPath

	return outcome, nil
}
