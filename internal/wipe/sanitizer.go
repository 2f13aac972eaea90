package wipe

import (
	"context"
	"time"

	"github.com/wipeforge/wipeforge/internal/models"
)

// Sanitizer defines the interface for sanitization drivers. The real device
// driver lives behind this interface; the simulated driver stands in for it
// in demo deployments and tests.
type Sanitizer interface {
	// Sanitize runs the named sanitization method against the device and
	// returns its terminal status. An error means the run ended without a
	// trustworthy terminal status and nothing must be recorded.
	Sanitize(ctx context.Context, deviceID, method string) (models.WipeStatus, error)

	// Name identifies the driver for logging and the operation log artifact.
	Name() string
}

// SimulatedSanitizer stands in for a real wipe device. It reports Success
// after the configured delay, honoring context cancellation.
type SimulatedSanitizer struct {
	delay time.Duration
}

// NewSimulatedSanitizer creates a simulated driver with the given run delay
func NewSimulatedSanitizer(delay time.Duration) *SimulatedSanitizer {
	return &SimulatedSanitizer{delay: delay}
}

// Name implements Sanitizer
func (s *SimulatedSanitizer) Name() string {
	return "simulated"
}

// Sanitize implements Sanitizer
func (s *SimulatedSanitizer) Sanitize(ctx context.Context, deviceID, method string) (models.WipeStatus, error) {
	if s.delay <= 0 {
		return models.StatusSuccess, nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return models.StatusSuccess, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
