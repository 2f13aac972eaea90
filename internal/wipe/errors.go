package wipe

import "errors"

var (
	// ErrDeviceUnavailable means the target device could not be accessed.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrSanitizationFailed means the procedure ran but did not reach a
	// verifiable terminal state.
	ErrSanitizationFailed = errors.New("sanitization failed")

	// ErrArtifactWrite means the evidence artifacts could not be persisted.
	ErrArtifactWrite = errors.New("artifact write failed")
)
