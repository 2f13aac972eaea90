package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChain is returned when a chain has been corrupted to zero
	// length. Unreachable through the normal append-only lifecycle.
	ErrEmptyChain = errors.New("chain is empty")

	// ErrAppendConflict is returned when the append lock could not be
	// acquired within the configured timeout. Callers may retry.
	ErrAppendConflict = errors.New("append lock contention")

	// ErrChainFrozen is returned for appends after an integrity violation
	// has been detected. The chain stays frozen until manually reconciled.
	ErrChainFrozen = errors.New("chain frozen after integrity violation")
)

// IntegrityError reports the block indices that failed verification.
type IntegrityError struct {
	Indices []int64
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chain integrity violation at indices %v", e.Indices)
}
