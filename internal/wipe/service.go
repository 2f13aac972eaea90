package wipe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wipeforge/wipeforge/internal/chain"
	"github.com/wipeforge/wipeforge/internal/models"
	"github.com/wipeforge/wipeforge/internal/storage"
)

// Service orchestrates the full wipe flow: execute the sanitization, package
// the outcome as a chain payload, append it with bounded retry, and persist
// the new block.
type Service struct {
	executor *Executor
	ledger   *chain.Ledger
	stores   *storage.Stores // nil disables persistence

	appendRetries int
	appendBackoff time.Duration
}

// NewService creates a Service. stores may be nil for a purely in-memory
// deployment.
func NewService(executor *Executor, ledger *chain.Ledger, stores *storage.Stores, appendRetries int, appendBackoff time.Duration) *Service {
	if appendRetries < 0 {
		appendRetries = 0
	}
	if appendBackoff <= 0 {
		appendBackoff = 100 * time.Millisecond
	}
	return &Service{
		executor:      executor,
		ledger:        ledger,
		stores:        stores,
		appendRetries: appendRetries,
		appendBackoff: appendBackoff,
	}
}

// Ledger exposes the evidence chain for read-side handlers.
func (s *Service) Ledger() *chain.Ledger {
	return s.ledger
}

// StartWipe runs a sanitization and records its terminal outcome on the
// chain. Executor errors are terminal for the attempt and leave the chain
// untouched. The long-running sanitization never holds the chain's append
// slot; the slot is taken only to attach the completed outcome.
func (s *Service) StartWipe(ctx context.Context, req models.WipeRequest) (*models.WipeReceipt, error) {
	outcome, err := s.executor.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	block, err := s.appendWithRetry(ctx, outcome.Payload())
	if err != nil {
		return nil, err
	}

	if s.stores != nil {
		if err := s.stores.Blocks.Save(block); err != nil {
			return nil, fmt.Errorf("failed to persist block %d: %w", block.Index, err)
		}
	}

	log.Printf("[wipe] recorded device=%s method=%s status=%s block=%d", req.DeviceID, req.Method, outcome.Status, block.Index)

	return &models.WipeReceipt{
		Outcome:      outcome,
		BlockIndex:   block.Index,
		BlockHash:    block.Hash,
		PreviousHash: block.PreviousHash,
	}, nil
}

func (s *Service) appendWithRetry(ctx context.Context, payload map[string]string) (models.Block, error) {
	var lastErr error
	for attempt := 0; attempt <= s.appendRetries; attempt++ {
		block, err := s.ledger.Append(ctx, payload)
		if err == nil {
			return block, nil
		}
		lastErr = err
		if !errors.Is(err, chain.ErrAppendConflict) {
			return models.Block{}, err
		}

		backoff := s.appendBackoff * time.Duration(attempt+1)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return models.Block{}, ctx.Err()
		}
	}
	return models.Block{}, fmt.Errorf("append retries exhausted: %w", lastErr)
}

// Verify runs a full-chain integrity check and, on violation, records the
// frozen state durably so the chain stays frozen across restarts until an
// operator reconciles it.
func (s *Service) Verify() *models.VerifyReport {
	report := &models.VerifyReport{OK: true, Length: s.ledger.Len()}

	err := s.ledger.Verify()
	if err == nil {
		return report
	}

	report.OK = false
	var integrity *chain.IntegrityError
	if errors.As(err, &integrity) {
		report.Violations = integrity.Indices
	}

	if s.stores != nil {
		if serr := s.stores.State.SetFrozen(true); serr != nil {
			log.Printf("[wipe] failed to persist frozen flag: %v", serr)
		}
	}
	log.Printf("[wipe] integrity violation, chain frozen: %v", err)
	return report
}
