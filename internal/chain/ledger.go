package chain

import (
	"context"
	"sync"
	"time"

	"github.com/wipeforge/wipeforge/internal/models"
)

// genesisPreviousHash is the fixed predecessor marker of the genesis block.
const genesisPreviousHash = "0"

// defaultAppendTimeout bounds how long an append waits for the write slot
// before reporting contention to the caller.
const defaultAppendTimeout = 5 * time.Second

// Genesis returns the canonical first block. All fields are fixed, so two
// independently initialized ledgers are byte-identical at genesis.
func Genesis() models.Block {
	b := models.Block{
		Index:        0,
		Timestamp:    time.Unix(0, 0).UTC(),
		Payload:      map[string]string{"note": "genesis"},
		PreviousHash: genesisPreviousHash,
	}
	b.Hash = BlockDigest(b)
	return b
}

// Ledger is the append-only evidence chain. It owns its blocks exclusively;
// readers always receive copies. Appends are serialized through a single
// write slot so two blocks can never race to extend the same tip, and the
// slot is acquired with a timeout so contention surfaces as
// ErrAppendConflict instead of blocking a request forever.
type Ledger struct {
	mu     sync.RWMutex
	blocks []models.Block
	frozen bool

	appendSem     chan struct{}
	appendTimeout time.Duration
	now           func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithAppendTimeout sets the append lock acquisition timeout.
func WithAppendTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.appendTimeout = d
		}
	}
}

// WithClock overrides the block timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLedger constructs a ledger holding only the genesis block.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		blocks:        []models.Block{Genesis()},
		appendSem:     make(chan struct{}, 1),
		appendTimeout: defaultAppendTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load rebuilds a ledger from persisted blocks and verifies it. On an
// integrity violation the ledger is still returned, frozen against appends,
// together with the *IntegrityError describing the offending indices.
func Load(blocks []models.Block, opts ...Option) (*Ledger, error) {
	if len(blocks) == 0 {
		return nil, ErrEmptyChain
	}
	l := NewLedger(opts...)
	l.blocks = make([]models.Block, 0, len(blocks))
	for _, b := range blocks {
		l.blocks = append(l.blocks, b.Clone())
	}
	if err := l.Verify(); err != nil {
		return l, err
	}
	return l, nil
}

// Len returns the number of blocks in the chain.
func (l *Ledger) Len() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return int64(len(l.blocks))
}

// Frozen reports whether the ledger has rejected appends after a violation.
func (l *Ledger) Frozen() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frozen
}

// Freeze blocks all further appends. Used when a previously recorded
// integrity violation is restored from durable state.
func (l *Ledger) Freeze() {
	l.mu.Lock()
	l.frozen = true
	l.mu.Unlock()
}

// Latest returns a copy of the chain tip.
func (l *Ledger) Latest() (models.Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return models.Block{}, ErrEmptyChain
	}
	return l.blocks[len(l.blocks)-1].Clone(), nil
}

// ByIndex returns a copy of the block at the given index.
func (l *Ledger) ByIndex(index int64) (models.Block, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= int64(len(l.blocks)) {
		return models.Block{}, false
	}
	return l.blocks[index].Clone(), true
}

// Blocks returns a copy of the whole chain in order.
func (l *Ledger) Blocks() []models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Block, 0, len(l.blocks))
	for _, b := range l.blocks {
		out = append(out, b.Clone())
	}
	return out
}

// Append builds a block for the payload against the current tip and
// attaches it in one step. It is the only mutator of chain length.
func (l *Ledger) Append(ctx context.Context, payload map[string]string) (models.Block, error) {
	select {
	case l.appendSem <- struct{}{}:
	case <-time.After(l.appendTimeout):
		return models.Block{}, ErrAppendConflict
	case <-ctx.Done():
		return models.Block{}, ctx.Err()
	}
	defer func() { <-l.appendSem }()

	l.mu.RLock()
	frozen := l.frozen
	n := int64(len(l.blocks))
	var prevHash string
	if n > 0 {
		prevHash = l.blocks[n-1].Hash
	}
	l.mu.RUnlock()

	if frozen {
		return models.Block{}, ErrChainFrozen
	}
	if n == 0 {
		return models.Block{}, ErrEmptyChain
	}

	// Holding the write slot guarantees the tip cannot move, so the block
	// is fully built before the chain lock is taken to attach it.
	b := models.Block{
		Index:        n,
		Timestamp:    l.now().UTC(),
		Payload:      clonePayload(payload),
		PreviousHash: prevHash,
	}
	b.Hash = BlockDigest(b)

	l.mu.Lock()
	// A concurrent Verify may have frozen the chain while the block was
	// being built.
	if l.frozen {
		l.mu.Unlock()
		return models.Block{}, ErrChainFrozen
	}
	l.blocks = append(l.blocks, b)
	l.mu.Unlock()

	return b.Clone(), nil
}

// Verify walks the chain from index 1, recomputing every block's digest and
// checking its link to the predecessor. It returns nil when every check
// passes; otherwise it returns an *IntegrityError listing all offending
// indices and freezes the ledger against further appends.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	var violations []int64
	for i := 1; i < len(l.blocks); i++ {
		b := l.blocks[i]
		switch {
		case b.Index != int64(i):
			violations = append(violations, int64(i))
		case b.Hash != BlockDigest(b):
			violations = append(violations, int64(i))
		case b.PreviousHash != l.blocks[i-1].Hash:
			violations = append(violations, int64(i))
		}
	}
	l.mu.RUnlock()

	if len(violations) == 0 {
		return nil
	}

	l.mu.Lock()
	l.frozen = true
	l.mu.Unlock()
	return &IntegrityError{Indices: violations}
}

func clonePayload(payload map[string]string) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	return out
}
