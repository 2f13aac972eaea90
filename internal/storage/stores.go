package storage

import (
	"fmt"

	"github.com/wipeforge/wipeforge/internal/models"
	"github.com/wipeforge/wipeforge/pkg/semver"
)

// SchemaVersion is the on-disk layout version written into new stores. A
// persisted store with a different major version refuses to open.
const SchemaVersion = "1.0.0"

// Stores holds all stores backed by a single chain database
type Stores struct {
	DB     *PebbleDB
	Blocks *ChainStore
	State  *StateStore
}

// Open opens the chain database at path and wires up its stores, stamping
// the schema version on first open and checking compatibility afterwards.
func Open(path string) (*Stores, error) {
	db, err := NewPebbleDB(path)
	if err != nil {
		return nil, err
	}

	s := &Stores{
		DB:     db,
		Blocks: NewChainStore(db),
		State:  NewStateStore(db),
	}

	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Stores) Close() error {
	return s.DB.Close()
}

// LoadBlocks reads every persisted block in index order and cross-checks
// the count against the recorded tip, so a truncated or over-long block
// column is caught before the chain is rebuilt.
func (s *Stores) LoadBlocks() ([]models.Block, error) {
	blocks, err := s.Blocks.LoadAll()
	if err != nil {
		return nil, err
	}
	tip, err := s.State.TipIndex()
	if err != nil {
		return nil, err
	}
	if int64(len(blocks))-1 != tip {
		return nil, fmt.Errorf("persisted tip index %d disagrees with %d stored blocks", tip, len(blocks))
	}
	return blocks, nil
}

func (s *Stores) checkSchema() error {
	stored, err := s.State.SchemaVersion()
	if err != nil {
		return err
	}
	if stored == "" {
		return s.State.SetSchemaVersion(SchemaVersion)
	}

	storedVer, err := semver.Parse(stored)
	if err != nil {
		return fmt.Errorf("invalid stored schema version %q: %w", stored, err)
	}
	currentVer, err := semver.Parse(SchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid schema version %q: %w", SchemaVersion, err)
	}
	// Refuse a different major layout, and refuse data written by a newer
	// release than this binary understands.
	if storedVer.Major != currentVer.Major || storedVer.GreaterThan(currentVer) {
		return fmt.Errorf("incompatible storage schema version %s (supported: %s)", storedVer.String(), currentVer.String())
	}
	return nil
}
