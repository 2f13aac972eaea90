package storage

import (
	"fmt"
	"strconv"
)

// Chain state keys
const (
	keyTipIndex      = "tip"
	keyFrozen        = "frozen"
	keySchemaVersion = "schema"
)

// StateStore handles chain state storage operations
type StateStore struct {
	db *PebbleDB
}

// NewStateStore creates a new StateStore
func NewStateStore(db *PebbleDB) *StateStore {
	return &StateStore{db: db}
}

// TipIndex retrieves the persisted chain tip index
func (s *StateStore) TipIndex() (int64, error) {
	data, err := s.db.Get(CFChainState, []byte(keyTipIndex))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return -1, nil // -1 indicates no blocks persisted yet
	}

	index, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse tip index: %w", err)
	}

	return index, nil
}

// Frozen reports whether the chain was frozen after an integrity violation
func (s *StateStore) Frozen() (bool, error) {
	data, err := s.db.Get(CFChainState, []byte(keyFrozen))
	if err != nil {
		return false, err
	}
	return string(data) == "1", nil
}

// SetFrozen records the frozen flag
func (s *StateStore) SetFrozen(frozen bool) error {
	v := "0"
	if frozen {
		v = "1"
	}
	return s.db.Put(CFChainState, []byte(keyFrozen), []byte(v))
}

// SchemaVersion retrieves the persisted storage schema version, or "" when
// the store has never been written.
func (s *StateStore) SchemaVersion() (string, error) {
	data, err := s.db.Get(CFChainState, []byte(keySchemaVersion))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetSchemaVersion records the storage schema version
func (s *StateStore) SetSchemaVersion(version string) error {
	return s.db.Put(CFChainState, []byte(keySchemaVersion), []byte(version))
}
