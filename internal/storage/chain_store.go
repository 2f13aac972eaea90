package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wipeforge/wipeforge/internal/models"
)

// ChainStore persists evidence chain blocks. Blocks are keyed by their
// zero-padded index so iteration returns them in chain order; a secondary
// index maps block hash to index for certificate lookups.
type ChainStore struct {
	db *PebbleDB
}

// NewChainStore creates a new ChainStore
func NewChainStore(db *PebbleDB) *ChainStore {
	return &ChainStore{db: db}
}

// blockKey creates a key for the blocks column family
func blockKey(index int64) []byte {
	return []byte(fmt.Sprintf("%012d", index))
}

// Save stores a block and advances the persisted tip in one atomic batch,
// so a crash can never leave a block without its hash index or tip record.
func (s *ChainStore) Save(block models.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("failed to marshal block: %w", err)
	}

	batch := s.db.NewBatch()
	defer batch.Destroy()

	if err := s.db.PutBatch(batch, CFBlocks, blockKey(block.Index), data); err != nil {
		return err
	}
	if err := s.db.PutBatch(batch, CFBlocksByHash, []byte(block.Hash), []byte(strconv.FormatInt(block.Index, 10))); err != nil {
		return err
	}
	if err := s.db.PutBatch(batch, CFChainState, []byte(keyTipIndex), []byte(strconv.FormatInt(block.Index, 10))); err != nil {
		return err
	}

	return s.db.WriteBatch(batch)
}

// GetByIndex retrieves a block by its chain index
func (s *ChainStore) GetByIndex(index int64) (*models.Block, error) {
	data, err := s.db.Get(CFBlocks, blockKey(index))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var block models.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, fmt.Errorf("failed to unmarshal block: %w", err)
	}
	return &block, nil
}

// GetByHash retrieves a block by its hash
func (s *ChainStore) GetByHash(hash string) (*models.Block, error) {
	indexData, err := s.db.Get(CFBlocksByHash, []byte(hash))
	if err != nil {
		return nil, err
	}
	if indexData == nil {
		return nil, nil
	}

	index, err := strconv.ParseInt(string(indexData), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block index: %w", err)
	}

	return s.GetByIndex(index)
}

// LoadAll returns every persisted block in chain order.
func (s *ChainStore) LoadAll() ([]models.Block, error) {
	iter, err := s.db.NewIterator(CFBlocks)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var blocks []models.Block
	for ; iter.Valid(); iter.Next() {
		var block models.Block
		if err := json.Unmarshal(iter.Value(), &block); err != nil {
			return nil, fmt.Errorf("failed to unmarshal block %s: %w", iter.Key(), err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}
