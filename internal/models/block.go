package models

import (
	"time"
)

// Block is one entry in the evidence chain. It binds a wipe record to its
// position and predecessor through the hash fields.
type Block struct {
	Index        int64             `json:"index"`
	Timestamp    time.Time         `json:"timestamp"`
	Payload      map[string]string `json:"payload"`
	PreviousHash string            `json:"previous_hash"`
	Hash         string            `json:"hash"`
}

// Clone returns a deep copy of the block so callers cannot mutate chain
// state through a shared payload map.
func (b Block) Clone() Block {
	c := b
	c.Payload = make(map[string]string, len(b.Payload))
	for k, v := range b.Payload {
		c.Payload[k] = v
	}
	return c
}
