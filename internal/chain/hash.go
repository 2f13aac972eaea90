package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"

	"github.com/wipeforge/wipeforge/internal/models"
)

// BlockDigest computes the canonical SHA-256 digest of a block's content
// fields: index, timestamp, previous hash, then the payload entries in
// lexicographic key order. Every part is length-prefixed before it enters
// the hash state, so separator characters inside device IDs or method
// names cannot produce colliding encodings.
func BlockDigest(b models.Block) string {
	h := sha256.New()
	writePart(h, strconv.FormatInt(b.Index, 10))
	writePart(h, strconv.FormatInt(b.Timestamp.UTC().UnixNano(), 10))
	writePart(h, b.PreviousHash)

	keys := make([]string, 0, len(b.Payload))
	for k := range b.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writePart(h, k)
		writePart(h, b.Payload[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writePart(h hash.Hash, part string) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(part)))
	h.Write(buf[:n])
	h.Write([]byte(part))
}
