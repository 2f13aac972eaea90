package chain

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisDeterminism(t *testing.T) {
	first := Genesis()
	second := Genesis()
	assert.Equal(t, first, second)

	a, err := NewLedger().Latest()
	require.NoError(t, err)
	b, err := NewLedger().Latest()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "0", a.PreviousHash)
	assert.Equal(t, int64(0), a.Index)
}

func TestAppendLinksBlocks(t *testing.T) {
	l := NewLedger()
	genesis, err := l.Latest()
	require.NoError(t, err)

	first, err := l.Append(context.Background(), map[string]string{"device_id": "D1", "status": "Success"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Index)
	assert.Equal(t, genesis.Hash, first.PreviousHash)

	second, err := l.Append(context.Background(), map[string]string{"device_id": "D2", "status": "Success"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Index)
	assert.Equal(t, first.Hash, second.PreviousHash)

	assert.NoError(t, l.Verify())
	assert.Equal(t, int64(3), l.Len())
}

func TestHashRecomputesFromStoredFields(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 5; i++ {
		_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i), "status": "Success"})
		require.NoError(t, err)
	}

	for _, b := range l.Blocks() {
		assert.Equal(t, b.Hash, BlockDigest(b), "block %d", b.Index)
	}
}

func TestReturnedBlocksAreCopies(t *testing.T) {
	l := NewLedger()
	block, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	require.NoError(t, err)

	block.Payload["device_id"] = "tampered"
	require.NoError(t, l.Verify())

	blocks := l.Blocks()
	blocks[1].Payload["device_id"] = "tampered"
	require.NoError(t, l.Verify())
}

func TestTamperDetectionFreezesChain(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 3; i++ {
		_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i), "status": "Success"})
		require.NoError(t, err)
	}

	l.blocks[2].Payload["status"] = "Failed"

	err := l.Verify()
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Contains(t, integrity.Indices, int64(2))

	assert.True(t, l.Frozen())
	_, err = l.Append(context.Background(), map[string]string{"device_id": "D9"})
	assert.ErrorIs(t, err, ErrChainFrozen)
}

func TestTamperWithRecomputedHashBreaksLink(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 3; i++ {
		_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i)})
		require.NoError(t, err)
	}

	// Rewriting a middle block and fixing its own hash still breaks the
	// successor's previous-hash link.
	l.blocks[1].Payload["device_id"] = "tampered"
	l.blocks[1].Hash = BlockDigest(l.blocks[1])

	err := l.Verify()
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Contains(t, integrity.Indices, int64(2))
}

func TestReorderingDetection(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 3; i++ {
		_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i)})
		require.NoError(t, err)
	}

	l.blocks[1], l.blocks[2] = l.blocks[2], l.blocks[1]

	assert.Error(t, l.Verify())
}

func TestConcurrentAppendsKeepChainUnbroken(t *testing.T) {
	const writers = 16

	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i), "status": "Success"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, int64(1+writers), l.Len())
	require.NoError(t, l.Verify())

	seenPrev := make(map[string]struct{})
	for i, b := range l.Blocks() {
		assert.Equal(t, int64(i), b.Index)
		_, dup := seenPrev[b.PreviousHash]
		assert.False(t, dup, "two blocks share previous hash %s", b.PreviousHash)
		seenPrev[b.PreviousHash] = struct{}{}
	}
}

func TestAppendConflictOnContention(t *testing.T) {
	l := NewLedger(WithAppendTimeout(20 * time.Millisecond))

	// Occupy the write slot so the append cannot proceed.
	l.appendSem <- struct{}{}
	defer func() { <-l.appendSem }()

	_, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	assert.ErrorIs(t, err, ErrAppendConflict)
}

func TestAppendHonorsContextCancel(t *testing.T) {
	l := NewLedger(WithAppendTimeout(time.Minute))

	l.appendSem <- struct{}{}
	defer func() { <-l.appendSem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Append(ctx, map[string]string{"device_id": "D1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFreezeBlocksAppends(t *testing.T) {
	l := NewLedger()
	l.Freeze()

	assert.True(t, l.Frozen())
	_, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	assert.ErrorIs(t, err, ErrChainFrozen)
}

func TestFreezeDuringAppendRejectsBlock(t *testing.T) {
	l := NewLedger()
	// The clock fires after the tip snapshot and before the block is
	// attached; freezing there must abort the append.
	l.now = func() time.Time {
		l.Freeze()
		return time.Now()
	}

	_, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	assert.ErrorIs(t, err, ErrChainFrozen)
	assert.Equal(t, int64(1), l.Len())
}

func TestLatestOnEmptyChain(t *testing.T) {
	l := NewLedger()
	l.blocks = nil

	_, err := l.Latest()
	assert.ErrorIs(t, err, ErrEmptyChain)
}

func TestLoadRoundTrip(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 4; i++ {
		_, err := l.Append(context.Background(), map[string]string{"device_id": fmt.Sprintf("D%d", i)})
		require.NoError(t, err)
	}
	tip, err := l.Latest()
	require.NoError(t, err)

	loaded, err := Load(l.Blocks())
	require.NoError(t, err)
	assert.Equal(t, l.Len(), loaded.Len())

	loadedTip, err := loaded.Latest()
	require.NoError(t, err)
	assert.Equal(t, tip.Hash, loadedTip.Hash)
}

func TestLoadDetectsTamperedBlocks(t *testing.T) {
	l := NewLedger()
	_, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	require.NoError(t, err)

	blocks := l.Blocks()
	blocks[1].Payload["device_id"] = "tampered"

	loaded, err := Load(blocks)
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Frozen())
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrEmptyChain)
}

func TestClockInjection(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewLedger(WithClock(func() time.Time { return fixed }))

	b, err := l.Append(context.Background(), map[string]string{"device_id": "D1"})
	require.NoError(t, err)
	assert.True(t, b.Timestamp.Equal(fixed))
}
