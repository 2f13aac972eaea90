package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/wipeforge/wipeforge/internal/chain"
	"github.com/wipeforge/wipeforge/internal/storage"
)

// chaincheck replays a persisted evidence chain and verifies every block's
// digest and link, for offline audits of a data directory.
func main() {
	dataPath := flag.String("data", "./data/pebble", "Path to the chain Pebble database")
	flag.Parse()

	stores, err := storage.Open(*dataPath)
	if err != nil {
		log.Fatalf("Failed to open chain storage: %v", err)
	}
	defer stores.Close()

	blocks, err := stores.LoadBlocks()
	if err != nil {
		log.Fatalf("Failed to load blocks: %v", err)
	}
	if len(blocks) == 0 {
		color.Yellow("chain is empty (no genesis persisted yet)")
		return
	}

	_, err = chain.Load(blocks)
	if err != nil {
		var integrity *chain.IntegrityError
		if errors.As(err, &integrity) {
			color.Red("FAIL: integrity violation at indices %v (%d block(s) checked)", integrity.Indices, len(blocks))
		} else {
			color.Red("FAIL: %v", err)
		}
		os.Exit(1)
	}

	tip := blocks[len(blocks)-1]
	color.Green("OK: %d block(s) verified, tip #%d %s", len(blocks), tip.Index, tip.Hash)
}
