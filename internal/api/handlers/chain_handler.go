package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wipeforge/wipeforge/internal/chain"
	"github.com/wipeforge/wipeforge/internal/storage"
	"github.com/wipeforge/wipeforge/internal/wipe"
)

// ChainHandler handles evidence chain API requests
type ChainHandler struct {
	ledger  *chain.Ledger
	service *wipe.Service
	store   *storage.ChainStore // nil when running without persistence
}

// NewChainHandler creates a new ChainHandler
func NewChainHandler(ledger *chain.Ledger, service *wipe.Service, store *storage.ChainStore) *ChainHandler {
	return &ChainHandler{
		ledger:  ledger,
		service: service,
		store:   store,
	}
}

// List returns the full chain in order
// GET /api/v1/chain/blocks
func (h *ChainHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"length": h.ledger.Len(),
		"frozen": h.ledger.Frozen(),
		"blocks": h.ledger.Blocks(),
	})
}

// GetLatest returns the chain tip
// GET /api/v1/chain/blocks/latest
func (h *ChainHandler) GetLatest(c *gin.Context) {
	block, err := h.ledger.Latest()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, block)
}

// GetByIndex returns a block by its chain index
// GET /api/v1/chain/blocks/:index
func (h *ChainHandler) GetByIndex(c *gin.Context) {
	index, err := strconv.ParseInt(c.Param("index"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
		return
	}

	block, ok := h.ledger.ByIndex(index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
		return
	}
	c.JSON(http.StatusOK, block)
}

// GetByHash returns a block by its hash, for certificate lookups
// GET /api/v1/chain/blocks/hash/:hash
func (h *ChainHandler) GetByHash(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Hash lookup requires persistence"})
		return
	}

	block, err := h.store.GetByHash(c.Param("hash"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if block == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Block not found"})
		return
	}
	c.JSON(http.StatusOK, block)
}

// Verify runs a full-chain integrity check
// GET /api/v1/chain/verify
func (h *ChainHandler) Verify(c *gin.Context) {
	report := h.service.Verify()
	if !report.OK {
		c.JSON(http.StatusConflict, report)
		return
	}
	c.JSON(http.StatusOK, report)
}
