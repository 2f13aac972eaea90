package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/wipeforge/wipeforge/internal/chain"
	"github.com/wipeforge/wipeforge/internal/models"
	"github.com/wipeforge/wipeforge/internal/wipe"
)

// WipeHandler handles wipe-related API requests
type WipeHandler struct {
	service       *wipe.Service
	defaultMethod string
}

// NewWipeHandler creates a new WipeHandler
func NewWipeHandler(service *wipe.Service, defaultMethod string) *WipeHandler {
	return &WipeHandler{
		service:       service,
		defaultMethod: defaultMethod,
	}
}

// Start runs a sanitization and records it on the evidence chain
// POST /api/v1/wipes
func (h *WipeHandler) Start(c *gin.Context) {
	var req models.WipeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}
	if req.DeviceName == "" {
		req.DeviceName = fmt.Sprintf("%s Device", req.DeviceID)
	}
	if req.Method == "" {
		req.Method = h.defaultMethod
	}

	receipt, err := h.service.StartWipe(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForWipeError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, receipt)
}

func statusForWipeError(err error) int {
	switch {
	case errors.Is(err, wipe.ErrDeviceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, chain.ErrAppendConflict):
		return http.StatusServiceUnavailable
	case errors.Is(err, chain.ErrChainFrozen):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
