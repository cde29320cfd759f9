package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
	"github.com/cybersweeft1/sweeftprojects/pkg/response"
)

// ConfigHandler serves the client bootstrap configuration.
type ConfigHandler struct {
	paystack config.PaystackConfig
}

// NewConfigHandler builds a new handler.
func NewConfigHandler(paystack config.PaystackConfig) *ConfigHandler {
	return &ConfigHandler{paystack: paystack}
}

// Get godoc
// @Summary Client bootstrap configuration
// @Tags Config
// @Produce json
// @Success 200 {object} dto.ConfigResponse
// @Router /api/config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	key := h.paystack.PublicKey
	if key == "" {
		key = h.paystack.FallbackPublicKey
	}
	if key == "" {
		response.Error(c, appErrors.ErrGatewayUnavailable)
		return
	}
	// Raw shape, not the envelope: the storefront reads this file-style.
	c.JSON(http.StatusOK, dto.ConfigResponse{PaystackPublicKey: key})
}
