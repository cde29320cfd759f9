package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
	"github.com/cybersweeft1/sweeftprojects/pkg/response"
)

type downloadService interface {
	Redownload(ctx context.Context, deviceID, projectID string) (*dto.DeliveryResult, error)
	RetryLast(ctx context.Context, deviceID string) (*dto.DeliveryResult, error)
}

type assetDeliverer interface {
	ResolveToken(token string) (projectID, downloadURL string, err error)
	Receipt(project models.Project, reference, buyerEmail string, amount int, currency string) ([]byte, error)
}

type receiptLedger interface {
	GetByReference(ctx context.Context, reference string) (*models.LedgerEntry, error)
}

// DeliveryHandler exposes re-delivery, the retry shortcut, signed token
// resolution, and receipt rendering.
type DeliveryHandler struct {
	downloads downloadService
	delivery  assetDeliverer
	ledger    receiptLedger
	catalog   catalogQuerier
}

// NewDeliveryHandler builds a new handler.
func NewDeliveryHandler(downloads downloadService, delivery assetDeliverer, ledger receiptLedger, catalog catalogQuerier) *DeliveryHandler {
	return &DeliveryHandler{downloads: downloads, delivery: delivery, ledger: ledger, catalog: catalog}
}

// Download godoc
// @Summary Re-deliver an owned project
// @Tags Downloads
// @Produce json
// @Param projectID path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /downloads/{projectID} [post]
func (h *DeliveryHandler) Download(c *gin.Context) {
	result, err := h.downloads.Redownload(c.Request.Context(), deviceFromContext(c), c.Param("projectID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Retry godoc
// @Summary Retry the device's most recent delivery
// @Tags Downloads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /downloads/retry [post]
func (h *DeliveryHandler) Retry(c *gin.Context) {
	result, err := h.downloads.RetryLast(c.Request.Context(), deviceFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Resolve godoc
// @Summary Resolve a signed download token to its asset locator
// @Tags Downloads
// @Param token path string true "Signed download token"
// @Success 302
// @Router /downloads/resolve/{token} [get]
func (h *DeliveryHandler) Resolve(c *gin.Context) {
	_, downloadURL, err := h.delivery.ResolveToken(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, downloadURL)
}

// Receipt godoc
// @Summary Render a PDF receipt for a completed purchase
// @Tags Downloads
// @Produce application/pdf
// @Param projectID path string true "Project id"
// @Param reference query string true "Gateway reference"
// @Success 200 {file} binary
// @Router /downloads/{projectID}/receipt [get]
func (h *DeliveryHandler) Receipt(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "reference is required"))
		return
	}

	entry, err := h.ledger.GetByReference(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entry.DeviceID != deviceFromContext(c) || entry.ProjectID != c.Param("projectID") {
		response.Error(c, appErrors.ErrPurchaseNotFound)
		return
	}

	project, err := h.catalog.Get(entry.ProjectID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.delivery.Receipt(*project, reference, entry.BuyerEmail, entry.Amount, entry.Currency)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipt_`+reference+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}
