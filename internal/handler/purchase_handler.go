package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
	"github.com/cybersweeft1/sweeftprojects/pkg/response"
)

type purchaseOrchestrator interface {
	Initiate(ctx context.Context, deviceID string, req dto.InitiatePurchaseRequest) (*dto.InitiatePurchaseResponse, error)
	CompleteClientCallback(ctx context.Context, deviceID, reference string) (*dto.PurchaseOutcome, error)
	Cancel(ctx context.Context, deviceID, reference string)
	Entitlements(ctx context.Context, deviceID string) (*dto.EntitlementsResponse, error)
}

type paymentReconciler interface {
	Reconcile(ctx context.Context, deviceID, reference, projectID string) (*dto.PurchaseOutcome, error)
	Verify(ctx context.Context, reference string) (bool, error)
}

// PurchaseHandler exposes the purchase lifecycle: initiation, the gateway's
// in-page callback, cancellation, the verified return-URL path, and the
// device's entitlement listing.
type PurchaseHandler struct {
	purchases purchaseOrchestrator
	verifier  paymentReconciler
}

// NewPurchaseHandler builds a new handler.
func NewPurchaseHandler(purchases purchaseOrchestrator, verifier paymentReconciler) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, verifier: verifier}
}

// Initiate godoc
// @Summary Start a purchase attempt
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body dto.InitiatePurchaseRequest true "Purchase intent"
// @Success 200 {object} response.Envelope
// @Router /purchases [post]
func (h *PurchaseHandler) Initiate(c *gin.Context) {
	var req dto.InitiatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid purchase payload"))
		return
	}

	result, err := h.purchases.Initiate(c.Request.Context(), deviceFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Callback godoc
// @Summary Complete a purchase after the in-page gateway callback
// @Tags Purchases
// @Produce json
// @Param reference path string true "Gateway reference"
// @Success 200 {object} response.Envelope
// @Router /purchases/{reference}/callback [post]
func (h *PurchaseHandler) Callback(c *gin.Context) {
	outcome, err := h.purchases.CompleteClientCallback(c.Request.Context(), deviceFromContext(c), c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Cancel godoc
// @Summary Abandon an in-flight purchase attempt
// @Tags Purchases
// @Produce json
// @Param reference path string true "Gateway reference"
// @Success 204
// @Router /purchases/{reference}/cancel [post]
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	h.purchases.Cancel(c.Request.Context(), deviceFromContext(c), c.Param("reference"))
	response.NoContent(c)
}

// Return godoc
// @Summary Gateway return URL
// @Description Reconciles the returning reference server-side, then redirects
// to the storefront with the parameters stripped so a refresh replays nothing.
// @Tags Purchases
// @Param reference query string false "Gateway reference"
// @Param project query string false "Project id"
// @Success 302
// @Router /payments/return [get]
func (h *PurchaseHandler) Return(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	projectID := c.Query("project")
	if projectID == "" {
		projectID = c.Query("projectId")
	}

	// Both parameters or nothing: a partial return is noise.
	if reference != "" && projectID != "" {
		if _, err := h.verifier.Reconcile(c.Request.Context(), deviceFromContext(c), reference, projectID); err != nil {
			// The parameters are stripped on failure too; a reload of the
			// return URL must replay nothing.
			c.Redirect(http.StatusFound, "/?payment=failed")
			return
		}
	}
	c.Redirect(http.StatusFound, "/")
}

// Verify godoc
// @Summary Verify a gateway reference server-side
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body dto.VerifyRequest true "Reference to verify"
// @Success 200 {object} response.Envelope
// @Router /api/verify [post]
func (h *PurchaseHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verify payload"))
		return
	}

	verified, err := h.verifier.Verify(c.Request.Context(), req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.VerifyResponse{Verified: verified}, nil)
}

// Entitlements godoc
// @Summary List the calling device's owned projects
// @Tags Purchases
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /entitlements [get]
func (h *PurchaseHandler) Entitlements(c *gin.Context) {
	resp, err := h.purchases.Entitlements(c.Request.Context(), deviceFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
