package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/export"
	"github.com/cybersweeft1/sweeftprojects/pkg/response"
)

type catalogRefresher interface {
	Load(ctx context.Context) error
	Snapshot() *models.CatalogSnapshot
}

type ledgerLister interface {
	ListByDevice(ctx context.Context, deviceID string) ([]models.LedgerEntry, error)
}

// AdminHandler exposes operator-only endpoints: forcing a catalog refresh
// and exporting a device's purchase audit trail.
type AdminHandler struct {
	catalog catalogRefresher
	ledger  ledgerLister
	csv     *export.CSVExporter
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(catalog catalogRefresher, ledger ledgerLister) *AdminHandler {
	return &AdminHandler{catalog: catalog, ledger: ledger, csv: export.NewCSVExporter()}
}

// RefreshCatalog godoc
// @Summary Force a catalog reload from the source sheet
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/catalog/refresh [post]
func (h *AdminHandler) RefreshCatalog(c *gin.Context) {
	if err := h.catalog.Load(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	snap := h.catalog.Snapshot()
	response.JSON(c, http.StatusOK, gin.H{
		"projects":    len(snap.Projects),
		"skippedRows": snap.SkippedRows,
		"loadedAt":    snap.LoadedAt.UTC().Format(time.RFC3339),
	}, nil)
}

// ExportLedger godoc
// @Summary Export a device's purchase audit rows as CSV
// @Tags Admin
// @Produce text/csv
// @Param deviceId query string true "Device id"
// @Success 200 {file} binary
// @Router /admin/ledger/export [get]
func (h *AdminHandler) ExportLedger(c *gin.Context) {
	entries, err := h.ledger.ListByDevice(c.Request.Context(), c.Query("deviceId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	data := export.Dataset{
		Headers: []string{"Reference", "Project", "Email", "Amount", "Currency", "Status", "Created"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, map[string]string{
			"Reference": e.Reference,
			"Project":   e.ProjectID,
			"Email":     e.BuyerEmail,
			"Amount":    strconv.Itoa(e.Amount),
			"Currency":  e.Currency,
			"Status":    string(e.Status),
			"Created":   e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	payload, err := h.csv.Render(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="ledger.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}
