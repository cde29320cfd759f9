package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/response"
)

type catalogQuerier interface {
	Filter(filter dto.ProjectFilter) ([]models.Project, error)
	Get(id string) (*models.Project, error)
	Schools() []models.School
	Departments(school string) []string
	Snapshot() *models.CatalogSnapshot
}

// CatalogHandler exposes the browsing surface: project listing, detail, and
// the school/department hierarchy behind the filter controls.
type CatalogHandler struct {
	catalog catalogQuerier
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(catalog catalogQuerier) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary List projects
// @Tags Catalog
// @Produce json
// @Param school query string false "School filter, 'all' for no constraint"
// @Param department query string false "Department filter, 'all' for no constraint"
// @Param q query string false "Free-text search"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var filter dto.ProjectFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = dto.ProjectFilter{}
	}

	projects, err := h.catalog.Filter(filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.CatalogResponse{Projects: projects, Total: len(projects)}
	if snap := h.catalog.Snapshot(); snap != nil {
		resp.LoadedAt = snap.LoadedAt.UTC().Format(time.RFC3339)
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Get godoc
// @Summary Get a project by id
// @Tags Catalog
// @Produce json
// @Param id path string true "Project id"
// @Success 200 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	project, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Schools godoc
// @Summary List the school and department hierarchy
// @Tags Catalog
// @Produce json
// @Param school query string false "Return departments for one school only"
// @Success 200 {object} response.Envelope
// @Router /schools [get]
func (h *CatalogHandler) Schools(c *gin.Context) {
	if school := c.Query("school"); school != "" {
		response.JSON(c, http.StatusOK, gin.H{"departments": h.catalog.Departments(school)}, nil)
		return
	}
	response.JSON(c, http.StatusOK, dto.SchoolsResponse{Schools: h.catalog.Schools()}, nil)
}
