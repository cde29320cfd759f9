package dto

import "github.com/cybersweeft1/sweeftprojects/internal/models"

// ProjectFilter carries the optional predicates for a catalog query.
// "all" and empty string both mean "no constraint".
type ProjectFilter struct {
	School     string `json:"school" form:"school"`
	Department string `json:"department" form:"department"`
	Query      string `json:"q" form:"q"`
}

// CatalogResponse is the project listing payload.
type CatalogResponse struct {
	Projects []models.Project `json:"projects"`
	Total    int              `json:"total"`
	LoadedAt string           `json:"loadedAt"`
}

// SchoolsResponse exposes the hierarchy driving the filter UI.
type SchoolsResponse struct {
	Schools []models.School `json:"schools"`
}

// ConfigResponse mirrors the storefront bootstrap contract.
type ConfigResponse struct {
	PaystackPublicKey string `json:"PAYSTACK_PUBLIC_KEY"`
}
