package models

import "time"

// ProjectStatus enumerates catalog row lifecycle values.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusInactive ProjectStatus = "inactive"
)

// Project is a normalized, sellable catalog entry. Immutable once built for a
// given catalog snapshot.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	School      string `json:"school"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	AssetRef    string `json:"assetRef"`
}

// DownloadURL returns the Drive-style direct download locator for the asset.
func (p Project) DownloadURL() string {
	return "https://drive.google.com/uc?export=download&id=" + p.AssetRef
}

// ViewURL returns the Drive preview locator for the asset.
func (p Project) ViewURL() string {
	return "https://drive.google.com/file/d/" + p.AssetRef + "/view"
}

// School groups an ordered set of departments for the hierarchy filter UI.
// It is not authoritative over Project.School, which is resolved per project
// from the department lookup table.
type School struct {
	Name        string   `json:"name"`
	Departments []string `json:"departments"`
}

// RawRow is one loosely-typed row from the external catalog source. Cells are
// positional per the column contract: id, name, department, description,
// price, assetRef, addedAt, status.
type RawRow []interface{}

// RawDocument is the fetched catalog payload before normalization.
type RawDocument struct {
	Schools []School
	Rows    []RawRow
}

// CatalogSnapshot is one immutable, validated view of the catalog.
type CatalogSnapshot struct {
	Projects    []Project `json:"projects"`
	Schools     []School  `json:"schools"`
	SkippedRows int       `json:"skippedRows"`
	LoadedAt    time.Time `json:"loadedAt"`
}
