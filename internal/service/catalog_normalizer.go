package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
)

// Positional column contract for raw catalog rows.
const (
	colID = iota
	colName
	colDepartment
	colDescription
	colPrice
	colAssetRef
	colAddedAt
	colStatus
)

const descriptionFallback = "No description available."

// NormalizeRows turns raw source rows into validated projects, preserving
// source order. Rows missing id, name, or assetRef are skipped, as are rows
// whose status is anything other than case-insensitive "active" (absent
// status defaults to active). A non-numeric price falls back to the catalog
// default and never fails the row. Duplicate ids are not deduplicated; the
// source is expected to keep ids unique.
//
// Pure: no side effects, same inputs always produce the same output.
func NormalizeRows(rows []models.RawRow, defaultPrice int) ([]models.Project, int) {
	projects := make([]models.Project, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		id := cellString(row, colID)
		name := cellString(row, colName)
		assetRef := cellString(row, colAssetRef)
		if id == "" || name == "" || assetRef == "" {
			skipped++
			continue
		}

		status := cellString(row, colStatus)
		if status == "" {
			status = string(models.ProjectStatusActive)
		}
		if !strings.EqualFold(status, string(models.ProjectStatusActive)) {
			skipped++
			continue
		}

		department := cellString(row, colDepartment)
		description := cellString(row, colDescription)
		if description == "" {
			description = descriptionFallback
		}

		projects = append(projects, models.Project{
			ID:          id,
			Name:        name,
			Department:  department,
			School:      models.SchoolFor(department),
			Description: description,
			Price:       cellPrice(row, colPrice, defaultPrice),
			AssetRef:    assetRef,
		})
	}

	return projects, skipped
}

// cellString extracts a trimmed string from a sparse, untyped row cell.
func cellString(row models.RawRow, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// cellPrice parses the price cell as an integer amount, falling back to the
// catalog-wide default on anything non-numeric.
func cellPrice(row models.RawRow, idx int, fallback int) int {
	if idx >= len(row) || row[idx] == nil {
		return fallback
	}
	switch v := row[idx].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}
