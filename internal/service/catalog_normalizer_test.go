package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
)

func TestNormalizeRowsWorkedExample(t *testing.T) {
	rows := []models.RawRow{
		{"P1", "Fraud Detection System", "Department of Computer Science", "ML-based fraud detection", "3000", "abc123", "2024-01-01", "active"},
	}

	projects, skipped := NormalizeRows(rows, 2500)
	require.Len(t, projects, 1)
	assert.Equal(t, 0, skipped)

	p := projects[0]
	assert.Equal(t, "P1", p.ID)
	assert.Equal(t, "Fraud Detection System", p.Name)
	assert.Equal(t, "Department of Computer Science", p.Department)
	assert.Equal(t, models.SchoolAppliedScience, p.School)
	assert.Equal(t, 3000, p.Price)
	assert.Equal(t, "abc123", p.AssetRef)
}

func TestNormalizeRowsSkipsIncompleteRows(t *testing.T) {
	rows := []models.RawRow{
		{"", "No ID", "Dept", "desc", "1000", "ref1"},
		{"P2", "", "Dept", "desc", "1000", "ref2"},
		{"P3", "No Asset", "Dept", "desc", "1000", ""},
		{"P4", "Kept", "Dept", "desc", "1000", "ref4"},
		{"P5", "Sparse row"},
	}

	projects, skipped := NormalizeRows(rows, 2500)
	require.Len(t, projects, 1)
	assert.Equal(t, "P4", projects[0].ID)
	assert.Equal(t, 4, skipped)
}

func TestNormalizeRowsStatusFilter(t *testing.T) {
	rows := []models.RawRow{
		{"P1", "Active", "Dept", "d", "1000", "r1", "", "active"},
		{"P2", "Mixed case active", "Dept", "d", "1000", "r2", "", "ACTIVE"},
		{"P3", "Inactive", "Dept", "d", "1000", "r3", "", "inactive"},
		{"P4", "Draft", "Dept", "d", "1000", "r4", "", "draft"},
		{"P5", "No status defaults to active", "Dept", "d", "1000", "r5"},
	}

	projects, skipped := NormalizeRows(rows, 2500)
	require.Len(t, projects, 3)
	assert.Equal(t, "P1", projects[0].ID)
	assert.Equal(t, "P2", projects[1].ID)
	assert.Equal(t, "P5", projects[2].ID)
	assert.Equal(t, 2, skipped)
}

func TestNormalizeRowsPriceFallback(t *testing.T) {
	rows := []models.RawRow{
		{"P1", "Non-numeric price", "Dept", "d", "abc", "r1"},
		{"P2", "Missing price", "Dept", "d", nil, "r2"},
		{"P3", "Numeric cell", "Dept", "d", float64(4000), "r3"},
		{"P4", "String price", "Dept", "d", " 1500 ", "r4"},
	}

	projects, skipped := NormalizeRows(rows, 2500)
	require.Len(t, projects, 4)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, 2500, projects[0].Price)
	assert.Equal(t, 2500, projects[1].Price)
	assert.Equal(t, 4000, projects[2].Price)
	assert.Equal(t, 1500, projects[3].Price)
}

func TestNormalizeRowsDefaults(t *testing.T) {
	rows := []models.RawRow{
		{"P1", "Bare", "Department Nobody Heard Of", "", "1000", "r1"},
	}

	projects, _ := NormalizeRows(rows, 2500)
	require.Len(t, projects, 1)
	assert.Equal(t, models.UnknownSchool, projects[0].School)
	assert.Equal(t, "No description available.", projects[0].Description)
}

func TestNormalizeRowsPreservesOrder(t *testing.T) {
	rows := []models.RawRow{
		{"Z9", "Last alphabetically", "Dept", "d", "1000", "r1"},
		{"A1", "First alphabetically", "Dept", "d", "1000", "r2"},
		{"M5", "Middle", "Dept", "d", "1000", "r3"},
	}

	projects, _ := NormalizeRows(rows, 2500)
	require.Len(t, projects, 3)
	assert.Equal(t, []string{"Z9", "A1", "M5"}, []string{projects[0].ID, projects[1].ID, projects[2].ID})
}
