package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchoolForExactMatch(t *testing.T) {
	assert.Equal(t, SchoolAppliedScience, SchoolFor("Department of Computer Science"))
	assert.Equal(t, SchoolBusiness, SchoolFor("Department of Marketing"))
}

func TestSchoolForUnknownDepartment(t *testing.T) {
	assert.Equal(t, UnknownSchool, SchoolFor("Department of Astrology"))
	assert.Equal(t, UnknownSchool, SchoolFor(""))
	// Exact match only, no case folding or trimming.
	assert.Equal(t, UnknownSchool, SchoolFor("department of marketing"))
	assert.Equal(t, UnknownSchool, SchoolFor(" Department of Marketing "))
}

func TestSchoolDirectoryCoversLookupTable(t *testing.T) {
	directory := SchoolDirectory()
	assert.Len(t, directory, 5)
	for _, school := range directory {
		for _, dept := range school.Departments {
			assert.Equal(t, school.Name, SchoolFor(dept), dept)
		}
	}
}
