package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type fakeCatalogSource struct {
	doc *models.RawDocument
	err error
}

func (f *fakeCatalogSource) Fetch(context.Context) (*models.RawDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeSnapshotCache struct {
	stored   map[string]interface{}
	getErr   error
	snapshot *models.CatalogSnapshot
}

func (f *fakeSnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	if f.getErr != nil {
		return f.getErr
	}
	if f.snapshot == nil {
		return appErrors.ErrCacheMiss
	}
	snap, ok := dest.(*models.CatalogSnapshot)
	if !ok {
		return errors.New("unexpected dest type")
	}
	*snap = *f.snapshot
	return nil
}

func (f *fakeSnapshotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.stored == nil {
		f.stored = map[string]interface{}{}
	}
	f.stored[key] = value
	return nil
}

func catalogTestConfig() config.CatalogConfig {
	return config.CatalogConfig{DefaultPrice: 2500, CacheKey: "catalog:test"}
}

func testDocument() *models.RawDocument {
	return &models.RawDocument{
		Rows: []models.RawRow{
			{"P1", "Fraud Detection System", "Department of Computer Science", "ML classifier", "3000", "ref1"},
			{"P2", "Retail Marketing Study", "Department of Marketing", "Consumer survey", "2000", "ref2"},
			{"P3", "Bridge Load Analysis", "Department of Civil Engineering", "Structural model", "4000", "ref3"},
			{"P4", "Inventory Marketing Audit", "Department of Marketing", "Audit report", "2200", "ref4"},
		},
	}
}

func loadedCatalog(t *testing.T, source *fakeCatalogSource) *CatalogService {
	t.Helper()
	svc := NewCatalogService(source, &fakeSnapshotCache{}, catalogTestConfig(), nil, nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestCatalogServiceLoadAndGet(t *testing.T) {
	svc := loadedCatalog(t, &fakeCatalogSource{doc: testDocument()})

	p, err := svc.Get("P1")
	require.NoError(t, err)
	assert.Equal(t, "Fraud Detection System", p.Name)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, appErrors.ErrProjectNotFound)
}

func TestCatalogServiceLoadFailureKeepsSnapshot(t *testing.T) {
	source := &fakeCatalogSource{doc: testDocument()}
	svc := loadedCatalog(t, source)

	source.err = errors.New("sheet unreachable")
	err := svc.Load(context.Background())
	require.Error(t, err)

	// Previous snapshot still serves.
	projects, err := svc.Filter(dto.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, projects, 4)
}

func TestCatalogServiceFilterBeforeLoad(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogSource{doc: testDocument()}, nil, catalogTestConfig(), nil, nil)
	_, err := svc.Filter(dto.ProjectFilter{})
	assert.ErrorIs(t, err, appErrors.ErrCatalogUnavailable)
}

func TestCatalogServiceFilterPredicates(t *testing.T) {
	svc := loadedCatalog(t, &fakeCatalogSource{doc: testDocument()})

	t.Run("no predicates returns full catalog in order", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{})
		require.NoError(t, err)
		require.Len(t, projects, 4)
		assert.Equal(t, "P1", projects[0].ID)
		assert.Equal(t, "P4", projects[3].ID)
	})

	t.Run("all wildcard means no constraint", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{School: "all", Department: "all"})
		require.NoError(t, err)
		assert.Len(t, projects, 4)
	})

	t.Run("school filter", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{School: models.SchoolBusiness})
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, "P2", projects[0].ID)
		assert.Equal(t, "P4", projects[1].ID)
	})

	t.Run("predicates compose as AND", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{
			School:     models.SchoolBusiness,
			Department: "Department of Marketing",
			Query:      "audit",
		})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "P4", projects[0].ID)
	})

	t.Run("query is case-insensitive across fields", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{Query: "MARKETING"})
		require.NoError(t, err)
		// Name matches plus department matches.
		assert.Len(t, projects, 2)

		projects, err = svc.Filter(dto.ProjectFilter{Query: "structural"})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "P3", projects[0].ID)
	})

	t.Run("non-matching predicates return empty, not error", func(t *testing.T) {
		projects, err := svc.Filter(dto.ProjectFilter{Query: "quantum blockchain"})
		require.NoError(t, err)
		assert.Empty(t, projects)
	})
}

func TestCatalogServiceWarmStart(t *testing.T) {
	cached := &models.CatalogSnapshot{
		Projects: []models.Project{{ID: "P9", Name: "Cached Project"}},
		LoadedAt: time.Now().Add(-time.Hour),
	}
	svc := NewCatalogService(&fakeCatalogSource{err: errors.New("down")}, &fakeSnapshotCache{snapshot: cached}, catalogTestConfig(), nil, nil)

	require.True(t, svc.WarmStart(context.Background()))
	p, err := svc.Get("P9")
	require.NoError(t, err)
	assert.Equal(t, "Cached Project", p.Name)
}

func TestCatalogServiceWarmStartMiss(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogSource{doc: testDocument()}, &fakeSnapshotCache{}, catalogTestConfig(), nil, nil)
	assert.False(t, svc.WarmStart(context.Background()))
}

func TestCatalogServiceSchoolsFallback(t *testing.T) {
	svc := loadedCatalog(t, &fakeCatalogSource{doc: testDocument()})

	schools := svc.Schools()
	require.NotEmpty(t, schools)
	assert.Equal(t, models.SchoolAppliedScience, schools[0].Name)

	departments := svc.Departments(models.SchoolCommunication)
	assert.Equal(t, []string{
		"Department of Mass Communication",
		"Department of Library and Information Science",
	}, departments)
}
