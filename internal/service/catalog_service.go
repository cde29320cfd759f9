package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type catalogSource interface {
	Fetch(ctx context.Context) (*models.RawDocument, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// FilterAll is the wildcard accepted for school and department predicates.
const FilterAll = "all"

// CatalogService owns the normalized catalog snapshot and answers filter
// queries against it. The snapshot is swapped atomically on refresh; a failed
// refresh keeps the previous snapshot serving (no partial catalog is ever
// exposed).
type CatalogService struct {
	source  catalogSource
	cache   snapshotCache
	cfg     config.CatalogConfig
	logger  *zap.Logger
	metrics *MetricsService

	snapshot atomic.Pointer[models.CatalogSnapshot]
}

// NewCatalogService constructs the service.
func NewCatalogService(source catalogSource, cache snapshotCache, cfg config.CatalogConfig, metrics *MetricsService, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		source:  source,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// WarmStart restores the last persisted snapshot so the store can serve
// before the first live fetch completes. Best effort.
func (s *CatalogService) WarmStart(ctx context.Context) bool {
	if s.cache == nil || s.cfg.CacheKey == "" {
		return false
	}
	var snap models.CatalogSnapshot
	if err := s.cache.Get(ctx, s.cfg.CacheKey, &snap); err != nil {
		return false
	}
	if len(snap.Projects) == 0 {
		return false
	}
	s.snapshot.Store(&snap)
	s.logger.Info("catalog warm start", zap.Int("projects", len(snap.Projects)), zap.Time("loaded_at", snap.LoadedAt))
	return true
}

// Load fetches, normalizes, and installs a fresh catalog snapshot.
func (s *CatalogService) Load(ctx context.Context) error {
	doc, err := s.source.Fetch(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveCatalogRefresh(0, 0, err)
		}
		return appErrors.Wrap(err, appErrors.ErrCatalogUnavailable.Code, appErrors.ErrCatalogUnavailable.Status, appErrors.ErrCatalogUnavailable.Message)
	}

	projects, skipped := NormalizeRows(doc.Rows, s.cfg.DefaultPrice)
	schools := doc.Schools
	if len(schools) == 0 {
		schools = models.SchoolDirectory()
	}

	snap := &models.CatalogSnapshot{
		Projects:    projects,
		Schools:     schools,
		SkippedRows: skipped,
		LoadedAt:    time.Now().UTC(),
	}
	s.snapshot.Store(snap)

	if s.cache != nil && s.cfg.CacheKey != "" {
		if err := s.cache.Set(ctx, s.cfg.CacheKey, snap, 0); err != nil {
			s.logger.Warn("failed to persist catalog snapshot", zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveCatalogRefresh(len(projects), skipped, nil)
	}
	s.logger.Info("catalog loaded", zap.Int("projects", len(projects)), zap.Int("skipped_rows", skipped))
	return nil
}

// Snapshot returns the current catalog view, or nil when nothing has loaded.
func (s *CatalogService) Snapshot() *models.CatalogSnapshot {
	return s.snapshot.Load()
}

// Filter answers a catalog query: the subsequence of projects satisfying all
// supplied predicates, in original catalog order. School and department are
// exact-string matches; the free-text query matches case-insensitively
// against name, department, school, and description.
func (s *CatalogService) Filter(filter dto.ProjectFilter) ([]models.Project, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, appErrors.ErrCatalogUnavailable
	}

	school := normalizeChoice(filter.School)
	department := normalizeChoice(filter.Department)
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	result := make([]models.Project, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		if school != "" && p.School != school {
			continue
		}
		if department != "" && p.Department != department {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Get returns one active project by id.
func (s *CatalogService) Get(id string) (*models.Project, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, appErrors.ErrCatalogUnavailable
	}
	for i := range snap.Projects {
		if snap.Projects[i].ID == id {
			p := snap.Projects[i]
			return &p, nil
		}
	}
	return nil, appErrors.ErrProjectNotFound
}

// Schools returns the hierarchy driving the filter UI.
func (s *CatalogService) Schools() []models.School {
	snap := s.snapshot.Load()
	if snap == nil {
		return models.SchoolDirectory()
	}
	return snap.Schools
}

// Departments lists the valid department choices for a school selection. The
// filter itself does not enforce this coupling; it exists for the UI layer.
func (s *CatalogService) Departments(school string) []string {
	schools := s.Schools()
	school = normalizeChoice(school)
	departments := []string{}
	for _, sc := range schools {
		if school != "" && sc.Name != school {
			continue
		}
		departments = append(departments, sc.Departments...)
	}
	return departments
}

func normalizeChoice(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.EqualFold(trimmed, FilterAll) {
		return ""
	}
	return trimmed
}

func matchesQuery(p models.Project, query string) bool {
	haystack := strings.ToLower(p.Name + " " + p.Department + " " + p.School + " " + p.Description)
	return strings.Contains(haystack, query)
}
