package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
)

// CatalogSource fetches the raw project catalog from the external,
// human-editable source. It owns transport-level retries and timeouts only;
// all row validation happens in the normalizer.
type CatalogSource struct {
	sourceURL string
	sheetID   string
	sheetName string
	retries   int
	client    *http.Client
	logger    *zap.Logger
}

// NewCatalogSource builds a source adapter from catalog configuration.
func NewCatalogSource(cfg config.CatalogConfig, logger *zap.Logger) *CatalogSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := cfg.FetchRetries
	if retries < 0 {
		retries = 0
	}
	return &CatalogSource{
		sourceURL: cfg.SourceURL,
		sheetID:   cfg.SheetID,
		sheetName: cfg.SheetName,
		retries:   retries,
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		logger:    logger,
	}
}

// Fetch retrieves the raw catalog document. The payload may be a plain JSON
// document of shape {schools, projects} or a Google Sheets gviz envelope;
// both are returned as positional raw rows.
func (s *CatalogSource) Fetch(ctx context.Context) (*models.RawDocument, error) {
	endpoint, err := s.endpoint()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}
		body, err := s.get(ctx, endpoint)
		if err != nil {
			lastErr = err
			s.logger.Warn("catalog fetch attempt failed", zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}
		doc, err := parseRawCatalog(body)
		if err != nil {
			// A malformed payload will not improve on retry.
			return nil, err
		}
		return doc, nil
	}
	return nil, fmt.Errorf("catalog fetch failed: %w", lastErr)
}

func (s *CatalogSource) endpoint() (string, error) {
	if s.sourceURL != "" {
		return s.sourceURL, nil
	}
	if s.sheetID == "" {
		return "", fmt.Errorf("no catalog source configured")
	}
	// gviz returns JSON wrapped in a JS envelope; no Apps Script needed for reads.
	return fmt.Sprintf(
		"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:json&sheet=%s",
		url.PathEscape(s.sheetID),
		url.QueryEscape(s.sheetName),
	), nil
}

func (s *CatalogSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	// Cache-busting param, the sheet is edited by hand and served cached.
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	reqURL := fmt.Sprintf("%s%st=%d", endpoint, sep, time.Now().UnixMilli())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create catalog request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog source returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	return body, nil
}

// parseRawCatalog accepts either catalog shape without knowing in advance
// which is active. Enveloped payloads are unwrapped by locating the first "{"
// and the last "}" in the body; failing to locate both is a load error.
func parseRawCatalog(body []byte) (*models.RawDocument, error) {
	text := string(body)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("catalog payload contains no JSON document")
	}
	raw := []byte(text[start : end+1])

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parse catalog payload: %w", err)
	}

	if _, ok := probe["projects"]; ok {
		var doc rawProjectDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse catalog document: %w", err)
		}
		return doc.toDocument(), nil
	}

	if _, ok := probe["table"]; ok {
		var envelope gvizEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("parse catalog envelope: %w", err)
		}
		return envelope.toDocument(), nil
	}

	return nil, fmt.Errorf("catalog payload is not a recognized shape")
}

// rawProjectDoc is the plain-JSON catalog shape: {schools, projects}.
type rawProjectDoc struct {
	Schools  []models.School   `json:"schools"`
	Projects []rawProjectEntry `json:"projects"`
}

type rawProjectEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Department  string      `json:"department"`
	Description string      `json:"description"`
	Price       interface{} `json:"price"`
	DriveID     string      `json:"driveId"`
	AddedAt     string      `json:"addedAt"`
	Status      string      `json:"status"`
}

func (d rawProjectDoc) toDocument() *models.RawDocument {
	rows := make([]models.RawRow, 0, len(d.Projects))
	for _, p := range d.Projects {
		department := p.Department
		if department == "" {
			department = p.Category
		}
		rows = append(rows, models.RawRow{
			p.ID, p.Name, department, p.Description, p.Price, p.DriveID, p.AddedAt, p.Status,
		})
	}
	return &models.RawDocument{Schools: d.Schools, Rows: rows}
}

// gvizEnvelope is the Google Sheets visualization query response shape.
type gvizEnvelope struct {
	Table struct {
		Rows []struct {
			C []*struct {
				V interface{} `json:"v"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

func (e gvizEnvelope) toDocument() *models.RawDocument {
	rows := make([]models.RawRow, 0, len(e.Table.Rows))
	for _, r := range e.Table.Rows {
		row := make(models.RawRow, 0, len(r.C))
		for _, cell := range r.C {
			if cell == nil {
				row = append(row, nil)
				continue
			}
			row = append(row, cell.V)
		}
		rows = append(rows, row)
	}
	return &models.RawDocument{Rows: rows}
}
