package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	"github.com/cybersweeft1/sweeftprojects/pkg/export"
	"github.com/cybersweeft1/sweeftprojects/pkg/jobs"
	"github.com/cybersweeft1/sweeftprojects/pkg/storage"
)

const deliveryStartedMessage = "Download started! Check your downloads folder."

// DeliveryService triggers asset transfers for entitled projects. Dispatch is
// idempotent: every call independently triggers a transfer of the same
// artifact, and no completion acknowledgment exists.
type DeliveryService struct {
	signer  *storage.DownloadTokenSigner
	queue   *jobs.Queue
	pdf     *export.PDFExporter
	delay   time.Duration
	logger  *zap.Logger
	metrics *MetricsService
}

type dispatchPayload struct {
	ProjectID   string
	ProjectName string
	DownloadURL string
	Reference   string
}

// NewDeliveryService constructs the service and its dispatch queue. Call
// Start before dispatching.
func NewDeliveryService(cfg config.DeliveryConfig, metrics *MetricsService, logger *zap.Logger) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &DeliveryService{
		signer:  storage.NewDownloadTokenSigner(cfg.SignedURLSecret, cfg.SignedURLTTL),
		pdf:     export.NewPDFExporter(),
		delay:   cfg.DispatchDelay,
		logger:  logger,
		metrics: metrics,
	}
	svc.queue = jobs.NewQueue("delivery", svc.handleDispatch, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	return svc
}

// Start begins the dispatch workers.
func (s *DeliveryService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *DeliveryService) Stop() {
	s.queue.Stop()
}

// Deliver initiates an asset transfer for an entitled project and returns the
// transient notification payload. The background dispatch runs after a short
// fixed delay so the success UI can render first; a dispatch failure never
// affects entitlement.
func (s *DeliveryService) Deliver(project models.Project, reference string) (*dto.DeliveryResult, error) {
	token, expiresAt, err := s.signer.Generate(project.ID, project.AssetRef)
	if err != nil {
		return nil, fmt.Errorf("sign download token: %w", err)
	}

	payload := dispatchPayload{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		DownloadURL: project.DownloadURL(),
		Reference:   reference,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "dispatch", Payload: payload}); err != nil {
		// Best effort: the client still receives the direct download locator.
		s.logger.Warn("delivery dispatch enqueue failed", zap.String("project_id", project.ID), zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.ObserveDelivery()
	}

	return &dto.DeliveryResult{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		DownloadURL: project.DownloadURL(),
		Token:       token,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		Message:     deliveryStartedMessage,
	}, nil
}

// ResolveToken validates a signed download token and returns the asset
// locator it was issued for.
func (s *DeliveryService) ResolveToken(token string) (projectID, downloadURL string, err error) {
	projectID, assetRef, _, err := s.signer.Parse(token)
	if err != nil {
		return "", "", err
	}
	return projectID, "https://drive.google.com/uc?export=download&id=" + assetRef, nil
}

// Receipt renders a PDF purchase receipt for an owned project.
func (s *DeliveryService) Receipt(project models.Project, reference, buyerEmail string, amount int, currency string) ([]byte, error) {
	data := export.Dataset{
		Headers: []string{"Field", "Value"},
		Rows: []map[string]string{
			{"Field": "Project", "Value": project.Name},
			{"Field": "Project ID", "Value": project.ID},
			{"Field": "Department", "Value": project.Department},
			{"Field": "School", "Value": project.School},
			{"Field": "Reference", "Value": reference},
			{"Field": "Buyer", "Value": buyerEmail},
			{"Field": "Amount", "Value": fmt.Sprintf("%s %d", currency, amount)},
			{"Field": "Issued", "Value": time.Now().UTC().Format(time.RFC3339)},
		},
	}
	return s.pdf.Render(data, "Purchase Receipt")
}

func (s *DeliveryService) handleDispatch(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(dispatchPayload)
	if !ok {
		return fmt.Errorf("unexpected dispatch payload %T", job.Payload)
	}

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}

	// The transfer itself happens on the client against the asset locator;
	// the dispatch record is the user-facing "download started" notification.
	s.logger.Info("download dispatched",
		zap.String("project_id", payload.ProjectID),
		zap.String("project_name", payload.ProjectName),
		zap.String("reference", payload.Reference),
	)
	return nil
}
