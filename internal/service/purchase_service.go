package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type entitlementStore interface {
	Has(ctx context.Context, deviceID, projectID string) (bool, error)
	Record(ctx context.Context, deviceID string, project models.Project, reference string) error
	List(ctx context.Context, deviceID string) ([]string, error)
	LastPurchase(ctx context.Context, deviceID string) (*models.LastPurchase, error)
}

type purchaseLedger interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	UpdateStatus(ctx context.Context, reference string, status models.LedgerStatus) error
}

type projectCatalog interface {
	Get(id string) (*models.Project, error)
}

type deliverer interface {
	Deliver(project models.Project, reference string) (*dto.DeliveryResult, error)
}

// PurchaseService drives one purchase attempt from intent to entitlement or
// failure. It is the only component that writes to the entitlement store.
//
// The in-page gateway callback path grants entitlement on the client-asserted
// success alone, matching the storefront contract; only the return-URL path
// goes through server-side verification. That asymmetry is deliberate and
// documented, not an oversight.
type PurchaseService struct {
	catalog      projectCatalog
	entitlements entitlementStore
	ledger       purchaseLedger
	delivery     deliverer
	paystack     config.PaystackConfig
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService

	mu           sync.Mutex
	transactions map[string]*models.PurchaseTransaction
}

// NewPurchaseService constructs the orchestrator.
func NewPurchaseService(catalog projectCatalog, entitlements entitlementStore, ledger purchaseLedger, delivery deliverer, paystack config.PaystackConfig, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *PurchaseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseService{
		catalog:      catalog,
		entitlements: entitlements,
		ledger:       ledger,
		delivery:     delivery,
		paystack:     paystack,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
		transactions: map[string]*models.PurchaseTransaction{},
	}
}

// Initiate starts a purchase attempt. Buying an already-owned project is a
// redownload: it goes straight to delivery without touching the gateway, and
// without demanding an email the gateway will never see.
func (s *PurchaseService) Initiate(ctx context.Context, deviceID string, req dto.InitiatePurchaseRequest) (*dto.InitiatePurchaseResponse, error) {
	project, err := s.catalog.Get(req.ProjectID)
	if err != nil {
		return nil, err
	}

	owned, err := s.entitlements.Has(ctx, deviceID, project.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read entitlements")
	}
	if owned {
		result, err := s.deliver(ctx, deviceID, *project, "")
		if err != nil {
			return nil, err
		}
		return &dto.InitiatePurchaseResponse{AlreadyOwned: true, Delivery: result}, nil
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "please enter a valid email address")
	}

	publicKey := s.gatewayKey()
	if publicKey == "" {
		return nil, appErrors.ErrGatewayUnavailable
	}

	reference := newReference()
	txn := &models.PurchaseTransaction{
		Reference:      reference,
		ProjectID:      project.ID,
		DeviceID:       deviceID,
		BuyerEmail:     req.BuyerEmail,
		AmountExpected: project.Price,
		Project:        *project,
		State:          models.PurchaseInitiated,
		CreatedAt:      time.Now().UTC(),
	}

	s.mu.Lock()
	txn.State = models.PurchaseAwaitingGateway
	s.transactions[reference] = txn
	s.mu.Unlock()

	if s.ledger != nil {
		entry := &models.LedgerEntry{
			Reference:  reference,
			ProjectID:  project.ID,
			DeviceID:   deviceID,
			BuyerEmail: req.BuyerEmail,
			Amount:     project.Price,
			Currency:   s.paystack.Currency,
			Status:     models.LedgerStatusPending,
		}
		if err := s.ledger.Create(ctx, entry); err != nil {
			// Audit only; never blocks the purchase.
			s.logger.Warn("ledger create failed", zap.String("reference", reference), zap.Error(err))
		}
	}

	return &dto.InitiatePurchaseResponse{
		Gateway: &dto.GatewayHandoff{
			PublicKey: publicKey,
			Email:     req.BuyerEmail,
			Amount:    project.Price * 100, // gateway expects minor currency units
			Currency:  s.paystack.Currency,
			Reference: reference,
			Metadata: []dto.GatewayMetadataField{
				{DisplayName: "Project", VariableName: "project_name", Value: project.Name},
				{DisplayName: "Project ID", VariableName: "project_id", Value: project.ID},
				{DisplayName: "Department", VariableName: "department", Value: project.Department},
				{DisplayName: "School", VariableName: "school", Value: project.School},
			},
		},
	}, nil
}

// CompleteClientCallback handles the gateway's in-page success callback. The
// success is client-asserted; no further verification happens on this path.
func (s *PurchaseService) CompleteClientCallback(ctx context.Context, deviceID, reference string) (*dto.PurchaseOutcome, error) {
	s.mu.Lock()
	txn, ok := s.transactions[reference]
	if ok && (txn.DeviceID != deviceID || txn.State != models.PurchaseAwaitingGateway) {
		ok = false
	}
	if ok {
		txn.State = models.PurchasePaidClientSide
		delete(s.transactions, reference)
	}
	s.mu.Unlock()

	if !ok {
		return nil, appErrors.ErrPurchaseNotFound
	}

	// The attempt completes against the catalog entry captured at initiate;
	// an intervening refresh that dropped the project cannot void a payment.
	project := txn.Project

	if err := s.grant(ctx, deviceID, project, reference); err != nil {
		// The paid attempt survives a failed grant so the client can retry
		// the callback with the same reference.
		s.mu.Lock()
		txn.State = models.PurchaseAwaitingGateway
		s.transactions[reference] = txn
		s.mu.Unlock()
		return nil, err
	}
	if s.ledger != nil {
		if err := s.ledger.UpdateStatus(ctx, reference, models.LedgerStatusCompleted); err != nil {
			s.logger.Warn("ledger update failed", zap.String("reference", reference), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObservePurchase("paid_client_side")
	}

	result, err := s.deliver(ctx, deviceID, project, reference)
	if err != nil {
		return nil, err
	}
	return &dto.PurchaseOutcome{
		Reference: reference,
		ProjectID: project.ID,
		State:     models.PurchaseDelivered,
		Delivery:  result,
	}, nil
}

// Cancel discards an in-flight attempt after the user closed the checkout.
// No entitlement change; cancelling an unknown reference is a no-op.
func (s *PurchaseService) Cancel(ctx context.Context, deviceID, reference string) {
	s.mu.Lock()
	txn, ok := s.transactions[reference]
	if ok && txn.DeviceID == deviceID {
		txn.State = models.PurchaseCancelled
		delete(s.transactions, reference)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if s.ledger != nil {
		if err := s.ledger.UpdateStatus(ctx, reference, models.LedgerStatusCancelled); err != nil {
			s.logger.Warn("ledger update failed", zap.String("reference", reference), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObservePurchase("cancelled")
	}
}

// GrantVerified completes the server-verified purchase path: entitle, then
// deliver. Used by the verification reconciler.
func (s *PurchaseService) GrantVerified(ctx context.Context, deviceID, projectID, reference string) (*dto.PurchaseOutcome, error) {
	project, err := s.catalog.Get(projectID)
	if err != nil {
		return nil, err
	}
	if err := s.grant(ctx, deviceID, *project, reference); err != nil {
		return nil, err
	}
	if s.ledger != nil {
		if err := s.ledger.UpdateStatus(ctx, reference, models.LedgerStatusVerified); err != nil {
			s.logger.Warn("ledger update failed", zap.String("reference", reference), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObservePurchase("verified")
	}

	result, err := s.deliver(ctx, deviceID, *project, reference)
	if err != nil {
		return nil, err
	}
	return &dto.PurchaseOutcome{
		Reference: reference,
		ProjectID: project.ID,
		State:     models.PurchaseDelivered,
		Delivery:  result,
	}, nil
}

// Redownload re-delivers an owned project. Gated on the entitlement store.
func (s *PurchaseService) Redownload(ctx context.Context, deviceID, projectID string) (*dto.DeliveryResult, error) {
	owned, err := s.entitlements.Has(ctx, deviceID, projectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read entitlements")
	}
	if !owned {
		return nil, appErrors.ErrNotEntitled
	}
	project, err := s.catalog.Get(projectID)
	if err != nil {
		return nil, err
	}
	return s.deliver(ctx, deviceID, *project, "")
}

// RetryLast re-delivers the device's most recent purchase without a catalog
// round trip, the "retry last download" path.
func (s *PurchaseService) RetryLast(ctx context.Context, deviceID string) (*dto.DeliveryResult, error) {
	last, err := s.entitlements.LastPurchase(ctx, deviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read last purchase")
	}
	if last == nil {
		return nil, appErrors.ErrDownloadSessionGone
	}
	return s.deliver(ctx, deviceID, last.Project, last.Reference)
}

// Entitlements lists the device's owned project ids and last purchase.
func (s *PurchaseService) Entitlements(ctx context.Context, deviceID string) (*dto.EntitlementsResponse, error) {
	ids, err := s.entitlements.List(ctx, deviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read entitlements")
	}
	resp := &dto.EntitlementsResponse{ProjectIDs: ids}
	if last, err := s.entitlements.LastPurchase(ctx, deviceID); err == nil && last != nil {
		resp.LastPurchase = &last.Project
	}
	return resp, nil
}

// grant writes the entitlement durably. It must complete before delivery is
// dispatched so a retry after a crash still finds the entitlement.
func (s *PurchaseService) grant(ctx context.Context, deviceID string, project models.Project, reference string) error {
	if err := s.entitlements.Record(ctx, deviceID, project, reference); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record purchase")
	}
	return nil
}

// deliver triggers the transfer. A delivery failure is logged and reported
// as a best-effort notification; it never rolls back entitlement.
func (s *PurchaseService) deliver(ctx context.Context, deviceID string, project models.Project, reference string) (*dto.DeliveryResult, error) {
	result, err := s.delivery.Deliver(project, reference)
	if err != nil {
		s.logger.Warn("delivery failed, entitlement unaffected",
			zap.String("device", deviceID),
			zap.String("project_id", project.ID),
			zap.Error(err),
		)
		return &dto.DeliveryResult{
			ProjectID:   project.ID,
			ProjectName: project.Name,
			Message:     "Download could not be started. Use retry download.",
		}, nil
	}
	return result, nil
}

func (s *PurchaseService) gatewayKey() string {
	if s.paystack.PublicKey != "" {
		return s.paystack.PublicKey
	}
	return s.paystack.FallbackPublicKey
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newReference builds a unique gateway reference per attempt: a timestamp
// plus a random suffix, never reused across retries.
func newReference() string {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(referenceAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			suffix[i] = referenceAlphabet[time.Now().UnixNano()%int64(len(referenceAlphabet))]
			continue
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("PRJ_%d_%s", time.Now().UnixMilli(), suffix)
}
