package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/dto"
	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

type referenceGuard interface {
	MarkProcessed(ctx context.Context, reference string) (bool, error)
}

type verifiedGranter interface {
	GrantVerified(ctx context.Context, deviceID, projectID, reference string) (*dto.PurchaseOutcome, error)
}

// paystackVerifyResponse mirrors the gateway's transaction verify payload.
// Only the fields the reconciler inspects are decoded.
type paystackVerifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status   string `json:"status"`
		Amount   int    `json:"amount"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// VerificationService confirms gateway references server-side and drives the
// return-URL reconciliation path. Every failure mode resolves to "not
// verified": no entitlement is granted on timeouts, gateway errors, or
// malformed responses.
type VerificationService struct {
	cfg     config.PaystackConfig
	client  *http.Client
	guard   referenceGuard
	granter verifiedGranter
	logger  *zap.Logger
	metrics *MetricsService
}

// NewVerificationService constructs the reconciler.
func NewVerificationService(cfg config.PaystackConfig, guard referenceGuard, granter verifiedGranter, metrics *MetricsService, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.VerifyTimeout},
		guard:   guard,
		granter: granter,
		logger:  logger,
		metrics: metrics,
	}
}

// Verify asks the gateway whether a reference represents a successful charge.
// Fail-closed: any transport or decode problem reports not verified.
func (s *VerificationService) Verify(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, appErrors.ErrValidation
	}
	if s.cfg.SecretKey == "" {
		s.logger.Warn("verification skipped, no secret key configured")
		if s.metrics != nil {
			s.metrics.ObserveVerification(false)
		}
		return false, nil
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", s.cfg.BaseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build verify request")
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("gateway verify unreachable", zap.String("reference", reference), zap.Error(err))
		if s.metrics != nil {
			s.metrics.ObserveVerification(false)
		}
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("gateway verify rejected",
			zap.String("reference", reference),
			zap.Int("status", resp.StatusCode),
		)
		if s.metrics != nil {
			s.metrics.ObserveVerification(false)
		}
		return false, nil
	}

	var payload paystackVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("gateway verify payload unreadable", zap.String("reference", reference), zap.Error(err))
		if s.metrics != nil {
			s.metrics.ObserveVerification(false)
		}
		return false, nil
	}

	verified := payload.Status && payload.Data.Status == "success"
	if s.metrics != nil {
		s.metrics.ObserveVerification(verified)
	}
	return verified, nil
}

// Reconcile handles the gateway return URL. Both parameters must be present;
// a partial return is treated as noise and nothing happens. The reference is
// consumed exactly once, so refreshing the return URL cannot re-grant or
// re-deliver.
func (s *VerificationService) Reconcile(ctx context.Context, deviceID, reference, projectID string) (*dto.PurchaseOutcome, error) {
	if reference == "" || projectID == "" {
		return nil, nil
	}

	first, err := s.guard.MarkProcessed(ctx, reference)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check reference")
	}
	if !first {
		// Already handled, likely a page refresh.
		return nil, nil
	}

	verified, err := s.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !verified {
		s.logger.Info("payment not verified, no entitlement granted",
			zap.String("reference", reference),
			zap.String("project_id", projectID),
		)
		return &dto.PurchaseOutcome{
			Reference: reference,
			ProjectID: projectID,
			State:     models.PurchaseVerificationFailed,
		}, appErrors.ErrVerificationFailed
	}

	return s.granter.GrantVerified(ctx, deviceID, projectID, reference)
}
