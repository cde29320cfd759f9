package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
)

// EntitlementRepository is the durable, device-scoped record of paid-for
// projects. The owned set is stored as a JSON array under one well-known key
// per device and only ever grows; the last-purchase record lives under a
// separate, shorter-lived key.
type EntitlementRepository struct {
	client          *redis.Client
	keyPrefix       string
	lastPurchaseTTL time.Duration
	logger          *zap.Logger
}

// NewEntitlementRepository constructs the repository.
func NewEntitlementRepository(client *redis.Client, cfg config.EntitlementConfig, logger *zap.Logger) *EntitlementRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := cfg.StorageKeyPrefix
	if prefix == "" {
		prefix = "cybersweeft_purchases_v1"
	}
	ttl := cfg.LastPurchaseTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EntitlementRepository{
		client:          client,
		keyPrefix:       prefix,
		lastPurchaseTTL: ttl,
		logger:          logger,
	}
}

func (r *EntitlementRepository) ownedKey(deviceID string) string {
	return r.keyPrefix + ":" + deviceID
}

func (r *EntitlementRepository) lastPurchaseKey(deviceID string) string {
	return "last_purchase:" + deviceID
}

// List returns the project IDs owned by the device. Corrupt or missing data
// reads as an empty set, never an error surfaced to the purchase flow.
func (r *EntitlementRepository) List(ctx context.Context, deviceID string) ([]string, error) {
	raw, err := r.client.Get(ctx, r.ownedKey(deviceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []string{}, nil
		}
		return nil, fmt.Errorf("redis get entitlements: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		r.logger.Warn("corrupt entitlement record, treating as empty", zap.String("device", deviceID), zap.Error(err))
		return []string{}, nil
	}
	return ids, nil
}

// Has reports whether the device already owns the project.
func (r *EntitlementRepository) Has(ctx context.Context, deviceID, projectID string) (bool, error) {
	ids, err := r.List(ctx, deviceID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == projectID {
			return true, nil
		}
	}
	return false, nil
}

// Record adds the project to the device's owned set. Idempotent on the set;
// the last-purchase record is refreshed on every call so "retry last
// download" always targets the most recent successful transaction.
func (r *EntitlementRepository) Record(ctx context.Context, deviceID string, project models.Project, reference string) error {
	ids, err := r.List(ctx, deviceID)
	if err != nil {
		return err
	}
	owned := false
	for _, id := range ids {
		if id == project.ID {
			owned = true
			break
		}
	}
	if !owned {
		ids = append(ids, project.ID)
		payload, err := json.Marshal(ids)
		if err != nil {
			return fmt.Errorf("marshal entitlements: %w", err)
		}
		if err := r.client.Set(ctx, r.ownedKey(deviceID), payload, 0).Err(); err != nil {
			return fmt.Errorf("redis set entitlements: %w", err)
		}
	}

	last := models.LastPurchase{Project: project, Reference: reference}
	payload, err := json.Marshal(last)
	if err != nil {
		return fmt.Errorf("marshal last purchase: %w", err)
	}
	if err := r.client.Set(ctx, r.lastPurchaseKey(deviceID), payload, r.lastPurchaseTTL).Err(); err != nil {
		return fmt.Errorf("redis set last purchase: %w", err)
	}
	return nil
}

// LastPurchase returns the device's most recent purchase record, or nil when
// the record is absent, expired, or unreadable.
func (r *EntitlementRepository) LastPurchase(ctx context.Context, deviceID string) (*models.LastPurchase, error) {
	raw, err := r.client.Get(ctx, r.lastPurchaseKey(deviceID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get last purchase: %w", err)
	}
	var last models.LastPurchase
	if err := json.Unmarshal(raw, &last); err != nil {
		r.logger.Warn("corrupt last purchase record", zap.String("device", deviceID), zap.Error(err))
		return nil, nil
	}
	return &last, nil
}
