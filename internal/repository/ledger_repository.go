package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
)

// LedgerRepository persists purchase attempt audit rows. The ledger is for
// support and gateway reconciliation; entitlement itself lives in the
// device-scoped store.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates the repository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create inserts a new ledger row for a purchase attempt.
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO purchases (id, reference, project_id, device_id, buyer_email, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.Reference, entry.ProjectID, entry.DeviceID, entry.BuyerEmail,
		entry.Amount, entry.Currency, entry.Status, entry.CreatedAt, entry.UpdatedAt,
	)
	return err
}

// UpdateStatus transitions the ledger row for a reference.
func (r *LedgerRepository) UpdateStatus(ctx context.Context, reference string, status models.LedgerStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET status = $1, updated_at = $2 WHERE reference = $3`,
		status, time.Now().UTC(), reference,
	)
	return err
}

// GetByReference loads one ledger row.
func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.GetContext(ctx, &entry, `
		SELECT id, reference, project_id, device_id, buyer_email, amount, currency, status, created_at, updated_at
		FROM purchases WHERE reference = $1`, reference)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByDevice returns the device's purchase history, most recent first.
func (r *LedgerRepository) ListByDevice(ctx context.Context, deviceID string) ([]models.LedgerEntry, error) {
	entries := []models.LedgerEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, reference, project_id, device_id, buyer_email, amount, currency, status, created_at, updated_at
		FROM purchases WHERE device_id = $1 ORDER BY created_at DESC`, deviceID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
