package models

import "time"

// PurchaseState tracks one purchase attempt through the state machine.
type PurchaseState string

const (
	PurchaseInitiated          PurchaseState = "INITIATED"
	PurchaseAwaitingGateway    PurchaseState = "AWAITING_GATEWAY"
	PurchaseCancelled          PurchaseState = "CANCELLED"
	PurchasePaidClientSide     PurchaseState = "PAID_CLIENT_SIDE"
	PurchaseVerified           PurchaseState = "VERIFIED"
	PurchaseVerificationFailed PurchaseState = "VERIFICATION_FAILED"
	PurchaseEntitled           PurchaseState = "ENTITLED"
	PurchaseDelivered          PurchaseState = "DELIVERED"
)

// PurchaseTransaction is the ephemeral record of one purchase attempt. It
// exists only for the attempt's lifetime; the entitlement written on ENTITLED
// is the only state that outlives it.
type PurchaseTransaction struct {
	Reference      string
	ProjectID      string
	DeviceID       string
	BuyerEmail     string
	AmountExpected int
	// Project is the catalog entry as it stood at initiation. The paid
	// attempt completes against this snapshot even if a refresh drops the
	// project before the callback arrives.
	Project   Project
	State     PurchaseState
	CreatedAt time.Time
}

// LedgerStatus enumerates audit-row outcomes for the purchase ledger.
type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "PENDING"
	LedgerStatusCompleted LedgerStatus = "COMPLETED"
	LedgerStatusVerified  LedgerStatus = "VERIFIED"
	LedgerStatusFailed    LedgerStatus = "FAILED"
	LedgerStatusCancelled LedgerStatus = "CANCELLED"
)

// LedgerEntry is a durable audit record of a purchase attempt. Support staff
// reconcile gateway disputes against these rows; they do not gate delivery.
type LedgerEntry struct {
	ID         string       `db:"id" json:"id"`
	Reference  string       `db:"reference" json:"reference"`
	ProjectID  string       `db:"project_id" json:"projectId"`
	DeviceID   string       `db:"device_id" json:"deviceId"`
	BuyerEmail string       `db:"buyer_email" json:"buyerEmail"`
	Amount     int          `db:"amount" json:"amount"`
	Currency   string       `db:"currency" json:"currency"`
	Status     LedgerStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}
