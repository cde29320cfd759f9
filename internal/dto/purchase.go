package dto

import "github.com/cybersweeft1/sweeftprojects/internal/models"

// InitiatePurchaseRequest starts one purchase attempt.
// The email rule matches the storefront's minimal check: it must contain "@".
type InitiatePurchaseRequest struct {
	ProjectID  string `json:"projectId" validate:"required"`
	BuyerEmail string `json:"email" validate:"required,contains=@"`
}

// GatewayMetadataField is one display field forwarded to the checkout widget.
type GatewayMetadataField struct {
	DisplayName  string `json:"display_name"`
	VariableName string `json:"variable_name"`
	Value        string `json:"value"`
}

// GatewayHandoff is everything the client needs to open the checkout widget.
type GatewayHandoff struct {
	PublicKey string                 `json:"publicKey"`
	Email     string                 `json:"email"`
	Amount    int                    `json:"amount"` // minor currency units
	Currency  string                 `json:"currency"`
	Reference string                 `json:"reference"`
	Metadata  []GatewayMetadataField `json:"metadata"`
}

// InitiatePurchaseResponse is either a gateway handoff for a new purchase or
// an immediate delivery for an already-owned project.
type InitiatePurchaseResponse struct {
	AlreadyOwned bool            `json:"alreadyOwned"`
	Gateway      *GatewayHandoff `json:"gateway,omitempty"`
	Delivery     *DeliveryResult `json:"delivery,omitempty"`
}

// PurchaseOutcome reports a terminal purchase transition.
type PurchaseOutcome struct {
	Reference string               `json:"reference"`
	ProjectID string               `json:"projectId"`
	State     models.PurchaseState `json:"state"`
	Delivery  *DeliveryResult      `json:"delivery,omitempty"`
}

// VerifyRequest asks the server to confirm a gateway reference.
type VerifyRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// VerifyResponse reports the verification outcome. Fail-closed: any error is
// reported as not verified.
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// DeliveryResult is the transient notification emitted when a transfer is
// dispatched. There is no completion acknowledgment channel.
type DeliveryResult struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	DownloadURL string `json:"downloadUrl"`
	Token       string `json:"token"`
	ExpiresAt   string `json:"expiresAt"`
	Message     string `json:"message"`
}

// EntitlementsResponse lists the project IDs owned by the calling device.
type EntitlementsResponse struct {
	ProjectIDs   []string        `json:"projectIds"`
	LastPurchase *models.Project `json:"lastPurchase,omitempty"`
}
