package models

import "github.com/golang-jwt/jwt/v5"

// DeviceClaims are the JWT claims carried by the device identity cookie.
// There is no account system: entitlement is scoped to one device profile,
// identified by an opaque ID minted on first contact.
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// LastPurchase is the auxiliary record backing "retry last download". It is
// best-effort and shorter-lived than the entitlement set itself.
type LastPurchase struct {
	Project   Project `json:"project"`
	Reference string  `json:"reference"`
}
