package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
	appErrors "github.com/cybersweeft1/sweeftprojects/pkg/errors"
)

// DeviceService mints and validates the signed device token that scopes
// entitlements. A device is a browser profile, nothing more: losing the
// cookie loses the library, exactly like clearing site data did.
type DeviceService struct {
	config config.DeviceConfig
}

// NewDeviceService constructs the device identity service.
func NewDeviceService(cfg config.DeviceConfig) *DeviceService {
	return &DeviceService{config: cfg}
}

// Issue mints a fresh device identity and its signed token.
func (s *DeviceService) Issue() (string, string, error) {
	deviceID := uuid.NewString()
	token, err := s.sign(deviceID)
	if err != nil {
		return "", "", err
	}
	return deviceID, token, nil
}

// ValidateToken parses a device token and returns its claims.
func (s *DeviceService) ValidateToken(tokenString string) (*models.DeviceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.DeviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid device token")
	}

	claims, ok := token.Claims.(*models.DeviceClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid device token claims")
	}
	return claims, nil
}

// CookieName is the cookie carrying the device token.
func (s *DeviceService) CookieName() string {
	return s.config.CookieName
}

// CookieMaxAge is the device cookie lifetime in seconds.
func (s *DeviceService) CookieMaxAge() int {
	return int(s.config.TokenTTL.Seconds())
}

func (s *DeviceService) sign(deviceID string) (string, error) {
	issuedAt := time.Now()
	claims := models.DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenTTL)),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}
