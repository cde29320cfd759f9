package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/service"
)

// ContextDeviceKey is the gin context key storing the caller's device id.
const ContextDeviceKey = "deviceID"

// Device resolves the caller's device identity from the device cookie,
// minting one on first contact. Every request leaves with a valid device id
// in context; an expired or tampered token is replaced, not rejected.
func Device(devices *service.DeviceService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(devices.CookieName()); err == nil && token != "" {
			if claims, err := devices.ValidateToken(token); err == nil {
				c.Set(ContextDeviceKey, claims.DeviceID)
				c.Next()
				return
			}
		}

		deviceID, token, err := devices.Issue()
		if err != nil {
			// No identity, no entitlements; catalog browsing still works.
			c.Next()
			return
		}
		c.SetCookie(devices.CookieName(), token, devices.CookieMaxAge(), "/", "", false, true)
		c.Set(ContextDeviceKey, deviceID)
		c.Next()
	}
}
