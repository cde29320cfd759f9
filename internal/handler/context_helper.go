package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cybersweeft1/sweeftprojects/internal/middleware"
)

func deviceFromContext(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextDeviceKey)
	if !exists {
		return ""
	}
	deviceID, ok := value.(string)
	if !ok {
		return ""
	}
	return deviceID
}
