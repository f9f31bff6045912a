package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/models"
)

// CheckRequester loads the request by short id into the context and
// verifies the caller created it.
func CheckRequester() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := c.MustGet(CtxUser).(models.User)

		shortID := c.Param("short_id")
		if shortID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request id"})
			return
		}

		var req models.Request
		if err := config.DB.Where("short_id = ?", shortID).First(&req).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Request not found"})
			return
		}

		// Only the requester may act
		if req.RequesterID != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Only the requester may do this"})
			return
		}

		c.Set("requestObj", req)
		c.Next()
	}
}
