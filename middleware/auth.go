package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

const (
	CtxUser    = "user"
	CtxProfile = "profile"
)

// AuthJWT checks Authorization: Bearer <token>, validates the JWT, loads
// the user (and donor profile, if any) and injects both into the context.
func AuthJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		rawToken := strings.TrimSpace(authHeader[7:])

		claims, err := utils.VerifyToken(rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		// UserID in the claims is a string; parse it for the primary-key lookup
		uid, err := strconv.ParseUint(claims.UserID, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid subject"})
			return
		}

		var user models.User
		if err := config.DB.First(&user, uid).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set(CtxUser, user)

		// Profile is optional; users without one simply have no donor side.
		var profile models.Profile
		err = config.DB.Where("user_id = ?", user.ID).First(&profile).Error
		if err == nil {
			c.Set(CtxProfile, profile)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Could not load profile"})
			return
		}

		c.Next()
	}
}

// RequireDonor blocks routes that need a registered blood group.
func RequireDonor() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxProfile)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Donor profile required"})
			return
		}
		p := v.(models.Profile)
		if p.BloodGroup == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Blood group not set"})
			return
		}
		c.Next()
	}
}
