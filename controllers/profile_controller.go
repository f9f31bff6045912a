package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/middleware"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

func MyProfile(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var profile models.Profile
	err := config.DB.Where("user_id = ?", u.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     u.ID,
			"phone":       "",
			"blood_group": "",
			"location":    "",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

type updateProfileReq struct {
	Phone       *string `json:"phone"`
	BloodGroup  *string `json:"blood_group"`
	Location    *string `json:"location"`
	LastDonated *string `json:"last_donated"` // YYYY-MM-DD
}

func UpdateMyProfile(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if req.BloodGroup != nil && *req.BloodGroup != "" && !utils.IsValidBloodGroup(*req.BloodGroup) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid blood group"})
		return
	}

	var lastDonated *time.Time
	if req.LastDonated != nil && *req.LastDonated != "" {
		d, err := time.Parse("2006-01-02", *req.LastDonated)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "last_donated must be YYYY-MM-DD"})
			return
		}
		lastDonated = &d
	}

	var profile models.Profile
	err := config.DB.Where("user_id = ?", u.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.Profile{UserID: u.ID}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load profile"})
		return
	}

	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.BloodGroup != nil {
		profile.BloodGroup = *req.BloodGroup
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.LastDonated != nil {
		profile.LastDonated = lastDonated
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
