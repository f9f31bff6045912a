package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/middleware"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

type createRequestReq struct {
	PatientName string  `json:"patient_name" binding:"required,min=1,max=100"`
	PatientAge  uint    `json:"patient_age" binding:"required,min=1"`
	BloodGroup  string  `json:"blood_group" binding:"required"`
	Urgency     string  `json:"urgency" binding:"required"`
	Location    string  `json:"location" binding:"required"`
	Pincode     string  `json:"pincode" binding:"required,len=6,numeric"`
	Reason      *string `json:"reason"`
}

func CreateRequest(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req createRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	if !utils.IsValidBloodGroup(req.BloodGroup) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid blood group"})
		return
	}
	if req.Urgency != models.UrgencyEmergency && req.Urgency != models.UrgencyNotUrgent {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid urgency"})
		return
	}

	r := models.Request{
		ShortID:     utils.NewShortID(),
		RequesterID: u.ID,
		PatientName: req.PatientName,
		PatientAge:  req.PatientAge,
		BloodGroup:  req.BloodGroup,
		Urgency:     req.Urgency,
		Location:    req.Location,
		Pincode:     req.Pincode,
		Reason:      req.Reason,
		Status:      models.RequestPending,
	}

	if err := config.DB.Create(&r).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create request"})
		return
	}

	c.JSON(http.StatusCreated, requestResponse(&r, u.Username, false))
}

// requestResponse is the wire shape of a request, with the derived
// canAccept flag computed at read time for the viewing user.
func requestResponse(r *models.Request, requesterName string, canAccept bool) gin.H {
	return gin.H{
		"short_id":       r.ShortID,
		"requester_name": requesterName,
		"patient_name":   r.PatientName,
		"patient_age":    r.PatientAge,
		"blood_group":    r.BloodGroup,
		"urgency":        r.Urgency,
		"location":       r.Location,
		"pincode":        r.Pincode,
		"reason":         r.Reason,
		"status":         r.Status,
		"created_at":     r.CreatedAt,
		"can_accept":     canAccept,
	}
}

// canAccept: the viewer is not the requester, the request is still
// Pending and the viewer has not already accepted it. Never stored.
func canAccept(r *models.Request, viewer models.User, hasAccepted bool) bool {
	return r.RequesterID != viewer.ID &&
		r.Status == models.RequestPending &&
		!hasAccepted
}

// ListOpenRequests is the matching feed: pending requests the caller may
// act on as a donor, newest first. A caller without a registered blood
// group gets an empty list.
func ListOpenRequests(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	donorBlood := ""
	if v, ok := c.Get(middleware.CtxProfile); ok {
		donorBlood = v.(models.Profile).BloodGroup
	}

	groups := utils.CompatibleRequestGroups(donorBlood)
	if len(groups) == 0 {
		c.JSON(http.StatusOK, []gin.H{})
		return
	}

	var requests []models.Request
	err := config.DB.
		Preload("Requester").
		Where("status = ?", models.RequestPending).
		Where("requester_id <> ?", u.ID).
		Where("blood_group IN ?", groups).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load requests"})
		return
	}

	// one query for all of the viewer's existing acceptances in the page
	accepted := make(map[uint]bool)
	if len(requests) > 0 {
		ids := make([]uint, 0, len(requests))
		for _, r := range requests {
			ids = append(ids, r.ID)
		}
		var entries []models.AcceptedDonor
		if err := config.DB.
			Where("donor_id = ? AND request_id IN ?", u.ID, ids).
			Find(&entries).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load requests"})
			return
		}
		for _, e := range entries {
			accepted[e.RequestID] = true
		}
	}

	out := make([]gin.H, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		name := ""
		if r.Requester != nil {
			name = r.Requester.Username
		}
		out = append(out, requestResponse(r, name, canAccept(r, u, accepted[r.ID])))
	}

	c.JSON(http.StatusOK, out)
}

func GetRequestDetail(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var r models.Request
	err := config.DB.
		Preload("Requester").
		Where("short_id = ?", c.Param("short_id")).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load request"})
		return
	}

	var count int64
	if err := config.DB.Model(&models.AcceptedDonor{}).
		Where("request_id = ? AND donor_id = ?", r.ID, u.ID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load request"})
		return
	}

	name := ""
	if r.Requester != nil {
		name = r.Requester.Username
	}
	c.JSON(http.StatusOK, requestResponse(&r, name, canAccept(&r, u, count > 0)))
}
