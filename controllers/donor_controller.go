package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/middleware"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

var (
	errRequestNotPending = errors.New("request is no longer active")
	errAlreadyFinalized  = errors.New("request already finalized")
)

// AcceptRequest commits the caller as a donor on a request. The
// (request, donor) unique index is the authoritative duplicate guard;
// the status check runs under a row lock so it cannot race a concurrent
// finalize.
func AcceptRequest(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var req models.Request
	if err := config.DB.Where("short_id = ?", c.Param("short_id")).First(&req).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Request not found"})
		return
	}

	if req.RequesterID == u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot accept your own request"})
		return
	}

	if req.Status != models.RequestPending {
		c.JSON(http.StatusConflict, gin.H{"message": "Request is no longer active"})
		return
	}

	donorBlood := ""
	if v, ok := c.Get(middleware.CtxProfile); ok {
		donorBlood = v.(models.Profile).BloodGroup
	}
	if !utils.CanDonate(donorBlood, req.BloodGroup) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Blood group not compatible"})
		return
	}

	entry := models.AcceptedDonor{
		UniqueID:  utils.NewShortID(),
		RequestID: req.ID,
		DonorID:   u.ID,
		Status:    models.DonorPending,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var locked models.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, req.ID).Error; err != nil {
			return err
		}
		if locked.Status != models.RequestPending {
			return errRequestNotPending
		}
		return tx.Create(&entry).Error
	})

	switch {
	case errors.Is(err, errRequestNotPending):
		c.JSON(http.StatusConflict, gin.H{"message": "Request is no longer active"})
		return
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"message": "You have already accepted this request"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not accept request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Accepted successfully",
		"room_id": entry.UniqueID,
		"status":  entry.Status,
	})
}

// ListAcceptedDonors returns the still-pending donors on a request,
// newest first. CheckRequester has already verified ownership.
func ListAcceptedDonors(c *gin.Context) {
	req := c.MustGet("requestObj").(models.Request)

	var entries []models.AcceptedDonor
	err := config.DB.
		Preload("Donor").
		Where("request_id = ? AND status = ?", req.ID, models.DonorPending).
		Order("accepted_at DESC").
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load donors"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		name := ""
		if e.Donor != nil {
			name = e.Donor.Username
		}
		out = append(out, gin.H{
			"unique_id":        e.UniqueID,
			"donor_name":       name,
			"request_short_id": req.ShortID,
			"status":           e.Status,
			"accepted_at":      e.AcceptedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

// FinalizeDonor selects one pending donor and closes the request. The
// three mutations (chosen entry Finalized, siblings Rejected, request
// Success) run in one transaction with the request row locked, and the
// status precondition is re-checked inside so a concurrent finalize
// loses cleanly.
func FinalizeDonor(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var entry models.AcceptedDonor
	err := config.DB.
		Preload("Request").
		Where("unique_id = ?", c.Param("unique_id")).
		First(&entry).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Donor entry not found"})
		return
	}

	if entry.Request == nil || entry.Request.RequesterID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the requester can finalize"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, entry.RequestID).Error; err != nil {
			return err
		}
		if req.Status == models.RequestSuccess {
			return errAlreadyFinalized
		}

		if err := tx.Model(&models.AcceptedDonor{}).
			Where("id = ?", entry.ID).
			Update("status", models.DonorFinalized).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AcceptedDonor{}).
			Where("request_id = ? AND id <> ?", entry.RequestID, entry.ID).
			Update("status", models.DonorRejected).Error; err != nil {
			return err
		}
		return tx.Model(&models.Request{}).
			Where("id = ?", entry.RequestID).
			Update("status", models.RequestSuccess).Error
	})

	switch {
	case errors.Is(err, errAlreadyFinalized):
		c.JSON(http.StatusConflict, gin.H{"message": "Request already finalized"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not finalize donor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donor finalized"})
}

// MyDonations lists the caller's ledger entries, newest first.
func MyDonations(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var entries []models.AcceptedDonor
	err := config.DB.
		Preload("Request").
		Preload("Request.Requester").
		Where("donor_id = ?", u.ID).
		Order("accepted_at DESC").
		Find(&entries).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load donations"})
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		row := gin.H{
			"unique_id":   e.UniqueID,
			"status":      e.Status,
			"accepted_at": e.AcceptedAt,
		}
		if e.Request != nil {
			row["request_short_id"] = e.Request.ShortID
			row["blood_group"] = e.Request.BloodGroup
			row["urgency"] = e.Request.Urgency
			row["request_status"] = e.Request.Status
			if e.Request.Requester != nil {
				row["requester_name"] = e.Request.Requester.Username
			}
		}
		out = append(out, row)
	}

	c.JSON(http.StatusOK, out)
}
