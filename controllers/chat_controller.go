package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/bloodconnect/bloodconnect-server/chat"
	"github.com/bloodconnect/bloodconnect-server/config"
	"github.com/bloodconnect/bloodconnect-server/middleware"
	"github.com/bloodconnect/bloodconnect-server/models"
	"github.com/bloodconnect/bloodconnect-server/utils"
)

type roomAccess int

const (
	roomMember roomAccess = iota
	roomNotMember
	roomNotFound
)

// authorizeRoom resolves a chat room (a ledger entry's unique id) and
// decides whether the user belongs to it. Membership is exactly the
// request's requester and the entry's donor, fixed for the room's
// lifetime.
func authorizeRoom(roomID string, userID uint) (models.AcceptedDonor, roomAccess) {
	var entry models.AcceptedDonor
	err := config.DB.
		Preload("Request").
		Preload("Donor").
		Where("unique_id = ?", roomID).
		First(&entry).Error
	if err != nil {
		return entry, roomNotFound
	}

	if entry.Request != nil && entry.Request.RequesterID == userID {
		return entry, roomMember
	}
	if entry.DonorID == userID {
		return entry, roomMember
	}
	return entry, roomNotMember
}

// ListChatMessages returns a room's history in timestamp order.
func ListChatMessages(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	entry, access := authorizeRoom(c.Param("room_id"), u.ID)
	switch access {
	case roomNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
		return
	case roomNotMember:
		c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed"})
		return
	}

	var messages []models.ChatMessage
	err := config.DB.
		Preload("Sender").
		Where("room_id = ?", entry.ID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load messages"})
		return
	}

	out := make([]gin.H, 0, len(messages))
	for _, m := range messages {
		row := gin.H{
			"id":        m.ID,
			"content":   m.Message,
			"timestamp": m.Timestamp,
		}
		if m.Sender != nil {
			row["sender"] = gin.H{"id": m.Sender.ID, "username": m.Sender.Username}
		}
		out = append(out, row)
	}

	c.JSON(http.StatusOK, out)
}

// ListConversations returns every room the caller belongs to, split by
// role, each with the counterpart and the latest message.
func ListConversations(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.User)

	var asRequester []models.AcceptedDonor
	err := config.DB.
		Preload("Donor").
		Preload("Request").
		Joins("JOIN requests ON requests.id = accepted_donors.request_id").
		Where("requests.requester_id = ?", u.ID).
		Find(&asRequester).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load conversations"})
		return
	}

	var asDonor []models.AcceptedDonor
	err = config.DB.
		Preload("Request").
		Preload("Request.Requester").
		Where("donor_id = ?", u.ID).
		Find(&asDonor).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not load conversations"})
		return
	}

	build := func(rooms []models.AcceptedDonor, requesterSide bool) []gin.H {
		result := make([]gin.H, 0, len(rooms))
		for _, room := range rooms {
			var other *models.User
			if requesterSide {
				other = room.Donor
			} else if room.Request != nil {
				other = room.Request.Requester
			}
			if other == nil {
				continue
			}

			row := gin.H{
				"id":        other.ID,
				"username":  other.Username,
				"unique_id": room.UniqueID,
				"status":    room.Status,
			}

			var last models.ChatMessage
			if err := config.DB.
				Where("room_id = ?", room.ID).
				Order("timestamp DESC").
				First(&last).Error; err == nil {
				row["last_message"] = last.Message
			} else if errors.Is(err, gorm.ErrRecordNotFound) {
				row["last_message"] = nil
			}

			result = append(result, row)
		}
		return result
	}

	c.JSON(http.StatusOK, gin.H{
		"as_requester": build(asRequester, true),
		"as_donor":     build(asDonor, false),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// browsers connect from the frontend origin; auth happens via the token
	CheckOrigin: func(r *http.Request) bool { return true },
}

type chatEvent struct {
	Type      string    `json:"type"`
	ID        uint      `json:"id"`
	RoomID    string    `json:"room_id"`
	Message   string    `json:"message"`
	SenderID  uint      `json:"sender_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRoomWS upgrades a connection into a chat room. The token comes in
// the query string because browsers cannot set headers on websocket
// dials. Any failure — bad token, unknown room, non-member — closes the
// socket with no payload, so an outsider cannot probe which rooms
// exist.
func ChatRoomWS(hub *chat.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		user, ok := wsUser(c.Query("token"))
		if !ok {
			conn.Close()
			return
		}

		roomID := c.Param("room_id")
		entry, access := authorizeRoom(roomID, user.ID)
		if access != roomMember {
			conn.Close()
			return
		}

		chat.NewClient(hub, conn, roomID, func(content string) ([]byte, error) {
			msg := models.ChatMessage{
				RoomID:   entry.ID,
				SenderID: user.ID,
				Message:  &content,
			}
			if err := config.DB.Create(&msg).Error; err != nil {
				return nil, err
			}
			return json.Marshal(chatEvent{
				Type:      "chat_message",
				ID:        msg.ID,
				RoomID:    roomID,
				Message:   content,
				SenderID:  user.ID,
				Username:  user.Username,
				Timestamp: msg.Timestamp,
			})
		})
	}
}

// wsUser resolves the connection-scoped identity from the query token.
func wsUser(token string) (models.User, bool) {
	var user models.User
	if token == "" {
		return user, false
	}

	claims, err := utils.VerifyToken(token)
	if err != nil {
		return user, false
	}
	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return user, false
	}
	if err := config.DB.First(&user, uid).Error; err != nil {
		return user, false
	}
	return user, true
}
