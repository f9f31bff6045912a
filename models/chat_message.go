package models

import "time"

type ChatMessage struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"-"` // AcceptedDonor.ID
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Message   *string   `gorm:"size:300" json:"message"` // nullable: attachment-only messages keep it empty
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`

	Room   *AcceptedDonor `gorm:"foreignKey:RoomID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Sender *User          `gorm:"foreignKey:SenderID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
