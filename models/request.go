package models

import "time"

const (
	RequestPending   = "Pending"
	RequestSuccess   = "Success"
	RequestCancelled = "Cancelled"
)

const (
	UrgencyEmergency = "Emergency"
	UrgencyNotUrgent = "Not Urgent"
)

type Request struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ShortID     string    `gorm:"size:22;uniqueIndex;not null" json:"short_id"`
	RequesterID uint      `gorm:"not null;index" json:"-"`
	PatientName string    `gorm:"size:100;not null" json:"patient_name"`
	PatientAge  uint      `gorm:"not null" json:"patient_age"`
	BloodGroup  string    `gorm:"size:3;not null" json:"blood_group"`
	Urgency     string    `gorm:"size:15;not null" json:"urgency"` // Emergency | Not Urgent
	Location    string    `gorm:"type:text" json:"location"`
	Pincode     string    `gorm:"size:6" json:"pincode"`
	Reason      *string   `gorm:"type:text" json:"reason"`
	Status      string    `gorm:"size:20;default:'Pending'" json:"status"` // Pending | Success | Cancelled
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Requester      *User           `gorm:"foreignKey:RequesterID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	AcceptedDonors []AcceptedDonor `gorm:"foreignKey:RequestID" json:"-"`
}

func (Request) TableName() string {
	return "requests"
}
