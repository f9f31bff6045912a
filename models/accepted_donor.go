package models

import "time"

const (
	DonorPending   = "Pending"
	DonorFinalized = "Finalized"
	DonorRejected  = "Rejected"
)

// AcceptedDonor records one donor's commitment to one request. Its
// unique_id doubles as the chat room id for the requester/donor pair.
// The (request_id, donor_id) unique index is the durable guard against
// a donor accepting the same request twice.
type AcceptedDonor struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UniqueID   string    `gorm:"size:22;uniqueIndex;not null" json:"unique_id"`
	RequestID  uint      `gorm:"not null;uniqueIndex:idx_request_donor" json:"-"`
	DonorID    uint      `gorm:"not null;uniqueIndex:idx_request_donor" json:"-"`
	Status     string    `gorm:"size:10;default:'Pending'" json:"status"` // Pending | Finalized | Rejected
	AcceptedAt time.Time `gorm:"autoCreateTime" json:"accepted_at"`

	Request *Request `gorm:"foreignKey:RequestID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
	Donor   *User    `gorm:"foreignKey:DonorID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (AcceptedDonor) TableName() string {
	return "accepted_donors"
}
