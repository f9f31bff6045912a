package models

import "time"

// Profile holds the donor-side attributes of a user. A user without a
// blood group set is not eligible to appear in or act on the matching feed.
type Profile struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Phone       string     `gorm:"size:15" json:"phone"`
	BloodGroup  string     `gorm:"size:3" json:"blood_group"` // A+ A- B+ B- AB+ AB- O+ O- | ""
	Location    string     `gorm:"type:text" json:"location"`
	LastDonated *time.Time `gorm:"type:date" json:"last_donated"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
