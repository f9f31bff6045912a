package models

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;unique;not null" json:"username"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, hidden from JSON
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Requests  []Request       `gorm:"foreignKey:RequesterID" json:"-"`
	Donations []AcceptedDonor `gorm:"foreignKey:DonorID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
