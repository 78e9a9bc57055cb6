package models

import (
	"time"

	"github.com/google/uuid"
)

// User types. Only sellers may create listings.
const (
	UserTypeSeller = "seller"
	UserTypeBuyer  = "buyer"
)

// User is a marketplace account (seller or buyer) with its public profile.
type User struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email               string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"column:password_hash;not null" json:"-"`
	Name                string     `gorm:"column:name;not null" json:"name"`
	UserType            string     `gorm:"column:user_type;type:varchar(10);not null;default:'buyer'" json:"user_type"`
	Bio                 string     `gorm:"column:bio" json:"bio"`
	AvatarURL           string     `gorm:"column:avatar_url" json:"avatar_url"`
	LastLocation        string     `gorm:"column:last_location" json:"last_location"`
	LastLocationUpdated *time.Time `gorm:"column:last_location_updated" json:"last_location_updated"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
