package models

import "time"

const (
	RoleLearner = "learner"
	RoleMentor  = "mentor"
	RoleAdmin   = "admin"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	ImageURL     string `gorm:"size:255" json:"image_url"`
	Role         string `gorm:"size:20;default:'learner'" json:"role"`
	Timezone     string `gorm:"size:60;default:'UTC'" json:"timezone"`

	TwoFactorSecret  string `gorm:"size:64" json:"-"`
	TwoFactorEnabled bool   `gorm:"default:false" json:"two_factor_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
