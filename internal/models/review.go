package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	BookingID uint    `gorm:"uniqueIndex;not null" json:"booking_id"`
	Booking   Booking `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	UserID   uint `gorm:"index;not null" json:"user_id"`
	MentorID uint `gorm:"index;not null" json:"mentor_id"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"size:1000" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
}

type SavedMentor struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"index:idx_saved_user_mentor,unique;not null" json:"user_id"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	MentorID uint   `gorm:"index:idx_saved_user_mentor,unique;not null" json:"mentor_id"`
	Mentor   Mentor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"mentor"`

	CreatedAt time.Time `json:"created_at"`
}
