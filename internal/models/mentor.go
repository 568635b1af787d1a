package models

import "time"

// Offer types
const (
	OfferAccess = "access"
	OfferTime   = "time"
	OfferBoth   = "both"
)

// Mentor categories
const (
	CategoryCareer      = "career"
	CategoryEngineering = "engineering"
	CategoryDesign      = "design"
	CategoryMarketing   = "marketing"
	CategoryFinance     = "finance"
	CategoryWellness    = "wellness"
	CategoryOther       = "other"
)

type Mentor struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	Name     string `gorm:"size:100;not null" json:"name"`
	Category string `gorm:"size:30;default:'other'" json:"category"`
	Tagline  string `gorm:"size:160" json:"tagline"`
	Bio      string `gorm:"type:text" json:"bio"`

	// prices in minor currency units
	AccessPriceCents int64  `json:"access_price_cents"`
	HourlyRateCents  int64  `json:"hourly_rate_cents"`
	OfferType        string `gorm:"size:10;default:'time'" json:"offer_type"`

	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int     `json:"rating_count"`

	IsTrusted             bool `gorm:"default:false" json:"is_trusted"`
	VerifiedBookingsCount int  `gorm:"default:0" json:"verified_bookings_count"`

	Flagged    bool   `gorm:"default:false" json:"flagged"`
	FlagReason string `gorm:"size:255" json:"flag_reason"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	StripeAccountID string `gorm:"size:64" json:"-"`
	Timezone        string `gorm:"size:60;default:'UTC'" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
