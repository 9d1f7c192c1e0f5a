package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store represents a seller storefront. Sponsorship and verification fields
// are written only by approval side effects or passive expiry.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	Phone       *string   `gorm:"column:phone"`
	Email       *string   `gorm:"column:email"`
	LogoURL     *string   `gorm:"column:logo_url"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`

	IsSponsored          bool             `gorm:"column:is_sponsored;not null;default:false"`
	SponsorshipAmount    *decimal.Decimal `gorm:"column:sponsorship_amount;type:numeric(12,2)"`
	SponsorshipStartDate *time.Time       `gorm:"column:sponsorship_start_date"`
	SponsorshipEnd       *time.Time       `gorm:"column:sponsorship_end"`

	IsVerified bool       `gorm:"column:is_verified;not null;default:false"`
	VerifiedAt *time.Time `gorm:"column:verified_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SponsorshipExpired reports whether an active sponsorship has lapsed at now.
func (s *Store) SponsorshipExpired(now time.Time) bool {
	return s.IsSponsored && s.SponsorshipEnd != nil && s.SponsorshipEnd.Before(now)
}
