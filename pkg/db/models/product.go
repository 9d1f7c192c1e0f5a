package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/pkg/enums"
)

// Product represents a seller listing. Status tracks moderation: every seller
// write forces it back to pending until an admin decides.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	Images      pq.StringArray  `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	BrandID     *uuid.UUID      `gorm:"column:brand_id;type:uuid"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`

	Status          enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'pending'"`
	RejectionReason *string             `gorm:"column:rejection_reason"`
	ApprovedAt      *time.Time          `gorm:"column:approved_at"`

	IsSponsored          bool             `gorm:"column:is_sponsored;not null;default:false"`
	SponsorshipAmount    *decimal.Decimal `gorm:"column:sponsorship_amount;type:numeric(12,2)"`
	SponsorshipStartDate *time.Time       `gorm:"column:sponsorship_start_date"`
	SponsorshipEnd       *time.Time       `gorm:"column:sponsorship_end"`
	Billboard            *string          `gorm:"column:billboard"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// SponsorshipExpired reports whether an active sponsorship has lapsed at now.
func (p *Product) SponsorshipExpired(now time.Time) bool {
	return p.IsSponsored && p.SponsorshipEnd != nil && p.SponsorshipEnd.Before(now)
}

// EverModerated reports whether the product has been through a decision
// before, which distinguishes a resubmission from a first submission.
func (p *Product) EverModerated() bool {
	return p.ApprovedAt != nil || p.RejectionReason != nil
}
