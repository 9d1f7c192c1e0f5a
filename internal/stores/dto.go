package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
)

// StoreDTO is the transport shape for storefronts.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Email       *string   `json:"email,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`

	IsSponsored    bool             `json:"is_sponsored"`
	SponsorshipEnd *time.Time       `json:"sponsorship_end,omitempty"`
	Amount         *decimal.Decimal `json:"sponsorship_amount,omitempty"`

	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStoreDTO holds the data required by the repo to persist a new store.
type CreateStoreDTO struct {
	Name        string
	Description *string
	Phone       *string
	Email       *string
	LogoURL     *string
	OwnerID     uuid.UUID
}

func FromModel(s *models.Store) *StoreDTO {
	if s == nil {
		return nil
	}
	return &StoreDTO{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		Phone:          s.Phone,
		Email:          s.Email,
		LogoURL:        s.LogoURL,
		OwnerID:        s.OwnerID,
		IsSponsored:    s.IsSponsored,
		SponsorshipEnd: s.SponsorshipEnd,
		Amount:         s.SponsorshipAmount,
		IsVerified:     s.IsVerified,
		VerifiedAt:     s.VerifiedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (c CreateStoreDTO) ToModel() *models.Store {
	return &models.Store{
		Name:        c.Name,
		Description: c.Description,
		Phone:       c.Phone,
		Email:       c.Email,
		LogoURL:     c.LogoURL,
		OwnerID:     c.OwnerID,
	}
}
