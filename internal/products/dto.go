package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
)

// ProductDTO is the transport shape for listings.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"store_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Images      []string        `json:"images"`
	BrandID     *uuid.UUID      `json:"brand_id,omitempty"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`

	Status          enums.ProductStatus `json:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time          `json:"approved_at,omitempty"`

	IsSponsored    bool       `json:"is_sponsored"`
	SponsorshipEnd *time.Time `json:"sponsorship_end,omitempty"`
	Billboard      *string    `json:"billboard,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:              p.ID,
		StoreID:         p.StoreID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Quantity:        p.Quantity,
		Images:          append([]string(nil), p.Images...),
		BrandID:         p.BrandID,
		CategoryID:      p.CategoryID,
		Status:          p.Status,
		RejectionReason: p.RejectionReason,
		ApprovedAt:      p.ApprovedAt,
		IsSponsored:     p.IsSponsored,
		SponsorshipEnd:  p.SponsorshipEnd,
		Billboard:       p.Billboard,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// CreateProductDTO holds the data required by the repo to persist a listing.
type CreateProductDTO struct {
	StoreID     uuid.UUID
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int
	Images      []string
	BrandID     *uuid.UUID
	CategoryID  *uuid.UUID
}

func (c CreateProductDTO) ToModel() *models.Product {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return &models.Product{
		StoreID:     c.StoreID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Quantity:    c.Quantity,
		Images:      pq.StringArray(images),
		BrandID:     c.BrandID,
		CategoryID:  c.CategoryID,
		Status:      enums.ProductStatusPending,
	}
}
