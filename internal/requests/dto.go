package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
)

// RequestDTO is the transport shape for moderation requests.
type RequestDTO struct {
	ID        uuid.UUID         `json:"id"`
	Type      enums.RequestType `json:"type"`
	SenderID  uuid.UUID         `json:"sender_id"`
	StoreID   *uuid.UUID        `json:"store_id,omitempty"`
	ProductID *uuid.UUID        `json:"product_id,omitempty"`

	Amount       *decimal.Decimal `json:"amount,omitempty"`
	DurationDays *int             `json:"duration_days,omitempty"`
	Description  string           `json:"description"`
	Images       []string         `json:"images"`

	Status       enums.RequestStatus `json:"status"`
	RejectReason *string             `json:"reject_reason,omitempty"`
	ApprovedAt   *time.Time          `json:"approved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(r *models.Request) *RequestDTO {
	if r == nil {
		return nil
	}
	return &RequestDTO{
		ID:           r.ID,
		Type:         r.Type,
		SenderID:     r.SenderID,
		StoreID:      r.StoreID,
		ProductID:    r.ProductID,
		Amount:       r.Amount,
		DurationDays: r.DurationDays,
		Description:  r.Description,
		Images:       append([]string(nil), r.Images...),
		Status:       r.Status,
		RejectReason: r.RejectReason,
		ApprovedAt:   r.ApprovedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// CreateRequestDTO holds the data the repo needs to open a request.
type CreateRequestDTO struct {
	Type         enums.RequestType
	SenderID     uuid.UUID
	StoreID      *uuid.UUID
	ProductID    *uuid.UUID
	Amount       *decimal.Decimal
	DurationDays *int
	Description  string
	Images       []string
}

func (c CreateRequestDTO) ToModel() *models.Request {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return &models.Request{
		Type:         c.Type,
		SenderID:     c.SenderID,
		StoreID:      c.StoreID,
		ProductID:    c.ProductID,
		Amount:       c.Amount,
		DurationDays: c.DurationDays,
		Description:  c.Description,
		Images:       pq.StringArray(images),
		Status:       enums.RequestStatusPending,
	}
}
