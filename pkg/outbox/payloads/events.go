package payloads

import (
	"time"

	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestSubmittedEvent signals that a moderation request entered the queue.
type RequestSubmittedEvent struct {
	RequestID uuid.UUID         `json:"request_id"`
	Type      enums.RequestType `json:"type"`
	SenderID  uuid.UUID         `json:"sender_id"`
	StoreID   *uuid.UUID        `json:"store_id,omitempty"`
	ProductID *uuid.UUID        `json:"product_id,omitempty"`
	Amount    *decimal.Decimal  `json:"amount,omitempty"`
	Origin    string            `json:"origin"`
}

// RequestDecidedEvent is emitted when an admin resolves a request.
type RequestDecidedEvent struct {
	RequestID    uuid.UUID           `json:"request_id"`
	Type         enums.RequestType   `json:"type"`
	Status       enums.RequestStatus `json:"status"`
	SenderID     uuid.UUID           `json:"sender_id"`
	StoreID      *uuid.UUID          `json:"store_id,omitempty"`
	ProductID    *uuid.UUID          `json:"product_id,omitempty"`
	RejectReason *string             `json:"reject_reason,omitempty"`
	DecidedAt    time.Time           `json:"decided_at"`
}
