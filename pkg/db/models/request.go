package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/aymanezz/bazarly-backend/pkg/enums"
)

// Request is a moderation ledger entry: one seller-initiated ask routed
// through the pending/approved/rejected machine. Terminal rows are retained
// for audit; uniqueness checks filter on status explicitly.
type Request struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.RequestType `gorm:"column:type;type:request_type;not null"`
	SenderID  uuid.UUID         `gorm:"column:sender_id;type:uuid;not null"`
	StoreID   *uuid.UUID        `gorm:"column:store_id;type:uuid"`
	ProductID *uuid.UUID        `gorm:"column:product_id;type:uuid"`

	Amount       *decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	DurationDays *int             `gorm:"column:duration_days"`
	Description  string           `gorm:"column:description;not null"`
	Images       pq.StringArray   `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`

	Status       enums.RequestStatus `gorm:"column:status;type:request_status;not null;default:'pending'"`
	RejectReason *string             `gorm:"column:reject_reason"`
	ApprovedAt   *time.Time          `gorm:"column:approved_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
