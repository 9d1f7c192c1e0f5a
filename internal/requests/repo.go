package requests

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

// productReviewTypes are the request types opened automatically when a
// product enters the pending state.
var productReviewTypes = []enums.RequestType{
	enums.RequestTypeNewProduct,
	enums.RequestTypeProductApproval,
}

// Repository exposes moderation request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a requests repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	status   *enums.RequestStatus
	reqType  *enums.RequestType
	senderID *uuid.UUID
	cursor   *pagination.Cursor
	limit    int
}

// openQuery scopes the duplicate pending guard. Exactly one of the target
// fields is set depending on the request type.
type openQuery struct {
	reqType   enums.RequestType
	senderID  *uuid.UUID
	storeID   *uuid.UUID
	productID *uuid.UUID
}

// CreateWithTx inserts a request row using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateRequestDTO) (*models.Request, error) {
	request := dto.ToModel()
	if err := tx.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// FindByID loads a request by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByIDWithTx loads a request using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Request, error) {
	var request models.Request
	if err := tx.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindOpenReviewByProductTx returns the pending review request for a product,
// if one exists, using the provided transaction.
func (r *Repository) FindOpenReviewByProductTx(tx *gorm.DB, productID uuid.UUID) (*models.Request, error) {
	var request models.Request
	err := tx.
		Where("product_id = ?", productID).
		Where("type IN ?", productReviewTypes).
		Where("status = ?", enums.RequestStatusPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CountOpen counts pending requests matching the guard scope.
func (r *Repository) CountOpen(ctx context.Context, q openQuery) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{}).
		Where("type = ?", q.reqType).
		Where("status = ?", enums.RequestStatusPending)

	if q.senderID != nil {
		query = query.Where("sender_id = ?", *q.senderID)
	}
	if q.storeID != nil {
		query = query.Where("store_id = ?", *q.storeID)
	}
	if q.productID != nil {
		query = query.Where("product_id = ?", *q.productID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DecideWithTx atomically moves a pending request into a terminal status.
// The WHERE clause on the current status makes concurrent decisions race
// safely: only one UPDATE reports an affected row.
func (r *Repository) DecideWithTx(tx *gorm.DB, id uuid.UUID, status enums.RequestStatus, rejectReason *string, approvedAt *time.Time) (int64, error) {
	result := tx.Model(&models.Request{}).
		Where("id = ?", id).
		Where("status = ?", enums.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"reject_reason": rejectReason,
			"approved_at":   approvedAt,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// List returns requests using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Request, error) {
	query := r.db.WithContext(ctx).Model(&models.Request{})

	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.reqType != nil {
		query = query.Where("type = ?", *opts.reqType)
	}
	if opts.senderID != nil {
		query = query.Where("sender_id = ?", *opts.senderID)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Request
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingProductsWithoutOpenReview finds products stuck in the pending
// state with no pending review request, so the reconciler can reopen them.
func (r *Repository) ListPendingProductsWithoutOpenReview(ctx context.Context, limit int) ([]models.Product, error) {
	subquery := r.db.Model(&models.Request{}).
		Select("product_id").
		Where("type IN ?", productReviewTypes).
		Where("status = ?", enums.RequestStatusPending).
		Where("product_id IS NOT NULL")

	var rows []models.Product
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ?", enums.ProductStatusPending).
		Where("id NOT IN (?)", subquery).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
