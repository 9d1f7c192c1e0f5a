package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listQuery struct {
	storeID    *uuid.UUID
	status     *enums.ProductStatus
	categoryID *uuid.UUID
	brandID    *uuid.UUID
	cursor     *pagination.Cursor
	limit      int
}

// CreateWithTx inserts a product row using the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateProductDTO) (*models.Product, error) {
	product := dto.ToModel()
	if err := tx.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDWithTx loads a product using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Update persists the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// UpdateWithTx persists the product using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, product *models.Product) error {
	return tx.Save(product).Error
}

// Delete removes a product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// List returns products using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if opts.storeID != nil {
		query = query.Where("store_id = ?", *opts.storeID)
	}
	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.categoryID != nil {
		query = query.Where("category_id = ?", *opts.categoryID)
	}
	if opts.brandID != nil {
		query = query.Where("brand_id = ?", *opts.brandID)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
