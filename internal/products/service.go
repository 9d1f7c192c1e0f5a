package products

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

type productsRepository interface {
	CreateWithTx(tx *gorm.DB, dto CreateProductDTO) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, opts listQuery) ([]models.Product, error)
}

type storeFinder interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

// reviewSubmitter opens a moderation review for a product inside the caller's
// transaction. Implemented by the requests service and wired at boot.
type reviewSubmitter interface {
	EnsureOpenReviewRequestTx(ctx context.Context, tx *gorm.DB, product *models.Product, senderID uuid.UUID) (*models.Request, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes seller listing management and the public catalog surface.
// Every seller write forces the product back to pending and opens a review.
type Service interface {
	CreateProduct(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetApprovedProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetOwnProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error)
	DeleteProduct(ctx context.Context, ownerID, productID uuid.UUID) error
	ListOwnProducts(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error)
	ListApproved(ctx context.Context, params BrowseParams) (*ListResult, error)
	ListByStatus(ctx context.Context, status enums.ProductStatus, params ListParams) (*ListResult, error)
}

// CreateProductInput holds the seller-supplied listing fields.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Quantity    int
	Images      []string
	BrandID     *uuid.UUID
	CategoryID  *uuid.UUID
}

// UpdateProductInput carries the mutable listing fields.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Images      []string
	BrandID     *uuid.UUID
	CategoryID  *uuid.UUID
}

// ListParams pages a status- or store-scoped product listing.
type ListParams struct {
	pagination.Params
}

// BrowseParams filters the public catalog.
type BrowseParams struct {
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	pagination.Params
}

// ListResult wraps a product page with the next cursor.
type ListResult struct {
	Items  []ProductDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// ServiceParams bundles the products service dependencies.
type ServiceParams struct {
	Repo     productsRepository
	Stores   storeFinder
	Reviews  reviewSubmitter
	TxRunner txRunner
	Logger   *logger.Logger
}

type service struct {
	repo    productsRepository
	stores  storeFinder
	reviews reviewSubmitter
	tx      txRunner
	logg    *logger.Logger
}

// NewService builds a products service from the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store finder required")
	}
	if params.Reviews == nil {
		return nil, fmt.Errorf("review submitter required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:    params.Repo,
		stores:  params.Stores,
		reviews: params.Reviews,
		tx:      params.TxRunner,
		logg:    params.Logger,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller has no store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller store")
	}

	var product *models.Product
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err = s.repo.CreateWithTx(tx, CreateProductDTO{
			StoreID:     store.ID,
			Name:        name,
			Description: input.Description,
			Price:       input.Price,
			Quantity:    input.Quantity,
			Images:      input.Images,
			BrandID:     input.BrandID,
			CategoryID:  input.CategoryID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if _, err := s.reviews.EnsureOpenReviewRequestTx(ctx, tx, product, ownerID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"product_id": product.ID.String(),
			"store_id":   store.ID.String(),
		}), "product created, review opened")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller store")
	}
	if product.StoreID != store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		product.Price = *input.Price
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		product.Quantity = *input.Quantity
	}
	if input.Images != nil {
		product.Images = pq.StringArray(input.Images)
	}
	if input.BrandID != nil {
		product.BrandID = input.BrandID
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}

	// Any seller edit invalidates the previous decision. The status flip and
	// the new review request commit together or not at all.
	product.Status = enums.ProductStatusPending

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		if _, err := s.reviews.EnsureOpenReviewRequestTx(ctx, tx, product, ownerID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}
	return s.expireSponsorshipIfNeeded(ctx, product), nil
}

func (s *service) GetApprovedProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Status != enums.ProductStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// GetOwnProduct lets a seller inspect their own listing in any status,
// including a pending or rejected one the public catalog hides.
func (s *service) GetOwnProduct(ctx context.Context, ownerID, id uuid.UUID) (*models.Product, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller store")
	}
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.StoreID != store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}
	return product, nil
}

// DeleteProduct removes a seller's own listing. Moderation history for the
// product stays in the request ledger.
func (s *service) DeleteProduct(ctx context.Context, ownerID, productID uuid.UUID) error {
	product, err := s.GetOwnProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListOwnProducts(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup seller store")
	}
	return s.list(ctx, listQuery{storeID: &store.ID}, params.Params)
}

func (s *service) ListApproved(ctx context.Context, params BrowseParams) (*ListResult, error) {
	approved := enums.ProductStatusApproved
	return s.list(ctx, listQuery{
		status:     &approved,
		categoryID: params.CategoryID,
		brandID:    params.BrandID,
	}, params.Params)
}

func (s *service) ListByStatus(ctx context.Context, status enums.ProductStatus, params ListParams) (*ListResult, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	return s.list(ctx, listQuery{status: &status}, params.Params)
}

func (s *service) list(ctx context.Context, opts listQuery, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	opts.cursor = cursor
	opts.limit = pagination.LimitWithBuffer(params.Limit)

	rows, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := pagination.Trim(rows, params.Limit, func(m models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	items := make([]ProductDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *FromModel(&page.Items[i]))
	}
	return &ListResult{Items: items, Cursor: page.NextCursor}, nil
}

// expireSponsorshipIfNeeded clears lapsed sponsorship flags before the row is
// handed out. The write is best effort; the caller still sees cleared flags.
func (s *service) expireSponsorshipIfNeeded(ctx context.Context, product *models.Product) *models.Product {
	if !product.SponsorshipExpired(time.Now().UTC()) {
		return product
	}
	product.IsSponsored = false
	product.SponsorshipAmount = nil
	product.SponsorshipStartDate = nil
	product.SponsorshipEnd = nil
	if err := s.repo.Update(ctx, product); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"product_id": product.ID.String(),
		}), "failed to persist sponsorship expiry")
	}
	return product
}
