package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/aymanezz/bazarly-backend/pkg/db"
	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

type storesRepository interface {
	Create(ctx context.Context, dto CreateStoreDTO) (*models.Store, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	List(ctx context.Context, opts listQuery) ([]models.Store, error)
}

// Service exposes storefront creation, lookup, and listing semantics.
type Service interface {
	CreateStore(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*models.Store, error)
	GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error)
	GetOwnStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
	UpdateStore(ctx context.Context, ownerID, storeID uuid.UUID, input UpdateStoreInput) (*models.Store, error)
	ListStores(ctx context.Context, params ListParams) (*ListResult, error)
}

// CreateStoreInput holds the seller-supplied storefront fields.
type CreateStoreInput struct {
	Name        string
	Description *string
	Phone       *string
	Email       *string
	LogoURL     *string
}

// UpdateStoreInput carries the mutable storefront fields.
type UpdateStoreInput struct {
	Name        *string
	Description *string
	Phone       *string
	Email       *string
	LogoURL     *string
}

// ListParams filters the public store listing.
type ListParams struct {
	OnlySponsored bool
	pagination.Params
}

// ListResult wraps a store page with the next cursor.
type ListResult struct {
	Items  []StoreDTO `json:"items"`
	Cursor string     `json:"cursor"`
}

type service struct {
	repo storesRepository
	logg *logger.Logger
}

// NewService builds a stores service backed by the provided repository.
func NewService(repo storesRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stores repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) CreateStore(ctx context.Context, ownerID uuid.UUID, input CreateStoreInput) (*models.Store, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "owner already has a store")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing store")
	}

	store, err := s.repo.Create(ctx, CreateStoreDTO{
		Name:        name,
		Description: input.Description,
		Phone:       input.Phone,
		Email:       input.Email,
		LogoURL:     input.LogoURL,
		OwnerID:     ownerID,
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return store, nil
}

func (s *service) GetStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup store")
	}
	return s.expireSponsorshipIfNeeded(ctx, store), nil
}

func (s *service) GetOwnStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	store, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup store")
	}
	return s.expireSponsorshipIfNeeded(ctx, store), nil
}

func (s *service) UpdateStore(ctx context.Context, ownerID, storeID uuid.UUID, input UpdateStoreInput) (*models.Store, error) {
	store, err := s.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store belongs to another owner")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		store.Name = name
	}
	if input.Description != nil {
		store.Description = input.Description
	}
	if input.Phone != nil {
		store.Phone = input.Phone
	}
	if input.Email != nil {
		store.Email = input.Email
	}
	if input.LogoURL != nil {
		store.LogoURL = input.LogoURL
	}

	if err := s.repo.Update(ctx, store); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store name already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return store, nil
}

func (s *service) ListStores(ctx context.Context, params ListParams) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, listQuery{
		onlySponsored: params.OnlySponsored,
		cursor:        cursor,
		limit:         pagination.LimitWithBuffer(params.Limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	page := pagination.Trim(rows, params.Limit, func(m models.Store) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	items := make([]StoreDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *FromModel(&page.Items[i]))
	}
	return &ListResult{Items: items, Cursor: page.NextCursor}, nil
}

// expireSponsorshipIfNeeded clears lapsed sponsorship flags before the row is
// handed out. The write is best effort; the caller still sees cleared flags.
func (s *service) expireSponsorshipIfNeeded(ctx context.Context, store *models.Store) *models.Store {
	if !store.SponsorshipExpired(time.Now().UTC()) {
		return store
	}
	store.IsSponsored = false
	store.SponsorshipAmount = nil
	store.SponsorshipStartDate = nil
	store.SponsorshipEnd = nil
	if err := s.repo.Update(ctx, store); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithStoreID(ctx, store.ID.String()), "failed to persist sponsorship expiry")
	}
	return store
}
