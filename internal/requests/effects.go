package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
)

// approvalEffect applies the domain change an approval carries, inside the
// same transaction that flipped the request status.
type approvalEffect interface {
	Apply(tx *gorm.DB, request *models.Request, now time.Time) error
}

type userVerifier interface {
	MarkVerifiedWithTx(tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type storeWriter interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Store, error)
	UpdateWithTx(tx *gorm.DB, store *models.Store) error
}

type productWriter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	UpdateWithTx(tx *gorm.DB, product *models.Product) error
}

func buildEffects(users userVerifier, stores storeWriter, products productWriter) map[enums.RequestType]approvalEffect {
	review := &productReviewEffect{products: products}
	return map[enums.RequestType]approvalEffect{
		enums.RequestTypeStoreSponsorship:   &storeSponsorshipEffect{stores: stores},
		enums.RequestTypeProductSponsorship: &productSponsorshipEffect{products: products},
		enums.RequestTypeBlueBadge:          &blueBadgeEffect{users: users, stores: stores},
		enums.RequestTypeUserComplaint:      &userComplaintEffect{},
		enums.RequestTypeNewProduct:         review,
		enums.RequestTypeProductApproval:    review,
	}
}

// sponsorshipWindow anchors the paid period at approval time, not at
// submission time, so sellers get the full duration they paid for.
func sponsorshipWindow(request *models.Request, now time.Time) (start time.Time, end time.Time, amount *decimal.Decimal, err error) {
	if request.Amount == nil || request.DurationDays == nil {
		return time.Time{}, time.Time{}, nil, pkgerrors.New(pkgerrors.CodeInternal, "sponsorship request missing amount or duration")
	}
	start = now
	end = now.AddDate(0, 0, *request.DurationDays)
	return start, end, request.Amount, nil
}

type storeSponsorshipEffect struct {
	stores storeWriter
}

func (e *storeSponsorshipEffect) Apply(tx *gorm.DB, request *models.Request, now time.Time) error {
	if request.StoreID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "store sponsorship request missing store")
	}
	start, end, amount, err := sponsorshipWindow(request, now)
	if err != nil {
		return err
	}
	store, err := e.stores.FindByIDWithTx(tx, *request.StoreID)
	if err != nil {
		return fmt.Errorf("load store for sponsorship: %w", err)
	}
	store.IsSponsored = true
	store.SponsorshipAmount = amount
	store.SponsorshipStartDate = &start
	store.SponsorshipEnd = &end
	return e.stores.UpdateWithTx(tx, store)
}

type productSponsorshipEffect struct {
	products productWriter
}

func (e *productSponsorshipEffect) Apply(tx *gorm.DB, request *models.Request, now time.Time) error {
	if request.ProductID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "product sponsorship request missing product")
	}
	start, end, amount, err := sponsorshipWindow(request, now)
	if err != nil {
		return err
	}
	product, err := e.products.FindByIDWithTx(tx, *request.ProductID)
	if err != nil {
		return fmt.Errorf("load product for sponsorship: %w", err)
	}
	product.IsSponsored = true
	product.SponsorshipAmount = amount
	product.SponsorshipStartDate = &start
	product.SponsorshipEnd = &end
	if len(request.Images) > 0 {
		billboard := request.Images[0]
		product.Billboard = &billboard
	}
	return e.products.UpdateWithTx(tx, product)
}

// blueBadgeEffect verifies the store and its owning user together, so a
// verified badge never shows on one without the other.
type blueBadgeEffect struct {
	users  userVerifier
	stores storeWriter
}

func (e *blueBadgeEffect) Apply(tx *gorm.DB, request *models.Request, now time.Time) error {
	if request.StoreID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "blue badge request missing store")
	}
	store, err := e.stores.FindByIDWithTx(tx, *request.StoreID)
	if err != nil {
		return fmt.Errorf("load store for verification: %w", err)
	}
	store.IsVerified = true
	store.VerifiedAt = &now
	if err := e.stores.UpdateWithTx(tx, store); err != nil {
		return err
	}
	return e.users.MarkVerifiedWithTx(tx, store.OwnerID, now)
}

// userComplaintEffect records the decision only; the ledger row is the
// outcome.
type userComplaintEffect struct{}

func (e *userComplaintEffect) Apply(tx *gorm.DB, request *models.Request, now time.Time) error {
	return nil
}

type productReviewEffect struct {
	products productWriter
}

func (e *productReviewEffect) Apply(tx *gorm.DB, request *models.Request, now time.Time) error {
	if request.ProductID == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "product review request missing product")
	}
	product, err := e.products.FindByIDWithTx(tx, *request.ProductID)
	if err != nil {
		return fmt.Errorf("load product for review decision: %w", err)
	}
	product.Status = enums.ProductStatusApproved
	product.ApprovedAt = &now
	product.RejectionReason = nil
	return e.products.UpdateWithTx(tx, product)
}

// rejectProduct marks the product rejected with the admin's reason. Only
// review type requests carry this rejection side effect.
func rejectProduct(tx *gorm.DB, products productWriter, productID uuid.UUID, reason string) error {
	product, err := products.FindByIDWithTx(tx, productID)
	if err != nil {
		return fmt.Errorf("load product for rejection: %w", err)
	}
	product.Status = enums.ProductStatusRejected
	product.RejectionReason = &reason
	return products.UpdateWithTx(tx, product)
}
