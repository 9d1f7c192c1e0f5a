package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/metrics"
	"github.com/aymanezz/bazarly-backend/pkg/outbox"
	"github.com/aymanezz/bazarly-backend/pkg/outbox/payloads"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

const (
	originManual = "manual"
	originAuto   = "auto"

	// reconcileBatchSize bounds the repair pass that runs before the admin
	// queue is listed.
	reconcileBatchSize = 100
)

type requestsRepository interface {
	CreateWithTx(tx *gorm.DB, dto CreateRequestDTO) (*models.Request, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Request, error)
	FindOpenReviewByProductTx(tx *gorm.DB, productID uuid.UUID) (*models.Request, error)
	CountOpen(ctx context.Context, q openQuery) (int64, error)
	DecideWithTx(tx *gorm.DB, id uuid.UUID, status enums.RequestStatus, rejectReason *string, approvedAt *time.Time) (int64, error)
	List(ctx context.Context, opts listQuery) ([]models.Request, error)
	ListPendingProductsWithoutOpenReview(ctx context.Context, limit int) ([]models.Product, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies who is calling a request operation.
type Actor struct {
	UserID  uuid.UUID
	StoreID *uuid.UUID
	Role    enums.ActorRole
}

// Service is the moderation ledger: sellers submit asks, the platform opens
// product reviews automatically, and admins resolve everything from one
// queue.
type Service interface {
	SubmitRequest(ctx context.Context, actor Actor, input SubmitRequestInput) (*models.Request, error)
	EnsureOpenReviewRequestTx(ctx context.Context, tx *gorm.DB, product *models.Product, senderID uuid.UUID) (*models.Request, error)
	EnsureForPendingProducts(ctx context.Context) (int, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error)
	GetOwnRequest(ctx context.Context, senderID, id uuid.UUID) (*models.Request, error)
	ListRequests(ctx context.Context, params AdminListParams) (*ListResult, error)
	ListOwnRequests(ctx context.Context, senderID uuid.UUID, params ListParams) (*ListResult, error)
	Decide(ctx context.Context, adminID, requestID uuid.UUID, input DecideInput) (*models.Request, error)
	DecideForProduct(ctx context.Context, adminID, productID uuid.UUID, input DecideInput) (*models.Request, error)
}

// SubmitRequestInput holds a manually submitted ask.
type SubmitRequestInput struct {
	Type         enums.RequestType
	Description  string
	Images       []string
	Amount       *decimal.Decimal
	DurationDays *int
	ProductID    *uuid.UUID
}

// DecideInput carries an admin verdict.
type DecideInput struct {
	Approve bool
	Reason  *string
}

// AdminListParams filters the moderation queue.
type AdminListParams struct {
	Status *enums.RequestStatus
	Type   *enums.RequestType
	pagination.Params
}

// ListParams pages a sender-scoped request listing.
type ListParams struct {
	Status *enums.RequestStatus
	pagination.Params
}

// ListResult wraps a request page with the next cursor.
type ListResult struct {
	Items  []RequestDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// ServiceParams bundles the requests service dependencies.
type ServiceParams struct {
	Repo     requestsRepository
	Users    userVerifier
	Stores   storeWriter
	Products productWriter
	Outbox   eventEmitter
	TxRunner txRunner
	Metrics  *metrics.ModerationMetrics
	Logger   *logger.Logger
}

type service struct {
	repo     requestsRepository
	stores   storeWriter
	products productWriter
	outbox   eventEmitter
	tx       txRunner
	effects  map[enums.RequestType]approvalEffect
	metrics  *metrics.ModerationMetrics
	logg     *logger.Logger
}

// NewService builds the requests service from the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if params.Users == nil || params.Stores == nil || params.Products == nil {
		return nil, fmt.Errorf("user, store, and product writers required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:     params.Repo,
		stores:   params.Stores,
		products: params.Products,
		outbox:   params.Outbox,
		tx:       params.TxRunner,
		effects:  buildEffects(params.Users, params.Stores, params.Products),
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) SubmitRequest(ctx context.Context, actor Actor, input SubmitRequestInput) (*models.Request, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender identity missing")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown request type")
	}
	if input.Type.IsProductReview() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product reviews are opened automatically")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}

	dto := CreateRequestDTO{
		Type:        input.Type,
		SenderID:    actor.UserID,
		Description: description,
		Images:      input.Images,
	}

	if input.Type.IsSponsorship() {
		if input.Amount == nil || !input.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
		}
		if input.DurationDays == nil || *input.DurationDays <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration must be positive")
		}
		dto.Amount = input.Amount
		dto.DurationDays = input.DurationDays
	}

	guard := openQuery{reqType: input.Type}
	switch input.Type {
	case enums.RequestTypeStoreSponsorship:
		if actor.StoreID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store sponsorship requires a store")
		}
		dto.StoreID = actor.StoreID
		guard.storeID = actor.StoreID
	case enums.RequestTypeProductSponsorship:
		if input.ProductID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product sponsorship requires a product")
		}
		if err := s.checkProductOwnership(ctx, *input.ProductID, actor); err != nil {
			return nil, err
		}
		dto.StoreID = actor.StoreID
		dto.ProductID = input.ProductID
		guard.productID = input.ProductID
	case enums.RequestTypeBlueBadge:
		if actor.StoreID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "blue badge verification requires a store")
		}
		dto.StoreID = actor.StoreID
		guard.storeID = actor.StoreID
	default:
		dto.StoreID = actor.StoreID
		guard.senderID = &actor.UserID
	}

	open, err := s.repo.CountOpen(ctx, guard)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open requests")
	}
	if open > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending request of this type already exists")
	}

	var request *models.Request
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		request, err = s.repo.CreateWithTx(tx, dto)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
		}
		return s.emitSubmitted(ctx, tx, request, &actor, originManual)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmitted(request.Type.String(), originManual)
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"request_id":   request.ID.String(),
			"request_type": request.Type.String(),
		}), "moderation request submitted")
	}
	return request, nil
}

// EnsureOpenReviewRequestTx opens a review request for a pending product
// unless one is already open. It runs inside the product write transaction so
// the status flip and the review commit together.
func (s *service) EnsureOpenReviewRequestTx(ctx context.Context, tx *gorm.DB, product *models.Product, senderID uuid.UUID) (*models.Request, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if product == nil || product.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product required")
	}

	existing, err := s.repo.FindOpenReviewByProductTx(tx, product.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup open review")
	}

	reqType := enums.RequestTypeNewProduct
	if product.EverModerated() {
		reqType = enums.RequestTypeProductApproval
	}

	request, err := s.repo.CreateWithTx(tx, CreateRequestDTO{
		Type:        reqType,
		SenderID:    senderID,
		StoreID:     &product.StoreID,
		ProductID:   &product.ID,
		Description: fmt.Sprintf("review requested for product %q", product.Name),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open review request")
	}

	if err := s.emitSubmittedIfAbsent(ctx, tx, request, originAuto); err != nil {
		return nil, err
	}
	s.metrics.IncSubmitted(reqType.String(), originAuto)
	return request, nil
}

// EnsureForPendingProducts repairs drift: any product left pending without an
// open review gets one. Each product runs in its own transaction so one
// failure does not block the rest.
func (s *service) EnsureForPendingProducts(ctx context.Context) (int, error) {
	products, err := s.repo.ListPendingProductsWithoutOpenReview(ctx, reconcileBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending products")
	}

	var repaired int
	var errs error
	for i := range products {
		product := products[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			store, err := s.stores.FindByIDWithTx(tx, product.StoreID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product store")
			}
			_, err = s.EnsureOpenReviewRequestTx(ctx, tx, &product, store.OwnerID)
			return err
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product %s: %w", product.ID, err))
			continue
		}
		repaired++
	}

	if repaired > 0 && s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "count", repaired), "reopened reviews for pending products")
	}
	return repaired, errs
}

func (s *service) GetRequest(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup request")
	}
	return request, nil
}

func (s *service) GetOwnRequest(ctx context.Context, senderID, id uuid.UUID) (*models.Request, error) {
	request, err := s.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.SenderID != senderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request belongs to another sender")
	}
	return request, nil
}

func (s *service) ListRequests(ctx context.Context, params AdminListParams) (*ListResult, error) {
	// Reconcile first so the queue the admin sees is complete. Repair
	// failures are logged but do not block the listing.
	if _, err := s.EnsureForPendingProducts(ctx); err != nil && s.logg != nil {
		s.logg.Error(ctx, "review reconcile failed", err)
	}

	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request type")
	}
	return s.list(ctx, listQuery{status: params.Status, reqType: params.Type}, params.Params)
}

func (s *service) ListOwnRequests(ctx context.Context, senderID uuid.UUID, params ListParams) (*ListResult, error) {
	if senderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender identity missing")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}
	return s.list(ctx, listQuery{status: params.Status, senderID: &senderID}, params.Params)
}

func (s *service) Decide(ctx context.Context, adminID, requestID uuid.UUID, input DecideInput) (*models.Request, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin identity missing")
	}
	request, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, adminID, request, input)
}

// DecideForProduct resolves a product's moderation directly. If the review
// request went missing it is reopened first, then decided, all in one
// transaction path.
func (s *service) DecideForProduct(ctx context.Context, adminID, productID uuid.UUID, input DecideInput) (*models.Request, error) {
	if adminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	var request *models.Request
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.FindByIDWithTx(tx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
		}
		if product.Status != enums.ProductStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "product is not awaiting review")
		}
		store, err := s.stores.FindByIDWithTx(tx, product.StoreID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product store")
		}
		request, err = s.EnsureOpenReviewRequestTx(ctx, tx, product, store.OwnerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, adminID, request, input)
}

func (s *service) decide(ctx context.Context, adminID uuid.UUID, request *models.Request, input DecideInput) (*models.Request, error) {
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
	}

	now := time.Now().UTC()
	status := enums.RequestStatusRejected
	var approvedAt *time.Time
	var reason *string

	if input.Approve {
		status = enums.RequestStatusApproved
		approvedAt = &now
	} else {
		if input.Reason == nil || strings.TrimSpace(*input.Reason) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
		}
		trimmed := strings.TrimSpace(*input.Reason)
		reason = &trimmed
	}

	var decided *models.Request
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.DecideWithTx(tx, request.ID, status, reason, approvedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record decision")
		}
		if affected == 0 {
			s.metrics.IncConflict()
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already decided")
		}

		decided, err = s.repo.FindByIDWithTx(tx, request.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload request")
		}

		if input.Approve {
			effect, ok := s.effects[decided.Type]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInternal, "no approval effect for request type")
			}
			if err := effect.Apply(tx, decided, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply approval effect")
			}
		} else if decided.Type.IsProductReview() && decided.ProductID != nil {
			if err := rejectProduct(tx, s.products, *decided.ProductID, *reason); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject product")
			}
		}

		return s.emitDecided(ctx, tx, decided, adminID, now)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncDecided(decided.Type.String(), decided.Status.String())
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"request_id":   decided.ID.String(),
			"request_type": decided.Type.String(),
			"decision":     decided.Status.String(),
		}), "moderation request decided")
	}
	return decided, nil
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}

	page := pagination.Trim(rows, params.Limit, func(m models.Request) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	items := make([]RequestDTO, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *FromModel(&page.Items[i]))
	}
	return &ListResult{Items: items, Cursor: page.NextCursor}, nil
}

func (s *service) checkProductOwnership(ctx context.Context, productID uuid.UUID, actor Actor) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup product")
	}
	if actor.StoreID == nil || product.StoreID != *actor.StoreID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}
	return nil
}

func (s *service) emitSubmitted(ctx context.Context, tx *gorm.DB, request *models.Request, actor *Actor, origin string) error {
	event := outbox.DomainEvent{
		EventType:     enums.OutboxEventRequestSubmitted,
		AggregateType: enums.OutboxAggregateRequest,
		AggregateID:   request.ID,
		Version:       1,
		Data: payloads.RequestSubmittedEvent{
			RequestID: request.ID,
			Type:      request.Type,
			SenderID:  request.SenderID,
			StoreID:   request.StoreID,
			ProductID: request.ProductID,
			Amount:    request.Amount,
			Origin:    origin,
		},
	}
	if actor != nil {
		event.Actor = &outbox.ActorRef{
			UserID:  actor.UserID,
			StoreID: actor.StoreID,
			Role:    actor.Role.String(),
		}
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit submitted event")
	}
	return nil
}

func (s *service) emitSubmittedIfAbsent(ctx context.Context, tx *gorm.DB, request *models.Request, origin string) error {
	event := outbox.DomainEvent{
		EventType:     enums.OutboxEventRequestSubmitted,
		AggregateType: enums.OutboxAggregateRequest,
		AggregateID:   request.ID,
		Version:       1,
		Data: payloads.RequestSubmittedEvent{
			RequestID: request.ID,
			Type:      request.Type,
			SenderID:  request.SenderID,
			StoreID:   request.StoreID,
			ProductID: request.ProductID,
			Origin:    origin,
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit submitted event")
	}
	return nil
}

func (s *service) emitDecided(ctx context.Context, tx *gorm.DB, request *models.Request, adminID uuid.UUID, decidedAt time.Time) error {
	event := outbox.DomainEvent{
		EventType:     enums.OutboxEventRequestDecided,
		AggregateType: enums.OutboxAggregateRequest,
		AggregateID:   request.ID,
		Version:       1,
		Actor: &outbox.ActorRef{
			UserID: adminID,
			Role:   enums.ActorRoleAdmin.String(),
		},
		Data: payloads.RequestDecidedEvent{
			RequestID:    request.ID,
			Type:         request.Type,
			Status:       request.Status,
			SenderID:     request.SenderID,
			StoreID:      request.StoreID,
			ProductID:    request.ProductID,
			RejectReason: request.RejectReason,
			DecidedAt:    decidedAt,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit decided event")
	}
	return nil
}
