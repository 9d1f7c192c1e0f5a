package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/aymanezz/bazarly-backend/pkg/pagination"
)

func setupRequestsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	requests := `
CREATE TABLE IF NOT EXISTS requests (
  id TEXT PRIMARY KEY,
  type TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  store_id TEXT,
  product_id TEXT,
  amount TEXT,
  duration_days INTEGER,
  description TEXT NOT NULL,
  images TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'pending',
  reject_reason TEXT,
  approved_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  images TEXT NOT NULL DEFAULT '{}',
  brand_id TEXT,
  category_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  rejection_reason TEXT,
  approved_at DATETIME,
  is_sponsored INTEGER NOT NULL DEFAULT 0,
  sponsorship_amount TEXT,
  sponsorship_start_date DATETIME,
  sponsorship_end DATETIME,
  billboard TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(requests).Error)
	require.NoError(t, db.Exec(products).Error)
	return db
}

func createRequest(t *testing.T, db *gorm.DB, reqType enums.RequestType, status enums.RequestStatus, productID *uuid.UUID, created time.Time) *models.Request {
	t.Helper()

	request := &models.Request{
		ID:          uuid.New(),
		Type:        reqType,
		SenderID:    uuid.New(),
		ProductID:   productID,
		Description: "test request",
		Images:      pq.StringArray{},
		Status:      status,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(request).Error)
	return request
}

func createPendingProduct(t *testing.T, db *gorm.DB, name string) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:      uuid.New(),
		StoreID: uuid.New(),
		Name:    name,
		Price:   decimal.NewFromInt(10),
		Images:  pq.StringArray{},
		Status:  enums.ProductStatusPending,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestDecideWithTxOnlyFlipsPendingOnce(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	request := createRequest(t, db, enums.RequestTypeBlueBadge, enums.RequestStatusPending, nil, time.Now().UTC())

	now := time.Now().UTC()
	affected, err := repo.DecideWithTx(db, request.ID, enums.RequestStatusApproved, nil, &now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// The row is terminal now; a second verdict must not land.
	reason := "changed my mind"
	affected, err = repo.DecideWithTx(db, request.ID, enums.RequestStatusRejected, &reason, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	reloaded, err := repo.FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RequestStatusApproved, reloaded.Status)
	assert.Nil(t, reloaded.RejectReason)
}

func TestFindOpenReviewByProductTxIgnoresTerminalRows(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	productID := uuid.New()
	createRequest(t, db, enums.RequestTypeNewProduct, enums.RequestStatusRejected, &productID, time.Now().UTC().Add(-time.Hour))

	_, err := repo.FindOpenReviewByProductTx(db, productID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	open := createRequest(t, db, enums.RequestTypeProductApproval, enums.RequestStatusPending, &productID, time.Now().UTC())

	found, err := repo.FindOpenReviewByProductTx(db, productID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, found.ID)
}

func TestCountOpenScopesByTarget(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	productID := uuid.New()
	otherProduct := uuid.New()
	createRequest(t, db, enums.RequestTypeProductSponsorship, enums.RequestStatusPending, &productID, time.Now().UTC())
	createRequest(t, db, enums.RequestTypeProductSponsorship, enums.RequestStatusRejected, &productID, time.Now().UTC())

	count, err := repo.CountOpen(context.Background(), openQuery{
		reqType:   enums.RequestTypeProductSponsorship,
		productID: &productID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountOpen(context.Background(), openQuery{
		reqType:   enums.RequestTypeProductSponsorship,
		productID: &otherProduct,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListFiltersAndPages(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		createRequest(t, db, enums.RequestTypeBlueBadge, enums.RequestStatusPending, nil, base.Add(time.Duration(i)*time.Minute))
	}
	createRequest(t, db, enums.RequestTypeUserComplaint, enums.RequestStatusApproved, nil, base.Add(10*time.Minute))

	pending := enums.RequestStatusPending
	rows, err := repo.List(context.Background(), listQuery{status: &pending, limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Newest first, then walk backwards through the cursor.
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	cursor := &pagination.Cursor{CreatedAt: rows[0].CreatedAt, ID: rows[0].ID}
	next, err := repo.List(context.Background(), listQuery{status: &pending, cursor: cursor, limit: 10})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, rows[1].ID, next[0].ID)
}

func TestListPendingProductsWithoutOpenReview(t *testing.T) {
	db := setupRequestsTestDB(t)
	repo := NewRepository(db)

	orphaned := createPendingProduct(t, db, "orphaned")
	covered := createPendingProduct(t, db, "covered")
	createRequest(t, db, enums.RequestTypeNewProduct, enums.RequestStatusPending, &covered.ID, time.Now().UTC())

	rejectedReview := createPendingProduct(t, db, "only terminal review")
	createRequest(t, db, enums.RequestTypeNewProduct, enums.RequestStatusRejected, &rejectedReview.ID, time.Now().UTC())

	approved := createPendingProduct(t, db, "approved")
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", approved.ID).Update("status", enums.ProductStatusApproved).Error)

	rows, err := repo.ListPendingProductsWithoutOpenReview(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	ids := []uuid.UUID{rows[0].ID, rows[1].ID}
	assert.Contains(t, ids, orphaned.ID)
	assert.Contains(t, ids, rejectedReview.ID)
}
