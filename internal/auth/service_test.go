package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/pkg/config"
	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/security"
)

type stubUserRepo struct {
	data      map[string]*models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubStoreRepo struct {
	store *models.Store
}

func (s *stubStoreRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	if s.store == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.store, nil
}

type stubSession struct {
	generated int
}

func (s *stubSession) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated++
	return "refresh-" + accessID, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-key-0123456789abcdef",
		Issuer:            "bazarly-test",
		ExpirationMinutes: 15,
	}
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, role enums.ActorRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Sam",
		LastName:     "Rivera",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	repo.data[email] = user
	return user
}

func newAuthSetup(t *testing.T) (*stubUserRepo, *stubStoreRepo, *stubSession, Service) {
	t.Helper()
	userRepo := &stubUserRepo{data: map[string]*models.User{}}
	storeRepo := &stubStoreRepo{}
	sess := &stubSession{}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		StoreRepo:      storeRepo,
		SessionManager: sess,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return userRepo, storeRepo, sess, svc
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	_, _, _, svc := newAuthSetup(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	userRepo, _, _, svc := newAuthSetup(t)
	seedUser(t, userRepo, "sam@example.com", "correct-horse", enums.ActorRoleClient)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "battery-staple"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	userRepo, _, _, svc := newAuthSetup(t)
	user := seedUser(t, userRepo, "sam@example.com", "correct-horse", enums.ActorRoleClient)
	user.IsActive = false

	_, err := svc.Login(context.Background(), LoginRequest{Email: "sam@example.com", Password: "correct-horse"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginClientIssuesTokens(t *testing.T) {
	userRepo, _, sess, svc := newAuthSetup(t)
	seedUser(t, userRepo, "sam@example.com", "correct-horse", enums.ActorRoleClient)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Sam@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected both tokens issued")
	}
	if resp.Store != nil {
		t.Fatalf("client login must not carry a store")
	}
	if sess.generated != 1 {
		t.Fatalf("expected one session generated, got %d", sess.generated)
	}
	if userRepo.lastLogin == nil {
		t.Fatalf("expected last login recorded")
	}
}

func TestLoginSellerIncludesStore(t *testing.T) {
	userRepo, storeRepo, _, svc := newAuthSetup(t)
	user := seedUser(t, userRepo, "seller@example.com", "correct-horse", enums.ActorRoleSeller)
	storeRepo.store = &models.Store{ID: uuid.New(), OwnerID: user.ID, Name: "Sam's Shop", IsVerified: true}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "seller@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Store == nil || resp.Store.ID != storeRepo.store.ID {
		t.Fatalf("expected store summary in response")
	}
	if !resp.Store.IsVerified {
		t.Fatalf("expected verification flag carried through")
	}
}

func TestLoginBlocksAdmins(t *testing.T) {
	userRepo, _, _, svc := newAuthSetup(t)
	seedUser(t, userRepo, "admin@example.com", "correct-horse", enums.ActorRoleAdmin)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "admin@example.com", Password: "correct-horse"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for admin on public login, got %v", err)
	}
}

func TestAdminLoginRequiresAdminRole(t *testing.T) {
	userRepo, _, _, svc := newAuthSetup(t)
	seedUser(t, userRepo, "seller@example.com", "correct-horse", enums.ActorRoleSeller)

	_, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "seller@example.com", Password: "correct-horse"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAdminLoginSucceeds(t *testing.T) {
	userRepo, _, _, svc := newAuthSetup(t)
	seedUser(t, userRepo, "admin@example.com", "correct-horse", enums.ActorRoleAdmin)

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "admin@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected both tokens issued")
	}
}
