package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aymanezz/bazarly-backend/internal/users"
	"github.com/aymanezz/bazarly-backend/pkg/config"
	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	pkgerrors "github.com/aymanezz/bazarly-backend/pkg/errors"
	"github.com/aymanezz/bazarly-backend/pkg/security"
)

type stubRegisterTx struct{}

func (s stubRegisterTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRegisterUserRepo struct {
	data    map[string]*models.User
	created *models.User
}

func (s *stubRegisterUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.data[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRegisterUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	s.data[dto.Email] = user
	s.created = user
	return user, nil
}

func newRegisterSetup(t *testing.T) (*stubRegisterUserRepo, RegisterService) {
	t.Helper()
	repo := &stubRegisterUserRepo{data: map[string]*models.User{}}
	svc, err := NewRegisterService(RegisterServiceParams{
		TxRunner: stubRegisterTx{},
		UserRepoFactory: func(tx *gorm.DB) registerUserRepository {
			return repo
		},
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return repo, svc
}

func sampleRegisterRequest(email string, role enums.ActorRole) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123!",
		Role:      role,
	}
}

func TestRegisterCreatesClient(t *testing.T) {
	repo, svc := newRegisterSetup(t)

	created, err := svc.Register(context.Background(), sampleRegisterRequest("New@Example.com", enums.ActorRoleClient))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if repo.created == nil {
		t.Fatalf("expected user to be created")
	}
	if repo.created.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %q", repo.created.Email)
	}
	if created.Role != enums.ActorRoleClient {
		t.Fatalf("expected client role, got %s", created.Role)
	}

	valid, err := security.VerifyPassword("Secret123!", repo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("stored hash must verify the original password")
	}
}

func TestRegisterCreatesSeller(t *testing.T) {
	repo, svc := newRegisterSetup(t)

	created, err := svc.Register(context.Background(), sampleRegisterRequest("seller@example.com", enums.ActorRoleSeller))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Role != enums.ActorRoleSeller {
		t.Fatalf("expected seller role, got %s", created.Role)
	}
	if repo.created.Role != enums.ActorRoleSeller {
		t.Fatalf("expected seller persisted")
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	_, svc := newRegisterSetup(t)

	_, err := svc.Register(context.Background(), sampleRegisterRequest("admin@example.com", enums.ActorRoleAdmin))
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo, svc := newRegisterSetup(t)
	repo.data["taken@example.com"] = &models.User{ID: uuid.New(), Email: "taken@example.com"}

	_, err := svc.Register(context.Background(), sampleRegisterRequest("taken@example.com", enums.ActorRoleClient))
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	_, svc := newRegisterSetup(t)

	req := sampleRegisterRequest("short@example.com", enums.ActorRoleClient)
	req.Password = "short"
	_, err := svc.Register(context.Background(), req)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
