package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/wtfunko/backend/internal/apperror"
	"github.com/wtfunko/backend/internal/auth"
	"github.com/wtfunko/backend/internal/model"
)

// mockUserRepo implements repository.UserRepository in memory. The store's
// unique constraints are simulated by checking both username and ID maps on
// Create, so the conflict-disambiguation path in Signup is exercisable.
type mockUserRepo struct {
	byUsername map[string]*model.User
	byID       map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byUsername: make(map[string]*model.User),
		byID:       make(map[string]*model.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, taken := m.byUsername[user.Username]; taken {
		return apperror.Conflict("user", user.Username)
	}
	if _, taken := m.byID[user.ID]; taken {
		return apperror.Conflict("user", user.ID)
	}
	stored := *user
	m.byUsername[user.Username] = &stored
	m.byID[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Exists(_ context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := m.byUsername[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	if user, ok := m.byUsername[username]; ok {
		result := *user
		return &result, nil
	}
	for _, user := range m.byUsername {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.byUsername[user.Username]
	if !ok {
		return apperror.NotFound("user", user.Username)
	}
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, username string) error {
	user, ok := m.byUsername[username]
	if !ok {
		return apperror.NotFound("user", username)
	}
	delete(m.byUsername, username)
	delete(m.byID, user.ID)
	return nil
}

func (m *mockUserRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.byUsername))
	m.byUsername = make(map[string]*model.User)
	m.byID = make(map[string]*model.User)
	return n, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestUserService(t *testing.T, repo *mockUserRepo) *UserService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return NewUserService(repo, auth.NewPasswordServiceWithCost(4), tokens, testLogger())
}

func TestSignup(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)

	result, err := svc.Signup(context.Background(), "johndoe", "john@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if result.Token == "" {
		t.Error("Signup() did not issue a token")
	}
	if result.User.Username != "johndoe" {
		t.Errorf("Username = %q, want %q", result.User.Username, "johndoe")
	}
	if len(result.User.ID) != 6 {
		t.Errorf("ID = %q, want a 6-digit identifier", result.User.ID)
	}
	if result.User.PasswordHash == "hunter22" || result.User.PasswordHash == "" {
		t.Error("Signup() stored the password without hashing it")
	}
}

func TestSignup_UsernameTaken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "johndoe", "john@example.com", "hunter22"); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "johndoe", "other@example.com", "password")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second Signup() error = %v, want ErrConflict", err)
	}
}

func TestSignup_RetriesOnIDCollision(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)

	// Occupy one ID up front. Generation is random, so a collision is
	// unlikely here; what matters is that occupied IDs never make a fresh
	// username fail to sign up.
	existing := &model.User{ID: "123456", Username: "existing", Email: "e@example.com", PasswordHash: "h"}
	if err := repo.Create(context.Background(), existing); err != nil {
		t.Fatalf("planting user: %v", err)
	}

	// A fresh username must still sign up fine regardless of which IDs are
	// occupied — any collision just regenerates.
	result, err := svc.Signup(context.Background(), "newuser", "new@example.com", "password")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if result.User.ID == "" {
		t.Error("Signup() did not assign an ID")
	}
}

func TestSignup_Validation(t *testing.T) {
	svc := newTestUserService(t, newMockUserRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "", "a@example.com", "password"); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup(empty username) error = %v, want ErrValidation", err)
	}
	if _, err := svc.Signup(ctx, "johndoe", "a@example.com", ""); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup(empty password) error = %v, want ErrValidation", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "johndoe", "john@example.com", "hunter22"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	result, err := svc.Login(ctx, "johndoe", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() did not issue a token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "johndoe", "john@example.com", "hunter22"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	_, err := svc.Login(ctx, "johndoe", "wrong")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login() error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestUserService(t, newMockUserRepo())

	_, err := svc.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Login() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate_KeepsPasswordWhenEmpty(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "johndoe", "john@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	originalHash := signup.User.PasswordHash

	updated, err := svc.Update(ctx, "johndoe", "new@example.com", "")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Errorf("Email = %q, want %q", updated.Email, "new@example.com")
	}
	if updated.PasswordHash != originalHash {
		t.Error("Update() with empty password changed the stored hash")
	}

	// A wrong-then-right login proves the credential still works.
	if _, err := svc.Login(ctx, "johndoe", "hunter22"); err != nil {
		t.Errorf("Login() after update error = %v", err)
	}
}

func TestUserUpdate_RehashesNewPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "johndoe", "john@example.com", "old-password"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if _, err := svc.Update(ctx, "johndoe", "john@example.com", "new-password"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if _, err := svc.Login(ctx, "johndoe", "new-password"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, err := svc.Login(ctx, "johndoe", "old-password"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Login() with old password error = %v, want ErrUnauthorized", err)
	}
}

func TestUserDelete(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestUserService(t, repo)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "johndoe", "john@example.com", "hunter22"); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if err := svc.Delete(ctx, "johndoe"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(ctx, "johndoe"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	svc := newTestUserService(t, newMockUserRepo())

	err := svc.Delete(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
