package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/case-runner/internal/apperror"
	"github.com/sakif/case-runner/internal/auth"
	"github.com/sakif/case-runner/internal/model"
)

// mockUserRepo is an in-memory UserRepository keyed by id and email.
type mockUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
	nextID  int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *model.User) error {
	email := strings.ToLower(u.Email)
	if _, taken := m.byEmail[email]; taken {
		return apperror.Conflict("User with that email already exists")
	}
	m.nextID++
	u.ID = fmt.Sprintf("user-%d", m.nextID)
	u.Email = email
	if u.Role == "" {
		u.Role = "user"
	}
	stored := *u
	m.byID[u.ID] = &stored
	m.byEmail[email] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.NotFound("User", email)
	}
	result := *u
	return &result, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewAuthService(repo, tokens, auth.NewPasswordServiceForTest(), logger)
	return svc, repo
}

func TestRegister_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "Alice", "Alice@Example.TEST", "hunter22")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("registered user has no ID")
	}
	if user.Email != "alice@example.test" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.Password == "hunter22" {
		t.Error("password stored as plaintext")
	}
	if !strings.HasPrefix(user.Password, "$argon2id$") {
		t.Errorf("Password = %q, want argon2id hash", user.Password)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "Alice", "alice@example.test", "pw"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	// Same email, different case.
	_, err := svc.Register(context.Background(), "Mallory", "ALICE@example.test", "pw2")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []struct{ name, email, password string }{
		{"", "a@b.test", "pw"},
		{"Alice", "", "pw"},
		{"Alice", "a@b.test", ""},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc.name, tc.email, tc.password)
		if !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Register(%q,%q,...) error = %v, want ErrValidation", tc.name, tc.email, err)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.Register(context.Background(), "Alice", "alice@example.test", "hunter22")

	result, err := svc.Login(context.Background(), "alice@example.test", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token == "" {
		t.Error("Login() returned empty token")
	}
	if result.User.Email != "alice@example.test" {
		t.Errorf("User.Email = %q", result.User.Email)
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.Register(context.Background(), "Alice", "alice@example.test", "hunter22")

	if _, err := svc.Login(context.Background(), "ALICE@EXAMPLE.TEST", "hunter22"); err != nil {
		t.Errorf("Login() with differently-cased email error = %v", err)
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _ := newTestAuthService(t)
	svc.Register(context.Background(), "Alice", "alice@example.test", "hunter22")

	// Wrong password for a known user.
	_, errWrongPW := svc.Login(context.Background(), "alice@example.test", "wrong")
	// Unknown email entirely.
	_, errNoUser := svc.Login(context.Background(), "nobody@example.test", "whatever")

	if !errors.Is(errWrongPW, apperror.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrongPW)
	}
	if !errors.Is(errNoUser, apperror.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", errNoUser)
	}

	// The two failures must be indistinguishable to the caller.
	if errWrongPW.Error() != errNoUser.Error() {
		t.Errorf("failure messages differ: %q vs %q", errWrongPW.Error(), errNoUser.Error())
	}
}
