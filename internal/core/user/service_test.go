package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

// plainHasher はテスト用の平文ハッシュです。bcrypt のコストを避けます。
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fixedKeys struct {
	key string
}

func (f fixedKeys) NewKey() string {
	return f.key
}

type fakeUserRepo struct {
	users    map[string]*User
	sequence int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) (*User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, ErrEmailAlreadyExists
		}
	}
	clone := *u
	r.sequence++
	clone.ID = fmt.Sprintf("user-%d", r.sequence)
	r.users[clone.ID] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

type fakeTokenRepo struct {
	tokens map[string]*Token
	users  *fakeUserRepo
}

func newFakeTokenRepo(users *fakeUserRepo) *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*Token), users: users}
}

func (r *fakeTokenRepo) Create(_ context.Context, t *Token) (*Token, error) {
	clone := *t
	r.tokens[clone.Key] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeTokenRepo) FindByUserID(_ context.Context, userID string) (*Token, error) {
	for _, t := range r.tokens {
		if t.UserID == userID {
			clone := *t
			return &clone, nil
		}
	}
	return nil, ErrTokenNotFound
}

func (r *fakeTokenRepo) FindUserByKey(ctx context.Context, key string) (*User, error) {
	t, ok := r.tokens[key]
	if !ok {
		return nil, ErrTokenNotFound
	}
	return r.users.FindByID(ctx, t.UserID)
}

func newTestService(repo *fakeUserRepo, tokens *fakeTokenRepo) *Service {
	svc := NewService(repo, tokens, &stubClock{now: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)}, nil)
	return svc.WithPasswordHasher(plainHasher{}).WithKeyGenerator(fixedKeys{key: "token-key-1"})
}

func registerUser(t *testing.T, svc *Service, email string, role Role) *User {
	t.Helper()

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: email,
		Password: "TestPass123",
		Role:     &role,
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	return created
}

func TestRegister_DefaultsToEmployeeRole(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(repo, newFakeTokenRepo(repo))

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Test@User.com",
		Username: "test user",
		Password: "TestPass123",
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if created.Role != RoleEmployee {
		t.Fatalf("expected employee role, got %s", created.Role)
	}
	if created.Email != "test@user.com" {
		t.Fatalf("email must be normalized: %s", created.Email)
	}
	if !created.IsActive {
		t.Fatal("new user must be active")
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(repo, newFakeTokenRepo(repo))

	badRole := Role("superuser")
	cases := []struct {
		name     string
		in       RegisterInput
		expected error
	}{
		{name: "bad email", in: RegisterInput{Email: "not-an-email", Username: "u", Password: "TestPass123"}, expected: ErrInvalidEmail},
		{name: "empty username", in: RegisterInput{Email: "a@b.com", Username: "  ", Password: "TestPass123"}, expected: ErrInvalidUsername},
		{name: "short password", in: RegisterInput{Email: "a@b.com", Username: "u", Password: "short"}, expected: ErrInvalidPassword},
		{name: "unknown role", in: RegisterInput{Email: "a@b.com", Username: "u", Password: "TestPass123", Role: &badRole}, expected: ErrInvalidRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestLogin_IssuesAndReusesToken(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	tokens := newFakeTokenRepo(repo)
	svc := newTestService(repo, tokens)
	registerUser(t, svc, "admin@example.com", RoleAdmin)

	token, err := svc.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "TestPass123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token.Key != "token-key-1" {
		t.Fatalf("unexpected token key: %s", token.Key)
	}

	again, err := svc.Login(context.Background(), LoginInput{Email: "admin@example.com", Password: "TestPass123"})
	if err != nil {
		t.Fatalf("second Login error: %v", err)
	}
	if again.Key != token.Key {
		t.Fatalf("login must reuse the existing token: %s vs %s", again.Key, token.Key)
	}
	if len(tokens.tokens) != 1 {
		t.Fatalf("expected a single stored token, got %d", len(tokens.tokens))
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(repo, newFakeTokenRepo(repo))
	registerUser(t, svc, "user@example.com", RoleEmployee)

	cases := []struct {
		name string
		in   LoginInput
	}{
		{name: "wrong password", in: LoginInput{Email: "user@example.com", Password: "WrongPass123"}},
		{name: "unknown email", in: LoginInput{Email: "nobody@example.com", Password: "TestPass123"}},
		{name: "missing password", in: LoginInput{Email: "user@example.com"}},
		{name: "missing email", in: LoginInput{Password: "TestPass123"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tc.in); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	tokens := newFakeTokenRepo(repo)
	svc := newTestService(repo, tokens)
	created := registerUser(t, svc, "manager@example.com", RoleManager)

	token, err := svc.Login(context.Background(), LoginInput{Email: "manager@example.com", Password: "TestPass123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	resolved, err := svc.Authenticate(context.Background(), token.Key)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if resolved.ID != created.ID || resolved.Role != RoleManager {
		t.Fatalf("unexpected user: %+v", resolved)
	}

	if _, err := svc.Authenticate(context.Background(), "bogus"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "  "); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound for blank key, got %v", err)
	}
}

func TestRoleIsAdminOrManager(t *testing.T) {
	t.Parallel()

	if !RoleAdmin.IsAdminOrManager() || !RoleManager.IsAdminOrManager() {
		t.Fatal("admin and manager must be privileged")
	}
	if RoleEmployee.IsAdminOrManager() {
		t.Fatal("employee must not be privileged")
	}
}
