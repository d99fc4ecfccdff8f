package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Username]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, exists := m.users[username]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Token != "" && user.Token == token {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateToken(ctx context.Context, id uuid.UUID, token string) error {
	for _, user := range m.users {
		if user.ID == id {
			user.Token = token
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockUserRepository) ClearToken(ctx context.Context, id uuid.UUID) error {
	for _, user := range m.users {
		if user.ID == id {
			user.Token = ""
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with invalid data returns validation errors", prop.ForAll(
		func(invalidCase int) bool {
			userService := service.NewUserService(newMockUserRepository())
			handler := NewUserHandler(userService, zap.NewNop())

			var reqBody RegisterRequest

			switch invalidCase % 4 {
			case 0:
				// Username too short
				reqBody = RegisterRequest{Username: "ab", Email: "test@example.com", Password: "ValidPass123"}
			case 1:
				// Invalid email format
				reqBody = RegisterRequest{Username: "alice", Email: "not-an-email", Password: "ValidPass123"}
			case 2:
				// Short password
				reqBody = RegisterRequest{Username: "alice", Email: "test@example.com", Password: "short"}
			case 3:
				// Missing username
				reqBody = RegisterRequest{Email: "test@example.com", Password: "ValidPass123"}
			}

			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusBadRequest {
				t.Logf("FAIL: Expected 400 status code, got %d", w.Code)
				return false
			}

			var response map[string]interface{}
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("FAIL: Could not decode error response: %v", err)
				return false
			}
			if _, exists := response["error"]; !exists {
				t.Logf("FAIL: Response missing 'error' field")
				return false
			}

			return true
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("successful registration returns the profile without credentials", prop.ForAll(
		func(username, email, password string) bool {
			userService := service.NewUserService(newMockUserRepository())
			handler := NewUserHandler(userService, zap.NewNop())

			reqBody := RegisterRequest{Username: username, Email: email, Password: password}
			body, _ := json.Marshal(reqBody)
			req := httptest.NewRequest(http.MethodPost, "/api/users/register", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != http.StatusCreated {
				return true // skip inputs the validator refuses
			}

			var profile UserProfile
			if err := json.NewDecoder(w.Body).Decode(&profile); err != nil {
				t.Logf("FAIL: Could not decode response: %v", err)
				return false
			}

			if profile.Username != username {
				t.Logf("FAIL: Username mismatch. Expected %s, got %s", username, profile.Username)
				return false
			}
			if profile.Email != email {
				t.Logf("FAIL: Email mismatch. Expected %s, got %s", email, profile.Email)
				return false
			}
			if _, err := uuid.Parse(profile.ID); err != nil {
				t.Logf("FAIL: Profile ID is not a valid UUID: %v", err)
				return false
			}

			// The raw body must never leak credential material.
			raw, _ := json.Marshal(profile)
			if bytes.Contains(raw, []byte(password)) {
				t.Logf("FAIL: Response leaked the password")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,12}`),
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidLoginReturnsSessionToken(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid login returns a resolvable opaque token", prop.ForAll(
		func(username, email, password string) bool {
			userRepo := newMockUserRepository()
			userService := service.NewUserService(userRepo)
			handler := NewUserHandler(userService, zap.NewNop())
			ctx := context.Background()

			if _, err := userService.Register(ctx, username, email, password); err != nil {
				return true // skip degenerate inputs
			}

			loginReq := LoginRequest{Username: username, Password: password}
			body, _ := json.Marshal(loginReq)
			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			if w.Code != http.StatusOK {
				t.Logf("FAIL: Expected 200 status code, got %d", w.Code)
				return false
			}

			var loginResp LoginResponse
			if err := json.NewDecoder(w.Body).Decode(&loginResp); err != nil {
				t.Logf("FAIL: Could not decode login response: %v", err)
				return false
			}

			if loginResp.Token == "" {
				t.Logf("FAIL: Session token is empty")
				return false
			}
			if loginResp.User.Username != username {
				t.Logf("FAIL: User profile username mismatch")
				return false
			}

			// The issued token must resolve back to the same account.
			resolved, err := userRepo.FindByToken(ctx, loginResp.Token)
			if err != nil {
				t.Logf("FAIL: Issued token does not resolve: %v", err)
				return false
			}
			if resolved.ID.String() != loginResp.User.ID {
				t.Logf("FAIL: Token resolves to a different account")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,12}`),
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLogin_WrongPasswordIsUnauthorized(t *testing.T) {
	userService := service.NewUserService(newMockUserRepository())
	handler := NewUserHandler(userService, zap.NewNop())

	if _, err := userService.Register(context.Background(), "alice", "alice@example.com", "s3cretpass"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	body, _ := json.Marshal(LoginRequest{Username: "alice", Password: "wrongpass"})
	req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
