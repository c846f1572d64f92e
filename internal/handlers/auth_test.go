package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/secretpages/backend/internal/auth"
	"github.com/secretpages/backend/internal/models"
)

func issuedTokens() models.SessionTokens {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return models.SessionTokens{
		AccessToken:      "access-token",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshToken:     "refresh-token",
		RefreshExpiresAt: now.Add(24 * time.Hour),
	}
}

func TestAuthHandlerSignUp(t *testing.T) {
	profiles := newInMemoryProfileStore()
	sessions := &fakeSessionManager{tokens: issuedTokens()}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler := AuthHandler{Profiles: profiles, Sessions: sessions, NowFunc: func() time.Time { return now }}

	body, err := json.Marshal(signUpRequest{Email: "Alice@Example.com", Password: "correct-horse", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.AccessToken != "access-token" || resp.Tokens.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected tokens: %+v", resp.Tokens)
	}

	if len(profiles.profiles) != 1 {
		t.Fatalf("expected 1 stored profile, got %d", len(profiles.profiles))
	}
	for _, profile := range profiles.profiles {
		if profile.Email != "alice@example.com" {
			t.Fatalf("expected normalized email, got %q", profile.Email)
		}
		if profile.DisplayName != "Alice" {
			t.Fatalf("expected display name to persist, got %q", profile.DisplayName)
		}
		if profile.PasswordHash == "correct-horse" || profile.PasswordHash == "" {
			t.Fatal("expected password to be hashed")
		}
		if profile.CreatedAt != now {
			t.Fatal("expected createdAt to use NowFunc")
		}
	}
}

func TestAuthHandlerSignUpFailures(t *testing.T) {
	valid := []byte(`{"email":"alice@example.com","password":"correct-horse"}`)

	existing := newInMemoryProfileStore()
	existing.profiles["user-1"] = models.Profile{ID: "user-1", Email: "alice@example.com"}

	cases := []struct {
		name       string
		handler    AuthHandler
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}}, http.MethodGet, valid, http.StatusMethodNotAllowed},
		{"rateLimited", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}, Limiter: denyLimiter{}}, http.MethodPost, valid, http.StatusTooManyRequests},
		{"missingDependencies", AuthHandler{}, http.MethodPost, valid, http.StatusInternalServerError},
		{"badJSON", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingFields", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"","password":""}`), http.StatusBadRequest},
		{"invalidEmail", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"not-an-email","password":"correct-horse"}`), http.StatusBadRequest},
		{"shortPassword", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"alice@example.com","password":"short"}`), http.StatusBadRequest},
		{"existingAccount", AuthHandler{Profiles: existing, Sessions: &fakeSessionManager{}}, http.MethodPost, valid, http.StatusConflict},
		{"lookupError", AuthHandler{Profiles: &inMemoryProfileStore{findErr: errors.New("db down")}, Sessions: &fakeSessionManager{}}, http.MethodPost, valid, http.StatusInternalServerError},
		{"issueError", AuthHandler{Profiles: newInMemoryProfileStore(), Sessions: &fakeSessionManager{issueErr: errors.New("store down")}}, http.MethodPost, valid, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/auth/signup", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			tc.handler.SignUp(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	profiles := newInMemoryProfileStore()
	profiles.profiles["user-1"] = models.Profile{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}

	handler := AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{tokens: issuedTokens()}}

	body := []byte(`{"email":"Alice@Example.com","password":"correct-horse"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens in response: %+v", resp.Tokens)
	}
}

func TestAuthHandlerLoginFailures(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	profiles := newInMemoryProfileStore()
	profiles.profiles["user-1"] = models.Profile{ID: "user-1", Email: "alice@example.com", PasswordHash: string(hash)}

	cases := []struct {
		name       string
		handler    AuthHandler
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}}, http.MethodGet, nil, http.StatusMethodNotAllowed},
		{"rateLimited", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}, Limiter: denyLimiter{}}, http.MethodPost, []byte(`{}`), http.StatusTooManyRequests},
		{"missingDependencies", AuthHandler{}, http.MethodPost, []byte(`{}`), http.StatusInternalServerError},
		{"badJSON", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingFields", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"","password":""}`), http.StatusBadRequest},
		{"unknownEmail", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"bob@example.com","password":"correct-horse"}`), http.StatusUnauthorized},
		{"wrongPassword", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"email":"alice@example.com","password":"wrong-horse"}`), http.StatusUnauthorized},
		{"issueError", AuthHandler{Profiles: profiles, Sessions: &fakeSessionManager{issueErr: errors.New("store down")}}, http.MethodPost, []byte(`{"email":"alice@example.com","password":"correct-horse"}`), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/auth/login", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			tc.handler.Login(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandlerRefresh(t *testing.T) {
	handler := AuthHandler{Sessions: &fakeSessionManager{tokens: issuedTokens()}}

	body := []byte(`{"refreshToken":"old-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Refresh(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp authResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected tokens: %+v", resp.Tokens)
	}
}

func TestAuthHandlerRefreshFailures(t *testing.T) {
	body := []byte(`{"refreshToken":"old-token"}`)

	cases := []struct {
		name       string
		handler    AuthHandler
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", AuthHandler{Sessions: &fakeSessionManager{}}, http.MethodGet, body, http.StatusMethodNotAllowed},
		{"missingSessions", AuthHandler{}, http.MethodPost, body, http.StatusInternalServerError},
		{"badJSON", AuthHandler{Sessions: &fakeSessionManager{}}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingToken", AuthHandler{Sessions: &fakeSessionManager{}}, http.MethodPost, []byte(`{"refreshToken":""}`), http.StatusBadRequest},
		{"expired", AuthHandler{Sessions: &fakeSessionManager{refreshErr: auth.ErrRefreshTokenExpired}}, http.MethodPost, body, http.StatusUnauthorized},
		{"notFound", AuthHandler{Sessions: &fakeSessionManager{refreshErr: auth.ErrSessionNotFound}}, http.MethodPost, body, http.StatusUnauthorized},
		{"internal", AuthHandler{Sessions: &fakeSessionManager{refreshErr: errors.New("db down")}}, http.MethodPost, body, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/auth/refresh", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			tc.handler.Refresh(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	sessions := &fakeSessionManager{}
	handler := AuthHandler{Sessions: sessions}

	body := []byte(`{"refreshToken":"refresh-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d", http.StatusNoContent, rec.Code)
	}

	if len(sessions.revoked) != 1 || sessions.revoked[0] != "refresh-token" {
		t.Fatalf("expected refresh token to be revoked, got %v", sessions.revoked)
	}
}

func TestAuthHandlerLogoutFailures(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	AuthHandler{Sessions: &fakeSessionManager{}}.Logout(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader([]byte("{")))
	rec = httptest.NewRecorder()
	AuthHandler{Sessions: &fakeSessionManager{}}.Logout(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", bytes.NewReader([]byte(`{}`)))
	rec = httptest.NewRecorder()
	AuthHandler{}.Logout(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}
}
