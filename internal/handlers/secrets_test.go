package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/secretpages/backend/internal/auth"
	"github.com/secretpages/backend/internal/models"
	"github.com/secretpages/backend/internal/secrets"
)

func TestSecretHandlerGet(t *testing.T) {
	store := newInMemorySecretStore()
	store.secrets["user-1"] = models.Secret{UserID: "user-1", Content: "hello"}

	handler := SecretHandler{Secrets: store, Sessions: &fakeSessionManager{identity: models.Identity{ID: "user-1"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/secret", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp secretResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Secret == nil || *resp.Secret != "hello" {
		t.Fatalf("unexpected secret payload: %+v", resp)
	}
}

func TestSecretHandlerGetNoSecret(t *testing.T) {
	handler := SecretHandler{Secrets: newInMemorySecretStore(), Sessions: &fakeSessionManager{identity: models.Identity{ID: "user-1"}}}

	req := httptest.NewRequest(http.MethodGet, "/api/secret", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp secretResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Secret != nil {
		t.Fatalf("expected null secret got %q", *resp.Secret)
	}
}

func TestSecretHandlerPut(t *testing.T) {
	store := newInMemorySecretStore()
	events := &recordingEvents{}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	handler := SecretHandler{
		Secrets:  store,
		Sessions: &fakeSessionManager{identity: models.Identity{ID: "user-1"}},
		Events:   events,
		NowFunc:  func() time.Time { return now },
	}

	body := []byte(`{"secret":"new content"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/secret", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp saveSecretResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Generation != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	stored := store.secrets["user-1"]
	if stored.Content != "new content" || stored.UpdatedAt != now {
		t.Fatalf("unexpected stored secret: %+v", stored)
	}

	if len(events.published) != 1 || events.published[0] != "user-1" {
		t.Fatalf("expected publish for user-1, got %v", events.published)
	}
}

func TestSecretHandlerPutOverwrite(t *testing.T) {
	store := newInMemorySecretStore()
	events := &recordingEvents{}
	handler := SecretHandler{Secrets: store, Sessions: &fakeSessionManager{identity: models.Identity{ID: "user-1"}}, Events: events}

	for i, content := range []string{"first", "second"} {
		body, _ := json.Marshal(saveSecretRequest{Secret: content})
		req := httptest.NewRequest(http.MethodPut, "/api/secret", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		handler.Handle(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("save %d: expected status %d got %d", i, http.StatusOK, rec.Code)
		}
	}

	if len(store.secrets) != 1 {
		t.Fatalf("expected a single secret row, got %d", len(store.secrets))
	}
	if store.secrets["user-1"].Content != "second" {
		t.Fatalf("expected overwrite, got %q", store.secrets["user-1"].Content)
	}
	if events.generation != 2 {
		t.Fatalf("expected generation 2 after two saves, got %d", events.generation)
	}
}

func TestSecretHandlerFailures(t *testing.T) {
	body := []byte(`{"secret":"content"}`)

	cases := []struct {
		name       string
		handler    SecretHandler
		method     string
		body       []byte
		withAuth   bool
		wantStatus int
	}{
		{"wrongMethod", SecretHandler{Secrets: newInMemorySecretStore(), Sessions: &fakeSessionManager{}}, http.MethodPost, body, true, http.StatusMethodNotAllowed},
		{"missingDependenciesGet", SecretHandler{}, http.MethodGet, nil, true, http.StatusInternalServerError},
		{"missingDependenciesPut", SecretHandler{}, http.MethodPut, body, true, http.StatusInternalServerError},
		{"missingAuthHeader", SecretHandler{Secrets: newInMemorySecretStore(), Sessions: &fakeSessionManager{}}, http.MethodGet, nil, false, http.StatusUnauthorized},
		{"invalidToken", SecretHandler{Secrets: newInMemorySecretStore(), Sessions: &fakeSessionManager{verifyErr: auth.ErrInvalidToken}}, http.MethodPut, body, true, http.StatusUnauthorized},
		{"badJSON", SecretHandler{Secrets: newInMemorySecretStore(), Sessions: &fakeSessionManager{}}, http.MethodPut, []byte("{"), true, http.StatusBadRequest},
		{"upsertError", SecretHandler{Secrets: &inMemorySecretStore{upsertErr: errors.New("db down")}, Sessions: &fakeSessionManager{}}, http.MethodPut, body, true, http.StatusInternalServerError},
		{"lookupError", SecretHandler{Secrets: &inMemorySecretStore{findErr: errors.New("db down")}, Sessions: &fakeSessionManager{}}, http.MethodGet, nil, true, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/secret", bytes.NewReader(tc.body))
			if tc.withAuth {
				req.Header.Set("Authorization", "Bearer token")
			}
			rec := httptest.NewRecorder()

			tc.handler.Handle(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestSecretHandlerWatch(t *testing.T) {
	updates := make(chan secrets.Update, 2)
	updates <- secrets.Update{UserID: "user-1", Generation: 3}
	updates <- secrets.Update{UserID: "user-1", Generation: 4}
	close(updates)

	events := &recordingEvents{updates: updates}
	handler := SecretHandler{Sessions: &fakeSessionManager{identity: models.Identity{ID: "user-1"}}, Events: events}

	req := httptest.NewRequest(http.MethodGet, "/api/secret/watch", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler.Watch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", got)
	}

	body := rec.Body.String()
	if strings.Count(body, "event: secret-updated") != 2 {
		t.Fatalf("expected two events in stream, got %q", body)
	}
	if !strings.Contains(body, `data: {"generation":3}`) || !strings.Contains(body, `data: {"generation":4}`) {
		t.Fatalf("expected generations in stream, got %q", body)
	}
}

func TestSecretHandlerWatchFailures(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/secret/watch", nil)
	rec := httptest.NewRecorder()
	SecretHandler{Sessions: &fakeSessionManager{}, Events: &recordingEvents{}}.Watch(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/secret/watch", nil)
	rec = httptest.NewRecorder()
	SecretHandler{}.Watch(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/secret/watch", nil)
	rec = httptest.NewRecorder()
	SecretHandler{Sessions: &fakeSessionManager{}, Events: &recordingEvents{}}.Watch(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized got %d", rec.Code)
	}
}
