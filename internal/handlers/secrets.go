package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/secretpages/backend/internal/logging"
	"github.com/secretpages/backend/internal/models"
	"github.com/secretpages/backend/internal/repositories"
)

// SecretHandler lets the signed-in user read and overwrite their own secret
// and watch for changes to it.
type SecretHandler struct {
	Secrets  SecretStore
	Sessions SessionManager
	Events   SecretEvents
	NowFunc  func() time.Time
}

// Handle dispatches GET and PUT /api/secret.
func (h SecretHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h SecretHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Secrets == nil || h.Sessions == nil {
		logger.Error("secret dependencies unavailable", "hasSecrets", h.Secrets != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "secret services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	secret, err := h.Secrets.FindByUser(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusOK, secretResponse{Secret: nil})
			return
		}
		logger.Error("secret lookup failed", "error", err, "userId", identity.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(ctx, w, http.StatusOK, secretResponse{Secret: &secret.Content})
}

func (h SecretHandler) put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Secrets == nil || h.Sessions == nil {
		logger.Error("secret dependencies unavailable", "hasSecrets", h.Secrets != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "secret services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req saveSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid secret payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	secret := models.Secret{
		UserID:    identity.ID,
		Content:   req.Secret,
		UpdatedAt: h.now(),
	}

	if err := h.Secrets.Upsert(ctx, secret); err != nil {
		logger.Error("secret upsert failed", "error", err, "userId", identity.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var generation uint64
	if h.Events != nil {
		generation = h.Events.Publish(identity.ID)
	}

	respondJSON(ctx, w, http.StatusOK, saveSecretResponse{Success: true, Generation: generation})
}

// Watch streams secret-updated events for the caller as server-sent events.
// The connection stays open until the client disconnects.
func (h SecretHandler) Watch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil || h.Events == nil {
		logger.Error("secret watch dependencies unavailable", "hasSessions", h.Sessions != nil, "hasEvents", h.Events != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "secret services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.Error("response writer does not support streaming")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	updates, cancel := h.Events.Subscribe(identity.ID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case update, open := <-updates:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: secret-updated\ndata: {\"generation\":%d}\n\n", update.Generation)
			flusher.Flush()
		}
	}
}

type saveSecretRequest struct {
	Secret string `json:"secret"`
}

type saveSecretResponse struct {
	Success    bool   `json:"success"`
	Generation uint64 `json:"generation"`
}

type secretResponse struct {
	Secret *string `json:"secret"`
}

func (h SecretHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
