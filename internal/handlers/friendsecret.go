package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/secretpages/backend/internal/logging"
	"github.com/secretpages/backend/internal/repositories"
)

// FriendSecretHandler implements the disclosure endpoint: a caller may read
// another user's secret only when an accepted friendship links the two, in
// either direction. The check happens on every call; nothing is cached and
// secret content never reaches the logs.
type FriendSecretHandler struct {
	Friends  FriendStore
	Secrets  SecretStore
	Sessions SessionManager
	Limiter  RateLimiter
}

// Disclose handles POST /api/friends/secret.
func (h FriendSecretHandler) Disclose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "friend-secret") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	if h.Friends == nil || h.Secrets == nil || h.Sessions == nil {
		logger.Error("disclosure dependencies unavailable", "hasFriends", h.Friends != nil, "hasSecrets", h.Secrets != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "secret services unavailable"})
		return
	}

	// A missing target id is a client error regardless of auth state.
	var req friendSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid disclosure payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FriendID = strings.TrimSpace(req.FriendID)
	if req.FriendID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "friendId is required"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	accepted, err := h.Friends.AcceptedBetween(ctx, identity.ID, req.FriendID)
	if err != nil {
		logger.Error("friendship check failed", "error", err, "userId", identity.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if !accepted && identity.ID != req.FriendID {
		logger.Warn("disclosure denied", "userId", identity.ID, "friendId", req.FriendID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "401 Not authorized"})
		return
	}

	secret, err := h.Secrets.FindByUser(ctx, req.FriendID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// A friend without a secret is not an error.
			respondJSON(ctx, w, http.StatusOK, secretResponse{Secret: nil})
			return
		}
		logger.Error("secret fetch failed", "error", err, "friendId", req.FriendID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(ctx, w, http.StatusOK, secretResponse{Secret: &secret.Content})
}

type friendSecretRequest struct {
	FriendID string `json:"friendId"`
}
