package handlers

import (
	"net/http"
	"strings"

	"github.com/secretpages/backend/internal/logging"
	"github.com/secretpages/backend/internal/models"
)

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// authenticate resolves the caller's bearer token to an identity, writing a
// 401 response when the header is absent or the token does not verify.
func authenticate(w http.ResponseWriter, r *http.Request, sessions SessionManager) (models.Identity, bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	token, ok := bearerToken(r)
	if !ok {
		logger.Warn("missing bearer token")
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return models.Identity{}, false
	}

	identity, err := sessions.Verify(ctx, token)
	if err != nil {
		logger.Warn("bearer token rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "Invalid session"})
		return models.Identity{}, false
	}

	return identity, true
}
