package handlers

import (
	"net/http"

	"github.com/secretpages/backend/internal/logging"
)

// AccountHandler implements privileged account deletion. Admin is nil when
// the operator has not configured the service key; the endpoint then fails
// closed without touching any data.
type AccountHandler struct {
	Sessions SessionManager
	Admin    AccountAdmin
}

// Delete handles DELETE /api/account/delete. Deletion is irreversible and
// cascades to the account's secret, friendships, and sessions. Outstanding
// access tokens stay valid until they expire; only the stored state is gone.
func (h AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if h.Admin == nil {
		logger.Error("account deletion requested without service credential")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "Account deletion is unavailable."})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	if err := h.Admin.DeleteUser(ctx, identity.ID); err != nil {
		logger.Error("account deletion failed", "error", err, "userId", identity.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	logger.Info("account deleted", "userId", identity.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]bool{"success": true})
}
