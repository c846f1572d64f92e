package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/secretpages/backend/internal/logging"
	"github.com/secretpages/backend/internal/models"
	"github.com/secretpages/backend/internal/repositories"
)

// FriendHandler provides the friend-request workflow: sending a request by
// email, accepting a pending request, and listing relationships.
type FriendHandler struct {
	Friends  FriendStore
	Profiles ProfileStore
	Sessions SessionManager
	NowFunc  func() time.Time
}

// Request handles POST /api/friends/request. The addressee is resolved from
// a normalized email; requesting yourself is rejected before the lookup.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Friends == nil || h.Profiles == nil || h.Sessions == nil {
		logger.Error("friend dependencies unavailable", "hasFriends", h.Friends != nil, "hasProfiles", h.Profiles != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req sendFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid friend request payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		logger.Warn("friend request missing email")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email is required"})
		return
	}

	if email == strings.ToLower(identity.Email) {
		logger.Warn("friend request to self", "userId", identity.ID)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "you cannot add yourself"})
		return
	}

	addressee, err := h.Profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("friend request profile lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if addressee.ID == identity.ID {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "you cannot add yourself"})
		return
	}

	friendship := models.Friendship{
		ID:          uuid.NewString(),
		RequesterID: identity.ID,
		AddresseeID: addressee.ID,
		Status:      models.FriendStatusPending,
		CreatedAt:   h.now(),
	}

	if err := h.Friends.CreateRequest(ctx, friendship); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			logger.Warn("duplicate friend request", "requesterId", identity.ID, "addresseeId", addressee.ID)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "a request between you already exists"})
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		default:
			logger.Error("friend request insert failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, friendshipResponse{Friendship: newFriendshipView(friendship, nil)})
}

// Accept handles POST /api/friends/accept. Only the addressee recorded on
// the pending row may accept it; anyone else sees not-found.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Friends == nil || h.Sessions == nil {
		logger.Error("friend dependencies unavailable", "hasFriends", h.Friends != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	var req acceptFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid accept payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.RequestID = strings.TrimSpace(req.RequestID)
	if req.RequestID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "requestId is required"})
		return
	}

	if err := h.Friends.Accept(ctx, req.RequestID, identity.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("accept rejected", "requestId", req.RequestID, "userId", identity.ID)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "friend request not found"})
			return
		}
		logger.Error("accept failed", "error", err, "requestId", req.RequestID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"success": true})
}

// List handles GET /api/friends requests, returning every relationship the
// caller participates in along with the counterpart's profile.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Friends == nil || h.Profiles == nil || h.Sessions == nil {
		logger.Error("friend dependencies unavailable", "hasFriends", h.Friends != nil, "hasProfiles", h.Profiles != nil, "hasSessions", h.Sessions != nil)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "friend services unavailable"})
		return
	}

	identity, ok := authenticate(w, r, h.Sessions)
	if !ok {
		return
	}

	friendships, err := h.Friends.ListForUser(ctx, identity.ID)
	if err != nil {
		logger.Error("list friendships failed", "error", err, "userId", identity.ID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	views := make([]friendshipView, 0, len(friendships))
	for _, friendship := range friendships {
		counterpartID := friendship.RequesterID
		if counterpartID == identity.ID {
			counterpartID = friendship.AddresseeID
		}

		var counterpart *friendProfile
		if profile, err := h.Profiles.FindByID(ctx, counterpartID); err == nil {
			counterpart = &friendProfile{ID: profile.ID, Email: profile.Email, DisplayName: profile.DisplayName}
		} else if !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("counterpart profile lookup failed", "error", err, "profileId", counterpartID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		views = append(views, newFriendshipView(friendship, counterpart))
	}

	respondJSON(ctx, w, http.StatusOK, listFriendsResponse{Relationships: views})
}

type sendFriendRequest struct {
	Email string `json:"email"`
}

type acceptFriendRequest struct {
	RequestID string `json:"requestId"`
}

type friendProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

type friendshipView struct {
	ID          string         `json:"id"`
	RequesterID string         `json:"requesterId"`
	AddresseeID string         `json:"addresseeId"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	RespondedAt *time.Time     `json:"respondedAt,omitempty"`
	Friend      *friendProfile `json:"friend,omitempty"`
}

type friendshipResponse struct {
	Friendship friendshipView `json:"request"`
}

type listFriendsResponse struct {
	Relationships []friendshipView `json:"relationships"`
}

func newFriendshipView(friendship models.Friendship, counterpart *friendProfile) friendshipView {
	return friendshipView{
		ID:          friendship.ID,
		RequesterID: friendship.RequesterID,
		AddresseeID: friendship.AddresseeID,
		Status:      friendship.Status,
		CreatedAt:   friendship.CreatedAt,
		RespondedAt: friendship.RespondedAt,
		Friend:      counterpart,
	}
}

func (h FriendHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
