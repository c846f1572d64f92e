package handlers

import (
	"context"
	"time"

	"github.com/secretpages/backend/internal/models"
	"github.com/secretpages/backend/internal/repositories"
	"github.com/secretpages/backend/internal/secrets"
)

// fakeSessionManager resolves every presented bearer token to a fixed
// identity unless verifyErr is set.
type fakeSessionManager struct {
	identity   models.Identity
	tokens     models.SessionTokens
	verifyErr  error
	issueErr   error
	refreshErr error
	revoked    []string
}

func (m *fakeSessionManager) Issue(context.Context, models.Identity) (models.SessionTokens, error) {
	if m.issueErr != nil {
		return models.SessionTokens{}, m.issueErr
	}
	return m.tokens, nil
}

func (m *fakeSessionManager) Verify(context.Context, string) (models.Identity, error) {
	if m.verifyErr != nil {
		return models.Identity{}, m.verifyErr
	}
	return m.identity, nil
}

func (m *fakeSessionManager) Refresh(context.Context, string) (models.SessionTokens, error) {
	if m.refreshErr != nil {
		return models.SessionTokens{}, m.refreshErr
	}
	return m.tokens, nil
}

func (m *fakeSessionManager) Revoke(_ context.Context, refreshToken string) {
	m.revoked = append(m.revoked, refreshToken)
}

type inMemoryProfileStore struct {
	profiles  map[string]models.Profile
	upsertErr error
	findErr   error
}

func newInMemoryProfileStore() *inMemoryProfileStore {
	return &inMemoryProfileStore{profiles: make(map[string]models.Profile)}
}

func (s *inMemoryProfileStore) Upsert(_ context.Context, profile models.Profile) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *inMemoryProfileStore) FindByEmail(_ context.Context, email string) (models.Profile, error) {
	if s.findErr != nil {
		return models.Profile{}, s.findErr
	}
	for _, profile := range s.profiles {
		if profile.Email == email {
			return profile, nil
		}
	}
	return models.Profile{}, repositories.ErrNotFound
}

func (s *inMemoryProfileStore) FindByID(_ context.Context, id string) (models.Profile, error) {
	if s.findErr != nil {
		return models.Profile{}, s.findErr
	}
	profile, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, repositories.ErrNotFound
	}
	return profile, nil
}

type inMemorySecretStore struct {
	secrets   map[string]models.Secret
	upsertErr error
	findErr   error
}

func newInMemorySecretStore() *inMemorySecretStore {
	return &inMemorySecretStore{secrets: make(map[string]models.Secret)}
}

func (s *inMemorySecretStore) Upsert(_ context.Context, secret models.Secret) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.secrets[secret.UserID] = secret
	return nil
}

func (s *inMemorySecretStore) FindByUser(_ context.Context, userID string) (models.Secret, error) {
	if s.findErr != nil {
		return models.Secret{}, s.findErr
	}
	secret, ok := s.secrets[userID]
	if !ok {
		return models.Secret{}, repositories.ErrNotFound
	}
	return secret, nil
}

type inMemoryFriendStore struct {
	friendships map[string]models.Friendship
	createErr   error
	acceptErr   error
	listErr     error
	acceptedErr error
}

func newInMemoryFriendStore() *inMemoryFriendStore {
	return &inMemoryFriendStore{friendships: make(map[string]models.Friendship)}
}

func (s *inMemoryFriendStore) CreateRequest(_ context.Context, friendship models.Friendship) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.friendships {
		if samePair(existing, friendship.RequesterID, friendship.AddresseeID) {
			return repositories.ErrConflict
		}
	}
	s.friendships[friendship.ID] = friendship
	return nil
}

func (s *inMemoryFriendStore) Accept(_ context.Context, requestID, addresseeID string) error {
	if s.acceptErr != nil {
		return s.acceptErr
	}
	friendship, ok := s.friendships[requestID]
	if !ok || friendship.AddresseeID != addresseeID || friendship.Status != models.FriendStatusPending {
		return repositories.ErrNotFound
	}
	respondedAt := time.Now().UTC()
	friendship.Status = models.FriendStatusAccepted
	friendship.RespondedAt = &respondedAt
	s.friendships[requestID] = friendship
	return nil
}

func (s *inMemoryFriendStore) ListForUser(_ context.Context, userID string) ([]models.Friendship, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Friendship
	for _, friendship := range s.friendships {
		if friendship.RequesterID == userID || friendship.AddresseeID == userID {
			out = append(out, friendship)
		}
	}
	return out, nil
}

func (s *inMemoryFriendStore) AcceptedBetween(_ context.Context, userA, userB string) (bool, error) {
	if s.acceptedErr != nil {
		return false, s.acceptedErr
	}
	for _, friendship := range s.friendships {
		if friendship.Status == models.FriendStatusAccepted && samePair(friendship, userA, userB) {
			return true, nil
		}
	}
	return false, nil
}

func samePair(friendship models.Friendship, userA, userB string) bool {
	return (friendship.RequesterID == userA && friendship.AddresseeID == userB) ||
		(friendship.RequesterID == userB && friendship.AddresseeID == userA)
}

// denyLimiter rejects every request.
type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

// recordingEvents captures published updates and serves a prepared channel
// to subscribers.
type recordingEvents struct {
	published  []string
	generation uint64
	updates    chan secrets.Update
}

func (e *recordingEvents) Publish(userID string) uint64 {
	e.published = append(e.published, userID)
	e.generation++
	return e.generation
}

func (e *recordingEvents) Subscribe(string) (<-chan secrets.Update, func()) {
	return e.updates, func() {}
}

type recordingAdmin struct {
	deleted []string
	err     error
}

func (a *recordingAdmin) DeleteUser(_ context.Context, userID string) error {
	if a.err != nil {
		return a.err
	}
	a.deleted = append(a.deleted, userID)
	return nil
}
