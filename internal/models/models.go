package models

import "time"

// Profile represents a registered account and its public identity fields.
type Profile struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the resolved owner of a verified bearer token.
type Identity struct {
	ID    string
	Email string
}

// Secret holds the single private message a user may store.
type Secret struct {
	UserID    string
	Content   string
	UpdatedAt time.Time
}

// Friendship represents the request workflow between two users. A row is
// created by the requester with status pending and flipped to accepted by
// the addressee; once accepted the relationship is undirected.
type Friendship struct {
	ID          string
	RequesterID string
	AddresseeID string
	Status      string
	CreatedAt   time.Time
	RespondedAt *time.Time
}

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
