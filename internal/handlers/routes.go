package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Profiles: deps.Profiles, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	secret := SecretHandler{Secrets: deps.Secrets, Sessions: deps.Sessions, Events: deps.Events}
	friends := FriendHandler{Friends: deps.Friends, Profiles: deps.Profiles, Sessions: deps.Sessions}
	disclosure := FriendSecretHandler{Friends: deps.Friends, Secrets: deps.Secrets, Sessions: deps.Sessions, Limiter: deps.AuthLimiter}
	account := AccountHandler{Sessions: deps.Sessions, Admin: deps.Admin}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/auth/login", auth.Login)
	mux.HandleFunc("/api/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/auth/logout", auth.Logout)
	mux.HandleFunc("/api/secret", secret.Handle)
	mux.HandleFunc("/api/secret/watch", secret.Watch)
	mux.HandleFunc("/api/friends", friends.List)
	mux.HandleFunc("/api/friends/request", friends.Request)
	mux.HandleFunc("/api/friends/accept", friends.Accept)
	mux.HandleFunc("/api/friends/secret", disclosure.Disclose)
	mux.HandleFunc("/api/account/delete", account.Delete)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Profiles    ProfileStore
	Secrets     SecretStore
	Friends     FriendStore
	Sessions    SessionManager
	Admin       AccountAdmin
	Events      SecretEvents
	AuthLimiter RateLimiter
}
