package app

import (
	"log/slog"

	"github.com/secretpages/backend/internal/auth"
	"github.com/secretpages/backend/internal/config"
	"github.com/secretpages/backend/internal/db"
	"github.com/secretpages/backend/internal/handlers"
	"github.com/secretpages/backend/internal/middleware"
	"github.com/secretpages/backend/internal/repositories"
	"github.com/secretpages/backend/internal/secrets"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The account admin is only wired when the service key is present;
// without it the deletion endpoint fails closed.
func buildDependencies(pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, auth.SessionStore) {
	sessionStore := repositories.NewPostgresSessionStore(pool)
	manager := auth.NewManager(cfg.TokenSecret, cfg.AccessTTL, cfg.RefreshTTL, sessionStore)

	var admin handlers.AccountAdmin
	if cfg.ServiceKey != "" {
		pgAdmin, err := repositories.NewPostgresAccountAdmin(pool, cfg.ServiceKey)
		if err == nil {
			admin = pgAdmin
		}
	} else {
		logger.Warn("service key is not set; account deletion will fail until it is provided")
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit.Requests,
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.Burst,
		cfg.AuthRateLimit.TTL,
	)

	return handlers.Dependencies{
		Profiles:    repositories.NewPostgresProfileRepository(pool),
		Secrets:     repositories.NewPostgresSecretRepository(pool),
		Friends:     repositories.NewPostgresFriendRepository(pool),
		Sessions:    manager,
		Admin:       admin,
		Events:      secrets.NewNotifier(),
		AuthLimiter: limiter,
	}, sessionStore
}
