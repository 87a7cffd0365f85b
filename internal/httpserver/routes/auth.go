package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/httpserver/handlers"
	"github.com/adisetya/sheethub/internal/httpserver/mw"
)

func init() {
	Register(registerAuth, mw.RateLimit(mw.RateLimitConfig{
		Burst:             10,
		RefillPerIPPerMin: 30,
		MaxEntries:        10_000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
	}))
}

func registerAuth(r chi.Router, d deps.Deps) {
	r.Route("/api/auth/google", func(r chi.Router) {
		r.Get("/callback", handlers.GoogleCallback(d))
		r.Get("/status", handlers.AuthStatus(d))
		r.Post("/refresh", handlers.RefreshToken(d))
		r.Post("/store-tokens", handlers.StoreTokens(d))
		r.Post("/disconnect", handlers.Disconnect(d))
	})
}
