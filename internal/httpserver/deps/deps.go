package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adisetya/sheethub/internal/auth"
	"github.com/adisetya/sheethub/internal/drive"
	"github.com/adisetya/sheethub/internal/logger"
	"github.com/adisetya/sheethub/internal/notes"
	redisstore "github.com/adisetya/sheethub/internal/store/redis"
	"github.com/adisetya/sheethub/internal/view"
)

// ThemeStore persists the client theme preference.
type ThemeStore interface {
	Theme(ctx context.Context) (string, error)
	SaveTheme(ctx context.Context, theme string) error
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedOrigins []string // CORS origins allowed to call the API
	AllowedCIDRS   []string // IPs allowed to access admin endpoints
	TrustProxy     bool     // true if running behind a trusted reverse proxy

	RedisClient *redis.Client    // Redis client connection
	Store       *redisstore.Store // Redis-backed persistence for rows/views/tokens
	Prefs       ThemeStore       // Theme preference persistence
	Engine      *view.Engine     // Canonical filter/sort/pagination state
	Auth        *auth.Manager    // OAuth2 token lifecycle
	Jar         *auth.CookieJar  // Server-readable token cookie copy
	Notes       *notes.Client    // Spreadsheet-backed notes proxy
	Uploader    *drive.Uploader  // Drive attachment upload

	AppURL        string        // public frontend base URL, also the popup message origin
	ReloadTrigger chan struct{} // Channel to trigger manual catalog reload
}
