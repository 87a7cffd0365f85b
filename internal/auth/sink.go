package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/adisetya/sheethub/internal/domain"
)

// Default cookie lifetimes for the two token cookies.
const (
	AccessTokenTTL  = time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour

	accessCookieName  = "google_access_token"
	refreshCookieName = "google_refresh_token"
)

// TokenSink is one persistence surface for token material. The manager
// writes every record to all of its sinks ("both or neither") and
// tolerates the copies drifting apart; no reconciliation is attempted.
type TokenSink interface {
	Name() string
	Write(ctx context.Context, rec domain.TokenRecord) error
	// Read returns the stored record, or a zero record with nil error when
	// nothing is stored.
	Read(ctx context.Context) (domain.TokenRecord, error)
	Clear(ctx context.Context) error
}

// CookieJar is the server-readable cookie copy of the token material. The
// HTTP layer emits its pending cookies on responses and seeds it from
// request cookies.
type CookieJar struct {
	mu     sync.Mutex
	rec    domain.TokenRecord
	secure bool
	now    func() time.Time
}

// NewCookieJar creates an empty jar. secure controls the cookie Secure flag.
func NewCookieJar(secure bool) *CookieJar {
	return &CookieJar{secure: secure, now: time.Now}
}

func (j *CookieJar) Name() string { return "cookie" }

func (j *CookieJar) Write(_ context.Context, rec domain.TokenRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rec.RefreshToken == "" {
		// refresh only replaces the access half
		rec.RefreshToken = j.rec.RefreshToken
	}
	j.rec = rec
	return nil
}

func (j *CookieJar) Read(_ context.Context) (domain.TokenRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rec, nil
}

func (j *CookieJar) Clear(_ context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rec = domain.TokenRecord{}
	return nil
}

// SeedFromRequest fills the jar from the token cookies of an incoming
// request, if present. The expiry timestamp is not carried by the cookies,
// so a seeded access token is assumed live for the access TTL.
func (j *CookieJar) SeedFromRequest(r *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c, err := r.Cookie(accessCookieName); err == nil && c.Value != "" {
		if j.rec.AccessToken != c.Value {
			j.rec.AccessToken = c.Value
			j.rec.ExpiresAt = j.now().Add(AccessTokenTTL)
		}
	}
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		j.rec.RefreshToken = c.Value
	}
}

// Cookies returns the Set-Cookie values for the current record. An empty
// record yields expired cookies so clients drop theirs too.
func (j *CookieJar) Cookies() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	access := &http.Cookie{
		Name:     accessCookieName,
		Value:    j.rec.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}
	refresh := &http.Cookie{
		Name:     refreshCookieName,
		Value:    j.rec.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	}

	if j.rec.AccessToken == "" {
		access.MaxAge = -1
	} else if ttl := time.Until(j.rec.ExpiresAt); ttl > 0 {
		access.MaxAge = int(ttl.Seconds())
	} else {
		access.MaxAge = int(AccessTokenTTL.Seconds())
	}

	if j.rec.RefreshToken == "" {
		refresh.MaxAge = -1
	} else {
		refresh.MaxAge = int(RefreshTokenTTL.Seconds())
	}

	return []*http.Cookie{access, refresh}
}
