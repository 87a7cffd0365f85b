package redis

// Key layout for the client-local persistence surface.
const (
	// KeyLocalRows holds the list of user-added rows (JSON array).
	KeyLocalRows = "sheethub:rows:local"
	// KeyCatalogRows mirrors the last successful catalog fetch (JSON array).
	KeyCatalogRows = "sheethub:rows:catalog"
	// KeySavedViews holds the list of saved views (JSON array).
	KeySavedViews = "sheethub:views:saved"
	// KeyTheme holds the theme preference (opaque string).
	KeyTheme = "sheethub:pref:theme"

	// Token material lives in three separate keys so the access half can
	// expire independently of the refresh half.
	KeyAccessToken  = "sheethub:token:access"
	KeyRefreshToken = "sheethub:token:refresh"
	KeyTokenExpiry  = "sheethub:token:expiry"
)
