package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Google OAuth2 endpoints and the Drive scope used for attachment upload.
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

	DriveFileScope = "https://www.googleapis.com/auth/drive.file"
)

// GoogleConfig builds the oauth2 config for the popup flow. The redirect
// URI is fixed; the same value must be sent on the code exchange.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{DriveFileScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
}

// GoogleStatusChecker verifies the stored access token against the
// userinfo endpoint. Used by the status endpoint and the popup-closed
// completion path.
func GoogleStatusChecker(m *Manager, userinfoURL string) StatusChecker {
	if userinfoURL == "" {
		userinfoURL = googleUserinfoURL
	}
	return func(ctx context.Context) (bool, error) {
		rec := m.Token()
		if rec.AccessToken == "" {
			return false, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+rec.AccessToken)
		resp, err := m.httpc.Do(req)
		if err != nil {
			return false, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusOK {
			// drain to keep the connection reusable
			var ignored json.RawMessage
			_ = json.NewDecoder(resp.Body).Decode(&ignored)
			return true, nil
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return false, nil
		}
		return false, fmt.Errorf("status check: unexpected response %d", resp.StatusCode)
	}
}
