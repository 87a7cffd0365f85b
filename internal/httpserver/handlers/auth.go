package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/adisetya/sheethub/internal/auth"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/httpserver/deps"
	"github.com/adisetya/sheethub/internal/logger"
)

// callbackPage notifies the opener window and closes the popup. The
// message origin is pinned to the app URL so other windows cannot spoof
// completion.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html><body><script>
if (window.opener) {
  window.opener.postMessage({type: {{.Type}}, error: {{.Err}}}, {{.Origin}});
}
window.close();
</script><p>{{.Text}}</p></body></html>`))

type callbackPageData struct {
	Type   string
	Err    string
	Origin string
	Text   string
}

func renderCallback(w http.ResponseWriter, data callbackPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = callbackPage.Execute(w, data)
}

func setTokenCookies(w http.ResponseWriter, jar *auth.CookieJar) {
	for _, c := range jar.Cookies() {
		http.SetCookie(w, c)
	}
}

// GoogleCallback receives the provider redirect, exchanges the code and
// persists the tokens into both sinks. The response is a small page that
// signals the opener and closes itself; the in-process manager gets the
// same message so an in-flight Connect resolves too.
func GoogleCallback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errParam := q.Get("error"); errParam != "" {
			d.Logger.Warn("authorization denied", logger.String("reason", errParam))
			d.Auth.Deliver(auth.Message{
				Origin: d.AppURL,
				Type:   auth.MessageAuthError,
				Err:    errParam,
			})
			renderCallback(w, callbackPageData{
				Type: string(auth.MessageAuthError), Err: errParam,
				Origin: d.AppURL, Text: "Authorization failed. You can close this window.",
			})
			return
		}

		code := q.Get("code")
		if code == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing code"})
			return
		}

		if _, err := d.Auth.ExchangeCode(r.Context(), code); err != nil {
			d.Auth.Deliver(auth.Message{
				Origin: d.AppURL,
				Type:   auth.MessageAuthError,
				Err:    "token exchange failed",
			})
			renderCallback(w, callbackPageData{
				Type: string(auth.MessageAuthError), Err: "token exchange failed",
				Origin: d.AppURL, Text: "Authorization failed. You can close this window.",
			})
			return
		}

		setTokenCookies(w, d.Jar)
		d.Auth.Deliver(auth.Message{Origin: d.AppURL, Type: auth.MessageAuthSuccess})
		renderCallback(w, callbackPageData{
			Type:   string(auth.MessageAuthSuccess),
			Origin: d.AppURL, Text: "Connected. You can close this window.",
		})
	}
}

type statusResponse struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// AuthStatus reports whether a usable session exists. Request cookies are
// folded into the jar first so a fresh server still sees the client's
// copy.
func AuthStatus(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Jar.SeedFromRequest(r)

		rec := d.Auth.Token()
		resp := statusResponse{
			Connected: rec.Valid(d.TimeNow()),
			State:     d.Auth.ReportState().String(),
		}
		if !rec.ExpiresAt.IsZero() {
			resp.ExpiresAt = rec.ExpiresAt.UTC().Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RefreshToken forces a fresh access token, running at most one refresh
// grant. New cookies are emitted on success; failure clears them.
func RefreshToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Jar.SeedFromRequest(r)

		rec, err := d.Auth.EnsureFreshToken(r.Context())
		if err != nil {
			setTokenCookies(w, d.Jar)
			writeError(d, w, err)
			return
		}

		setTokenCookies(w, d.Jar)
		writeJSON(w, http.StatusOK, statusResponse{
			Connected: true,
			State:     d.Auth.State().String(),
			ExpiresAt: rec.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}

type storeTokensRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"` // seconds
}

// StoreTokens persists a token set obtained out of band (the client-side
// exchange path) into both sinks.
func StoreTokens(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req storeTokensRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		rec := domain.TokenRecord{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
		}
		if req.ExpiresIn > 0 {
			rec.ExpiresAt = d.TimeNow().Add(time.Duration(req.ExpiresIn) * time.Second)
		}

		if err := d.Auth.StoreTokens(r.Context(), rec); err != nil {
			writeError(d, w, err)
			return
		}

		setTokenCookies(w, d.Jar)
		writeJSON(w, http.StatusOK, map[string]string{"status": "stored"})
	}
}

// Disconnect drops the session from both sinks and expires the cookies.
// The remote session-clearing call is best effort.
func Disconnect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Auth.Disconnect(r.Context())
		setTokenCookies(w, d.Jar)
		d.Logger.Info("session disconnected",
			logger.String("remote_ip", r.RemoteAddr))
		writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
	}
}
