package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/logger"
)

type fakeSink struct {
	name string

	mu     sync.Mutex
	rec    domain.TokenRecord
	writes int
	clears int
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(_ context.Context, rec domain.TokenRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = rec
	f.writes++
	return nil
}

func (f *fakeSink) Read(context.Context) (domain.TokenRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rec, nil
}

func (f *fakeSink) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rec = domain.TokenRecord{}
	f.clears++
	return nil
}

type fakePopup struct {
	mu     sync.Mutex
	closed bool
}

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

type fakeLauncher struct {
	popup *fakePopup
	err   error
	urls  []string
}

func (l *fakeLauncher) Open(authURL string) (Popup, error) {
	l.urls = append(l.urls, authURL)
	if l.err != nil {
		return nil, l.err
	}
	return l.popup, nil
}

const testOrigin = "http://localhost:3000"

func testManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	if opts.Config == nil {
		opts.Config = &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8080/api/auth/google/callback",
			Endpoint:     oauth2.Endpoint{AuthURL: "http://auth.test", TokenURL: "http://token.test"},
		}
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("error", false)
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	return NewManager(opts)
}

func tokenEndpoint(t *testing.T, status int, body string, hits *int) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if hits != nil {
			*hits++
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectPopupBlocked(t *testing.T) {
	sink := &fakeSink{name: "a"}
	m := testManager(t, Options{
		Sinks:    []TokenSink{sink},
		Launcher: &fakeLauncher{err: assert.AnError},
	})

	err := m.Connect(context.Background(), testOrigin)
	assert.ErrorIs(t, err, apperrors.ErrPopupBlocked)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Zero(t, sink.writes)
}

func TestConnectSuccessViaMessage(t *testing.T) {
	popup := &fakePopup{}
	m := testManager(t, Options{Launcher: &fakeLauncher{popup: popup}})

	go func() {
		for m.State() != StateAuthenticating {
			time.Sleep(time.Millisecond)
		}
		m.Deliver(Message{Origin: testOrigin, Type: MessageAuthSuccess})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx, testOrigin))
	assert.Equal(t, StateAuthenticated, m.State())
	assert.True(t, popup.Closed())
}

func TestConnectIgnoresForeignOrigin(t *testing.T) {
	popup := &fakePopup{}
	m := testManager(t, Options{Launcher: &fakeLauncher{popup: popup}})

	go func() {
		for m.State() != StateAuthenticating {
			time.Sleep(time.Millisecond)
		}
		m.Deliver(Message{Origin: "http://evil.test", Type: MessageAuthSuccess})
		m.Deliver(Message{Origin: testOrigin, Type: MessageAuthError, Err: "denied"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := m.Connect(ctx, testOrigin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	assert.Equal(t, StateFailed, m.State())
}

func TestConnectPopupClosedFallsBackToStatus(t *testing.T) {
	popup := &fakePopup{}
	popup.Close()

	t.Run("status confirms the session", func(t *testing.T) {
		m := testManager(t, Options{
			Launcher: &fakeLauncher{popup: popup},
			Status:   func(context.Context) (bool, error) { return true, nil },
		})
		require.NoError(t, m.Connect(context.Background(), testOrigin))
		assert.Equal(t, StateAuthenticated, m.State())
	})

	t.Run("status denies the session", func(t *testing.T) {
		m := testManager(t, Options{
			Launcher: &fakeLauncher{popup: popup},
			Status:   func(context.Context) (bool, error) { return false, nil },
		})
		err := m.Connect(context.Background(), testOrigin)
		require.Error(t, err)
		assert.Equal(t, StateFailed, m.State())
	})
}

func TestConnectDropsSignalBufferedByEarlierAttempt(t *testing.T) {
	popup := &fakePopup{}
	m := testManager(t, Options{Launcher: &fakeLauncher{popup: popup}})

	sent := make(chan struct{})
	go func() {
		defer close(sent)
		for m.State() != StateAuthenticating {
			time.Sleep(time.Millisecond)
		}
		// the error terminates the flow; the success stays buffered
		m.msgCh <- Message{Origin: testOrigin, Type: MessageAuthError, Err: "denied"}
		m.msgCh <- Message{Origin: testOrigin, Type: MessageAuthSuccess}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := m.Connect(ctx, testOrigin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
	<-sent

	// the next attempt has no signal of its own and must not resolve off
	// the leftover success; the closed popup with no status checker fails it
	err = m.Connect(context.Background(), testOrigin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "popup closed")
	assert.NotEqual(t, StateAuthenticated, m.State())
}

func TestReportStateDecaysFailure(t *testing.T) {
	popup := &fakePopup{}
	popup.Close()
	m := testManager(t, Options{Launcher: &fakeLauncher{popup: popup}})

	require.Error(t, m.Connect(context.Background(), testOrigin))
	require.Equal(t, StateFailed, m.State())

	// the failure is reported exactly once
	assert.Equal(t, StateFailed, m.ReportState())
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Equal(t, StateUnauthenticated, m.ReportState())
}

func TestConnectRejectsReentry(t *testing.T) {
	popup := &fakePopup{}
	m := testManager(t, Options{Launcher: &fakeLauncher{popup: popup}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for m.State() != StateAuthenticating {
			time.Sleep(time.Millisecond)
		}
		assert.Error(t, m.Connect(context.Background(), testOrigin))
		m.Deliver(Message{Origin: testOrigin, Type: MessageAuthSuccess})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx, testOrigin))
	<-done
}

func TestExchangeCodePersistsToAllSinks(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"at","refresh_token":"rt","expires_in":3600,"token_type":"Bearer"}`, nil)

	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	m := testManager(t, Options{
		Config: &oauth2.Config{
			ClientID: "cid", ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
		},
		Sinks: []TokenSink{a, b},
	})

	rec, err := m.ExchangeCode(context.Background(), "code123")
	require.NoError(t, err)
	assert.Equal(t, "at", rec.AccessToken)
	assert.Equal(t, "rt", rec.RefreshToken)
	assert.False(t, rec.ExpiresAt.IsZero())

	assert.Equal(t, 1, a.writes)
	assert.Equal(t, 1, b.writes)
	assert.Equal(t, StateAuthenticated, m.State())
}

func TestExchangeCodeFailure(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)

	sink := &fakeSink{name: "a"}
	m := testManager(t, Options{
		Config: &oauth2.Config{
			ClientID: "cid", ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
		},
		Sinks: []TokenSink{sink},
	})

	_, err := m.ExchangeCode(context.Background(), "bad")
	assert.ErrorIs(t, err, apperrors.ErrTokenExchange)
	assert.Zero(t, sink.writes)
}

func TestEnsureFreshTokenValid(t *testing.T) {
	now := time.Now()
	sink := &fakeSink{name: "a", rec: domain.TokenRecord{
		AccessToken: "live", ExpiresAt: now.Add(time.Hour),
	}}
	m := testManager(t, Options{Sinks: []TokenSink{sink}})
	m.Restore(context.Background())

	rec, err := m.EnsureFreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "live", rec.AccessToken)
	assert.Equal(t, 0, sink.writes) // nothing rewritten
}

func TestEnsureFreshTokenWithoutRefreshToken(t *testing.T) {
	sink := &fakeSink{name: "a", rec: domain.TokenRecord{
		AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute),
	}}
	m := testManager(t, Options{Sinks: []TokenSink{sink}})
	m.Restore(context.Background())

	_, err := m.EnsureFreshToken(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestEnsureFreshTokenRefreshesOnce(t *testing.T) {
	hits := 0
	srv := tokenEndpoint(t, http.StatusOK,
		`{"access_token":"fresh","expires_in":3600,"token_type":"Bearer"}`, &hits)

	sink := &fakeSink{name: "a", rec: domain.TokenRecord{
		AccessToken: "stale", RefreshToken: "rt",
		ExpiresAt: time.Now().Add(-time.Minute),
	}}
	m := testManager(t, Options{
		Config: &oauth2.Config{
			ClientID: "cid", ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
		},
		Sinks: []TokenSink{sink},
	})
	m.Restore(context.Background())

	rec, err := m.EnsureFreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", rec.AccessToken)
	// the provider sent no new refresh token, the old one is preserved
	assert.Equal(t, "rt", rec.RefreshToken)
	assert.Equal(t, 1, hits)

	// the token is now valid, no second grant
	_, err = m.EnsureFreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestRefreshFailureClearsBothSinks(t *testing.T) {
	srv := tokenEndpoint(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)

	a := &fakeSink{name: "a", rec: domain.TokenRecord{
		AccessToken: "stale", RefreshToken: "rt",
		ExpiresAt: time.Now().Add(-time.Minute),
	}}
	b := &fakeSink{name: "b"}
	m := testManager(t, Options{
		Config: &oauth2.Config{
			ClientID: "cid", ClientSecret: "secret",
			Endpoint: oauth2.Endpoint{TokenURL: srv.URL},
		},
		Sinks: []TokenSink{a, b},
	})
	m.Restore(context.Background())

	_, err := m.EnsureFreshToken(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrRefreshFailed)

	assert.Equal(t, 1, a.clears)
	assert.Equal(t, 1, b.clears)
	assert.True(t, m.Token().IsZero())
	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestStoreTokens(t *testing.T) {
	sink := &fakeSink{name: "a"}
	m := testManager(t, Options{Sinks: []TokenSink{sink}})

	err := m.StoreTokens(context.Background(), domain.TokenRecord{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = m.StoreTokens(context.Background(), domain.TokenRecord{AccessToken: "at"})
	require.NoError(t, err)
	assert.Equal(t, 1, sink.writes)
	assert.Equal(t, StateAuthenticated, m.State())
	// missing expiry defaults to the access TTL
	assert.False(t, m.Token().ExpiresAt.IsZero())
}

func TestDisconnect(t *testing.T) {
	var cleared atomic.Bool
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleared.Store(true)
	}))
	defer remote.Close()

	sink := &fakeSink{name: "a", rec: domain.TokenRecord{AccessToken: "at"}}
	m := testManager(t, Options{
		Sinks:         []TokenSink{sink},
		DisconnectURL: remote.URL,
	})
	m.Restore(context.Background())
	require.Equal(t, StateAuthenticated, m.State())

	m.Disconnect(context.Background())
	assert.Equal(t, 1, sink.clears)
	assert.True(t, m.Token().IsZero())
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.True(t, cleared.Load())
}

func TestAuthCodeURL(t *testing.T) {
	m := testManager(t, Options{})
	u := m.AuthCodeURL("xyz")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "prompt=consent")
	assert.Contains(t, u, "state=xyz")
}
