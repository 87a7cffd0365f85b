package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
	"github.com/adisetya/sheethub/internal/logger"
)

// State is the token lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateFailed:
		return "failed"
	default:
		return "unauthenticated"
	}
}

// DefaultPollInterval is the popup-closed detection tick.
const DefaultPollInterval = time.Second

// StatusChecker asks the provider whether the stored session is valid.
// Used on the popup-closed path, where the success message may have been
// lost.
type StatusChecker func(ctx context.Context) (bool, error)

// Options configures a Manager.
type Options struct {
	Config        *oauth2.Config
	Sinks         []TokenSink // cookie jar + client-local store
	Launcher      PopupLauncher
	Status        StatusChecker
	DisconnectURL string       // remote session-clearing endpoint, best effort
	HTTPClient    *http.Client // nil = http.DefaultClient
	PollInterval  time.Duration
	Logger        logger.Logger
	Now           func() time.Time
}

// Manager drives the OAuth2 token lifecycle: popup authorization, code
// exchange, lazy refresh before protected actions, and dual-sink
// persistence. All state transitions are observable via Status().
type Manager struct {
	cfg      *oauth2.Config
	sinks    []TokenSink
	launcher PopupLauncher
	status   StatusChecker
	httpc    *http.Client
	poll     time.Duration
	log      logger.Logger
	now      func() time.Time

	disconnectURL string

	mu    sync.Mutex
	state State
	token domain.TokenRecord
	msgCh chan Message
}

// NewManager wires a Manager from options.
func NewManager(opts Options) *Manager {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		cfg:           opts.Config,
		sinks:         opts.Sinks,
		launcher:      opts.Launcher,
		status:        opts.Status,
		httpc:         opts.HTTPClient,
		poll:          opts.PollInterval,
		log:           opts.Logger,
		now:           opts.Now,
		disconnectURL: opts.DisconnectURL,
		state:         StateUnauthenticated,
		msgCh:         make(chan Message, 4),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ReportState returns the lifecycle state for a status read. Failed is a
// transient display state: it is reported once, then decays to
// Unauthenticated.
func (m *Manager) ReportState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.state
	if s == StateFailed {
		m.state = StateUnauthenticated
	}
	return s
}

// SetStatus installs the provider status checker consulted on the
// popup-closed completion path. Wiring-time only, before the first Connect.
func (m *Manager) SetStatus(sc StatusChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = sc
}

// Token returns the current in-memory token record.
func (m *Manager) Token() domain.TokenRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Restore seeds the manager from the first sink holding token material.
// Called once at startup. The two sinks may disagree; the first hit wins.
func (m *Manager) Restore(ctx context.Context) {
	for _, s := range m.sinks {
		rec, err := s.Read(ctx)
		if err != nil {
			m.log.Warn("failed to read token sink",
				logger.String("sink", s.Name()), logger.Error(err))
			continue
		}
		if rec.IsZero() {
			continue
		}
		m.mu.Lock()
		m.token = rec
		m.state = StateAuthenticated
		m.mu.Unlock()
		m.log.Info("restored session from sink", logger.String("sink", s.Name()))
		return
	}
}

// Deliver feeds a cross-window message into an in-flight Connect. Late or
// duplicate arrivals after the state has left Authenticating are no-ops.
func (m *Manager) Deliver(msg Message) {
	m.mu.Lock()
	authenticating := m.state == StateAuthenticating
	m.mu.Unlock()
	if !authenticating {
		return
	}
	select {
	case m.msgCh <- msg:
	default:
	}
}

// AuthCodeURL builds the provider authorization URL with the fixed scope
// and redirect URI.
func (m *Manager) AuthCodeURL(state string) string {
	return m.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Connect opens the authorization popup and blocks until the flow reaches
// a terminal state. Two independent completion signals are raced: the
// cross-window message and the popup-closed poll; whichever fires first
// wins and the other is cancelled with the ticker. Connect never leaves
// the manager in Authenticating.
func (m *Manager) Connect(ctx context.Context, origin string) error {
	m.mu.Lock()
	if m.state == StateAuthenticating {
		m.mu.Unlock()
		return errors.New("connect already in progress")
	}
	m.state = StateAuthenticating
	m.mu.Unlock()

	// Flush signals buffered by an earlier attempt; each flow must only
	// resolve on its own completion messages.
	for len(m.msgCh) > 0 {
		<-m.msgCh
	}

	popup, err := m.launcher.Open(m.AuthCodeURL(""))
	if err != nil {
		m.setState(StateUnauthenticated)
		return fmt.Errorf("%w: %v", apperrors.ErrPopupBlocked, err)
	}

	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			popup.Close()
			m.setState(StateFailed)
			return ctx.Err()

		case msg := <-m.msgCh:
			if msg.Origin != origin {
				continue
			}
			switch msg.Type {
			case MessageAuthSuccess:
				popup.Close()
				m.setState(StateAuthenticated)
				m.log.Info("authorization completed via message")
				return nil
			case MessageAuthError:
				popup.Close()
				m.setState(StateFailed)
				if msg.Err == "" {
					msg.Err = "authorization denied"
				}
				return fmt.Errorf("authorization failed: %s", msg.Err)
			}

		case <-ticker.C:
			if !popup.Closed() {
				continue
			}
			// The success message may have been lost when the popup
			// navigated off-origin, so ask the provider directly.
			m.mu.Lock()
			status := m.status
			m.mu.Unlock()
			if status != nil {
				ok, err := status(ctx)
				if err == nil && ok {
					m.setState(StateAuthenticated)
					m.log.Info("authorization completed via popup-close status check")
					return nil
				}
			}
			m.setState(StateFailed)
			return errors.New("authorization cancelled: popup closed")
		}
	}
}

// ExchangeCode posts the authorization code to the token endpoint and, on
// success, persists the returned tokens into every sink. Writing only one
// sink would silently break whichever code path reads the other, so sink
// failures are surfaced. No automatic retry.
func (m *Manager) ExchangeCode(ctx context.Context, code string) (domain.TokenRecord, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpc)
	tok, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return domain.TokenRecord{}, fmt.Errorf("%w: %v", apperrors.ErrTokenExchange, err)
	}

	rec := domain.TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = m.now().Add(AccessTokenTTL)
	}

	if err := m.persist(ctx, rec); err != nil {
		return rec, err
	}

	m.mu.Lock()
	m.token = rec
	m.state = StateAuthenticated
	m.mu.Unlock()
	return rec, nil
}

// EnsureFreshToken returns a usable access token for a protected action.
// A valid token returns immediately. An expired token with a refresh
// token triggers exactly one refresh attempt; on failure both sinks are
// cleared and the session degrades to unauthenticated. Without a refresh
// token no network I/O happens.
func (m *Manager) EnsureFreshToken(ctx context.Context) (domain.TokenRecord, error) {
	m.mu.Lock()
	rec := m.token
	m.mu.Unlock()

	if rec.Valid(m.now()) {
		return rec, nil
	}
	if rec.RefreshToken == "" {
		return domain.TokenRecord{}, apperrors.ErrUnauthenticated
	}

	m.setState(StateRefreshing)
	fresh, err := m.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		return domain.TokenRecord{}, err
	}
	return fresh, nil
}

// Refresh performs a single refresh-token grant. The refresh token is
// preserved unless the provider returns a new one. On failure all token
// material is discarded from every sink.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (domain.TokenRecord, error) {
	hctx := context.WithValue(ctx, oauth2.HTTPClient, m.httpc)
	tok, err := m.cfg.TokenSource(hctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		m.clearSinks(ctx)
		m.mu.Lock()
		m.token = domain.TokenRecord{}
		m.state = StateUnauthenticated
		m.mu.Unlock()
		m.log.Warn("token refresh failed, session cleared", logger.Error(err))
		return domain.TokenRecord{}, fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
	}

	rec := domain.TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if rec.RefreshToken == "" {
		rec.RefreshToken = refreshToken
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = m.now().Add(AccessTokenTTL)
	}

	if err := m.persist(ctx, rec); err != nil {
		return rec, err
	}

	m.mu.Lock()
	m.token = rec
	m.state = StateAuthenticated
	m.mu.Unlock()
	return rec, nil
}

// StoreTokens persists an externally obtained token set into every sink,
// mirroring the store-tokens endpoint of the reference flow.
func (m *Manager) StoreTokens(ctx context.Context, rec domain.TokenRecord) error {
	if rec.AccessToken == "" {
		return fmt.Errorf("%w: missing required field %q", apperrors.ErrValidation, "access_token")
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = m.now().Add(AccessTokenTTL)
	}
	if err := m.persist(ctx, rec); err != nil {
		return err
	}
	m.mu.Lock()
	if rec.RefreshToken == "" {
		rec.RefreshToken = m.token.RefreshToken
	}
	m.token = rec
	m.state = StateAuthenticated
	m.mu.Unlock()
	return nil
}

// Disconnect clears both sink copies and notifies the remote
// session-clearing endpoint. The remote call is best effort; local
// clearing happens regardless of its outcome.
func (m *Manager) Disconnect(ctx context.Context) {
	m.clearSinks(ctx)
	m.mu.Lock()
	m.token = domain.TokenRecord{}
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if m.disconnectURL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.disconnectURL, nil)
	if err != nil {
		return
	}
	resp, err := m.httpc.Do(req)
	if err != nil {
		m.log.Debug("remote session clear failed", logger.Error(err))
		return
	}
	_ = resp.Body.Close()
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	m.log.Debug("auth state transition", logger.String("state", s.String()))
}

func (m *Manager) persist(ctx context.Context, rec domain.TokenRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) clearSinks(ctx context.Context) {
	for _, s := range m.sinks {
		if err := s.Clear(ctx); err != nil {
			m.log.Warn("failed to clear token sink",
				logger.String("sink", s.Name()), logger.Error(err))
		}
	}
}
