package auth

// Popup is a handle to the secondary authorization window. The manager
// never assumes the window completes the handshake; it may be closed by
// the user at any point.
type Popup interface {
	// Closed reports whether the window has been closed.
	Closed() bool
	// Close closes the window. Safe to call more than once.
	Close()
}

// PopupLauncher opens the provider authorization URL in a popup window.
// Launch failure (window creation blocked) must be reported as an error,
// not a nil popup.
type PopupLauncher interface {
	Open(authURL string) (Popup, error)
}

// ExternalLauncher stands in for a window the process does not manage:
// the client opens the popup itself and completion arrives through
// Deliver via the callback endpoint. Open always succeeds and the window
// is never observed closed.
type ExternalLauncher struct{}

func (ExternalLauncher) Open(string) (Popup, error) { return externalPopup{}, nil }

type externalPopup struct{}

func (externalPopup) Closed() bool { return false }
func (externalPopup) Close()       {}

// MessageType discriminates cross-window authorization messages.
type MessageType string

const (
	MessageAuthSuccess MessageType = "auth_success"
	MessageAuthError   MessageType = "auth_error"
)

// Message is one cross-window signal posted by the popup back to the app.
// Delivery is not guaranteed: the popup may navigate away from the app
// origin before posting, so the closed-popup poll is the fallback path.
type Message struct {
	Origin string
	Type   MessageType
	Err    string
}
