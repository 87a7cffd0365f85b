package apperrors

import "errors"

// Sentinel errors for the failure kinds the API surfaces. Callers wrap these
// with %w and add context; handlers map them to HTTP status codes.
var (
	// ErrValidation marks a missing required field on add/import/create.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an operation on a row or note id absent from the collection.
	ErrNotFound = errors.New("not found")

	// ErrRemoteFetch marks a failed row-list or note-list fetch. Callers fall
	// back to an empty or sample collection instead of propagating.
	ErrRemoteFetch = errors.New("remote fetch failed")

	// ErrPopupBlocked marks a popup window that could not be created.
	ErrPopupBlocked = errors.New("popup blocked")

	// ErrTokenExchange marks a failed authorization-code exchange.
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrRefreshFailed marks a failed token refresh. The session degrades to
	// unauthenticated and the user has to reconnect.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrUnauthenticated marks a protected action attempted without a usable token.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrImportParse marks a malformed import file. No partial apply happens.
	ErrImportParse = errors.New("import parse failed")
)
