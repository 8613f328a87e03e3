package client

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeAuthExpired = "AUTH_TOKEN_REJECTED"
)

// ErrAuthExpired is returned for any authorization failure on an
// authenticated endpoint. Handlers react by forcing a local logout and
// sending the user to the login entry point.
var ErrAuthExpired = goerrors.New("your session has expired, please sign in again", goerrors.CategoryAuth).
	WithTextCode(textCodeAuthExpired).
	WithCode(goerrors.CodeUnauthorized)

// IsAuthExpired checks whether an error is the authorization failure signal.
func IsAuthExpired(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCodeAuthExpired
}

// UserMessage extracts the human readable message from a normalized error,
// falling back to a generic one for anything unrecognized.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}
	return "something went wrong, please try again"
}
