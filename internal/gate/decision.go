package gate

import "github.com/protacc/storefront/internal/session"

// Decision is the outcome of evaluating a navigation against the session.
type Decision int

const (
	// Allow lets the request through.
	Allow Decision = iota
	// RedirectToLogin sends an anonymous user to authenticate, capturing the
	// requested destination for replay.
	RedirectToLogin
	// RedirectToHome bounces an authenticated user whose role does not match.
	RedirectToHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect-to-login"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// Evaluate decides access for a protected view. The check is driven by the
// IsAuthenticated predicate, not the phase enum: presence of token and user
// together is the durable truth.
func Evaluate(sess *session.Session, roles ...session.UserRole) Decision {
	if sess == nil || !sess.IsAuthenticated() {
		return RedirectToLogin
	}
	if len(roles) > 0 && !sess.HasRole(roles...) {
		return RedirectToHome
	}
	return Allow
}

// EvaluateGuestOnly is the inverse gate for authentication pages: an already
// authenticated user is sent home instead of re-entering the login flow.
func EvaluateGuestOnly(sess *session.Session) Decision {
	if sess != nil && sess.IsAuthenticated() {
		return RedirectToHome
	}
	return Allow
}
