package session

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_SESSION_TRANSITION"
)

// ErrInvalidTransition is returned when a requested phase change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid session phase transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// Phase is the coarse stage of the authentication flow.
type Phase string

const (
	// PhaseAnonymous is the initial phase, no credential held.
	PhaseAnonymous Phase = "anonymous"
	// PhasePendingVerification means a signup completed and an email code is outstanding.
	PhasePendingVerification Phase = "pending_email_verification"
	// PhaseAuthenticated means both token and user are present.
	PhaseAuthenticated Phase = "authenticated"
)

// User mirrors the profile object issued by the services API.
type User struct {
	ID            string     `json:"id,omitempty"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Role          UserRole   `json:"role,omitempty"`
	EmailVerified bool       `json:"is_email_verified,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// FullName joins the name fields for display.
func (u *User) FullName() string {
	switch {
	case u == nil:
		return ""
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Session is the client's belief about who is logged in. Phase bookkeeping is
// best effort, in-memory state; the durable source of truth is presence of
// token and user together.
type Session struct {
	token        string
	user         *User
	phase        Phase
	pendingEmail string
	rev          uint64
}

// transitions is the legal phase graph. Login is allowed from every phase so
// it is handled outside the table.
var transitions = map[Phase]map[Phase]struct{}{
	PhaseAnonymous: {
		PhasePendingVerification: {},
	},
	PhasePendingVerification: {
		PhaseAnonymous: {},
	},
	PhaseAuthenticated: {},
}

// New returns an empty anonymous session.
func New() *Session {
	return &Session{phase: PhaseAnonymous}
}

// Hydrate rebuilds a session from persisted token and user. The phase is
// derived, never stored: both present means authenticated, anything else is
// anonymous (pending verification never survives a reload).
func Hydrate(token string, user *User) *Session {
	s := &Session{token: token, user: user, phase: PhaseAnonymous}
	if s.IsAuthenticated() {
		s.phase = PhaseAuthenticated
	}
	return s
}

func (s *Session) Token() string        { return s.token }
func (s *Session) User() *User          { return s.user }
func (s *Session) Phase() Phase         { return s.phase }
func (s *Session) PendingEmail() string { return s.pendingEmail }

// IsAuthenticated is the predicate authorization checks must use.
func (s *Session) IsAuthenticated() bool {
	return s.token != "" && s.user != nil
}

// Begin tags an in-flight operation with the current revision. Pair with
// Stale to discard a response that settles after a newer transition.
func (s *Session) Begin() uint64 {
	return s.rev
}

// Stale reports whether a transition committed since the tag was taken.
func (s *Session) Stale(tag uint64) bool {
	return s.rev != tag
}

// StartVerification moves the session into the pending email verification
// phase and remembers the address the code was sent to. The pending email is
// transient: it is never persisted.
func (s *Session) StartVerification(email string) error {
	if err := s.canTransition(PhasePendingVerification); err != nil {
		return err
	}
	s.phase = PhasePendingVerification
	s.pendingEmail = email
	s.rev++
	return nil
}

// CompleteVerification returns to anonymous after a successful code check.
// Verification by itself never authenticates; an explicit login follows.
func (s *Session) CompleteVerification() error {
	if s.phase != PhasePendingVerification {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": s.phase,
			"to":   PhaseAnonymous,
		})
	}
	s.phase = PhaseAnonymous
	s.pendingEmail = ""
	s.rev++
	return nil
}

// Login installs credentials and moves to authenticated. Allowed from any
// phase: a user may log in mid-verification or re-login while authenticated.
func (s *Session) Login(token string, user *User) error {
	if token == "" || user == nil {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"reason": "login requires both token and user",
		})
	}
	s.token = token
	s.user = user
	s.phase = PhaseAuthenticated
	s.pendingEmail = ""
	s.rev++
	return nil
}

// Logout resets to anonymous, dropping credentials and any pending
// verification. Idempotent: logging out twice is a no-op the second time.
func (s *Session) Logout() {
	if s.phase == PhaseAnonymous && s.token == "" && s.user == nil && s.pendingEmail == "" {
		return
	}
	s.token = ""
	s.user = nil
	s.phase = PhaseAnonymous
	s.pendingEmail = ""
	s.rev++
}

func (s *Session) canTransition(to Phase) error {
	allowed, ok := transitions[s.phase]
	if ok {
		if _, ok := allowed[to]; ok {
			return nil
		}
	}
	return ErrInvalidTransition.WithMetadata(map[string]any{
		"from": s.phase,
		"to":   to,
	})
}
