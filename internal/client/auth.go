package client

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/protacc/storefront/internal/session"
)

// SignupInput carries the profile fields for account creation. Field names
// follow the API wire contract.
type SignupInput struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Credentials is a successful login result.
type Credentials struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// SignupOutcome is the tagged result of a signup call. The backend either
// issues credentials directly or asks for email verification first; callers
// switch on the concrete variant instead of sniffing field presence.
type SignupOutcome interface {
	isSignupOutcome()
}

// SignupAuthenticated means the backend issued credentials on signup.
type SignupAuthenticated struct {
	Token string
	User  *session.User
}

// SignupVerificationRequired means a one-time email code must be confirmed
// before the account can log in.
type SignupVerificationRequired struct {
	Email string
}

func (SignupAuthenticated) isSignupOutcome()        {}
func (SignupVerificationRequired) isSignupOutcome() {}

type signupResponse struct {
	Token string        `json:"token,omitempty"`
	User  *session.User `json:"user,omitempty"`
}

// Signup creates an account. The token, when issued directly, may arrive in
// the response body or in the Authorization response header.
func (c *Client) Signup(ctx context.Context, input SignupInput) (SignupOutcome, error) {
	res := signupResponse{}
	headers, err := c.do(ctx, http.MethodPost, "/auth/signup", input, &res)
	if err != nil {
		return nil, err
	}

	token := res.Token
	if token == "" {
		token = bearerFromHeader(headers.Get("Authorization"))
	}

	if token != "" && res.User != nil {
		return SignupAuthenticated{Token: token, User: res.User}, nil
	}

	return SignupVerificationRequired{Email: input.Email}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and user profile. Failure
// leaves no trace: the caller's session is untouched until it commits the
// returned credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	creds := &Credentials{}
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, creds); err != nil {
		return nil, err
	}

	if creds.Token == "" || creds.User == nil {
		c.logger.Error("login response missing token or user")
		return nil, goerrors.New("unexpected response from the service", goerrors.CategoryOperation).
			WithCode(goerrors.CodeInternal)
	}

	return creds, nil
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyEmail submits the 6 digit code tied to a pending signup. Success is
// an acknowledgment only; it never issues credentials.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/verify-email", verifyEmailRequest{Email: email, OTP: code}, nil)
	return err
}

func bearerFromHeader(header string) string {
	const scheme = "Bearer "
	if strings.HasPrefix(header, scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
