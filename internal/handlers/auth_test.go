package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protacc/storefront/internal/client"
	"github.com/protacc/storefront/internal/gate"
	"github.com/protacc/storefront/internal/pkg/logging"
	"github.com/protacc/storefront/internal/session"
)

type mockGateway struct {
	loginFn  func(ctx context.Context, email, password string) (*client.Credentials, error)
	signupFn func(ctx context.Context, input client.SignupInput) (client.SignupOutcome, error)
	verifyFn func(ctx context.Context, email, code string) error

	loginCalls  int
	signupCalls int
	verifyCalls int
}

func (m *mockGateway) Login(ctx context.Context, email, password string) (*client.Credentials, error) {
	m.loginCalls++
	if m.loginFn == nil {
		return nil, client.ErrAuthExpired
	}
	return m.loginFn(ctx, email, password)
}

func (m *mockGateway) Signup(ctx context.Context, input client.SignupInput) (client.SignupOutcome, error) {
	m.signupCalls++
	if m.signupFn == nil {
		return client.SignupVerificationRequired{Email: input.Email}, nil
	}
	return m.signupFn(ctx, input)
}

func (m *mockGateway) VerifyEmail(ctx context.Context, email, code string) error {
	m.verifyCalls++
	if m.verifyFn == nil {
		return nil
	}
	return m.verifyFn(ctx, email, code)
}

func newAuthApp(t *testing.T, gw AuthGateway) (*fiber.App, *session.CookieStore) {
	t.Helper()

	store := session.NewCookieStore(time.Hour, logging.Nop)
	nav := gate.NewNavigator(logging.Nop)
	g := gate.New(store, nav, logging.Nop)

	engine := django.New("../../views", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(g.Hydrate())

	ctrl := NewAuthController(
		WithAuthGateway(gw),
		WithAuthStore(store),
		WithAuthNavigator(nav),
		WithAuthLogger(logging.Nop),
	)
	ctrl.Register(app, g)

	return app, store
}

func formRequest(t *testing.T, path string, values url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func sessionCookies(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range resp.Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestLoginPostPersistsSessionAndRedirects(t *testing.T) {
	user := &session.User{ID: "u-1", FirstName: "Asha", Email: "asha@example.com", Role: session.RoleCustomer}
	gw := &mockGateway{
		loginFn: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			assert.Equal(t, "asha@example.com", email)
			assert.Equal(t, "secret123", password)
			return &client.Credentials{Token: "tok-abc", User: user}, nil
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/login", url.Values{
		"email":    {"asha@example.com"},
		"password": {"secret123"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookies := sessionCookies(resp)
	require.Contains(t, cookies, session.DefaultTokenKey)
	require.Contains(t, cookies, session.DefaultUserKey)
	assert.Equal(t, "tok-abc", cookies[session.DefaultTokenKey].Value)
	assert.NotEmpty(t, cookies[session.DefaultUserKey].Value)
}

func TestLoginPostReplaysRejectedRoute(t *testing.T) {
	gw := &mockGateway{
		loginFn: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "tok-abc", User: &session.User{ID: "u-1"}}, nil
		},
	}
	app, _ := newAuthApp(t, gw)

	req := formRequest(t, "/login", url.Values{
		"email":    {"asha@example.com"},
		"password": {"secret123"},
	})
	req.AddCookie(&http.Cookie{Name: gate.DefaultRejectedRouteKey, Value: "/orders?page=2"})

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/orders?page=2", resp.Header.Get("Location"))

	// the capture is consumed with the redirect
	captured, ok := sessionCookies(resp)[gate.DefaultRejectedRouteKey]
	require.True(t, ok)
	assert.Empty(t, captured.Value)
	assert.True(t, captured.Expires.Before(time.Now()))
}

func TestLoginPostRejectedLeavesSessionUntouched(t *testing.T) {
	gw := &mockGateway{
		loginFn: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return nil, client.ErrAuthExpired
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/login", url.Values{
		"email":    {"asha@example.com"},
		"password": {"wrong"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "your session has expired, please sign in again")

	cookies := sessionCookies(resp)
	assert.NotContains(t, cookies, session.DefaultTokenKey)
	assert.NotContains(t, cookies, session.DefaultUserKey)
}

func TestLoginPostValidationFailureNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/login", url.Values{
		"email":    {"not-an-email"},
		"password": {""},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, gw.loginCalls)
}

func TestLoginShowForAnonymous(t *testing.T) {
	app, _ := newAuthApp(t, &mockGateway{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Sign in to your account")
}

func TestLoginShowBouncesAuthenticated(t *testing.T) {
	app, store := newAuthApp(t, &mockGateway{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	for _, ck := range persistedCookies(t, store, "tok-abc", &session.User{ID: "u-1"}) {
		req.AddCookie(ck)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestSignupPostAuthenticatedOutcome(t *testing.T) {
	gw := &mockGateway{
		signupFn: func(ctx context.Context, input client.SignupInput) (client.SignupOutcome, error) {
			assert.Equal(t, "Asha", input.FirstName)
			assert.Equal(t, "9876543210", input.Phone)
			return client.SignupAuthenticated{
				Token: "tok-new",
				User:  &session.User{ID: "u-2", Email: input.Email},
			}, nil
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/signup", url.Values{
		"first_name":       {"Asha"},
		"last_name":        {"Rao"},
		"email":            {"asha@example.com"},
		"phone":            {"9876543210"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookies := sessionCookies(resp)
	assert.Contains(t, cookies, session.DefaultTokenKey)
	assert.Contains(t, cookies, session.DefaultUserKey)
}

func TestSignupPostVerificationRequiredOutcome(t *testing.T) {
	gw := &mockGateway{
		signupFn: func(ctx context.Context, input client.SignupInput) (client.SignupOutcome, error) {
			return client.SignupVerificationRequired{Email: input.Email}, nil
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/signup", url.Values{
		"first_name":       {"Asha"},
		"last_name":        {"Rao"},
		"email":            {"asha@example.com"},
		"phone":            {"9876543210"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "asha@example.com")
	assert.Contains(t, body, "Verify your email")

	// no credentials were issued
	cookies := sessionCookies(resp)
	assert.NotContains(t, cookies, session.DefaultTokenKey)
	assert.NotContains(t, cookies, session.DefaultUserKey)
}

func TestSignupPostValidationFailureNeverCallsGateway(t *testing.T) {
	gw := &mockGateway{}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/signup", url.Values{
		"first_name":       {"A"},
		"last_name":        {"Rao"},
		"email":            {"asha@example.com"},
		"phone":            {"12345"},
		"password":         {"secret123"},
		"confirm_password": {"different"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, gw.signupCalls)
}

func TestLogoutClearsEverything(t *testing.T) {
	app, store := newAuthApp(t, &mockGateway{})

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, ck := range persistedCookies(t, store, "tok-abc", &session.User{ID: "u-1"}) {
		req.AddCookie(ck)
	}
	req.AddCookie(&http.Cookie{Name: gate.DefaultRejectedRouteKey, Value: "/orders"})

	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	cookies := sessionCookies(resp)
	for _, name := range []string{session.DefaultTokenKey, session.DefaultUserKey, gate.DefaultRejectedRouteKey} {
		require.Contains(t, cookies, name)
		assert.Empty(t, cookies[name].Value)
		assert.True(t, cookies[name].Expires.Before(time.Now()), "cookie %s must be expired", name)
	}
}

func TestLogoutWhenAlreadyAnonymous(t *testing.T) {
	app, _ := newAuthApp(t, &mockGateway{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestVerifyEmailPostSuccessLeadsToLogin(t *testing.T) {
	gw := &mockGateway{
		verifyFn: func(ctx context.Context, email, code string) error {
			assert.Equal(t, "asha@example.com", email)
			assert.Equal(t, "123456", code)
			return nil
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/verify-email", url.Values{
		"email": {"asha@example.com"},
		"otp":   {"123456"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Equal(t, 1, gw.verifyCalls)

	// verification never issues credentials
	cookies := sessionCookies(resp)
	assert.NotContains(t, cookies, session.DefaultTokenKey)
}

func TestVerifyEmailPostRejectedCodeStaysOnForm(t *testing.T) {
	gw := &mockGateway{
		verifyFn: func(ctx context.Context, email, code string) error {
			return goerrors.New("the verification code is incorrect or has expired", goerrors.CategoryBadInput)
		},
	}
	app, _ := newAuthApp(t, gw)

	resp, err := app.Test(formRequest(t, "/verify-email", url.Values{
		"email": {"asha@example.com"},
		"otp":   {"000000"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "the verification code is incorrect or has expired")
	assert.Contains(t, body, `value="asha@example.com"`)
}

func TestVerifyEmailShowWithoutPendingEmail(t *testing.T) {
	app, _ := newAuthApp(t, &mockGateway{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/verify-email", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "No verification in progress")
}

func persistedCookies(t *testing.T, store *session.CookieStore, token string, user *session.User) []*http.Cookie {
	t.Helper()
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return store.Persist(c, token, user)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	return resp.Cookies()
}
