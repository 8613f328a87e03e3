package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"

	"github.com/protacc/storefront/internal/client"
	"github.com/protacc/storefront/internal/gate"
	"github.com/protacc/storefront/internal/pkg/logging"
	"github.com/protacc/storefront/internal/session"
)

// AuthGateway is the slice of the API client the auth flows need.
type AuthGateway interface {
	Signup(ctx context.Context, input client.SignupInput) (client.SignupOutcome, error)
	Login(ctx context.Context, email, password string) (*client.Credentials, error)
	VerifyEmail(ctx context.Context, email, code string) error
}

// AuthControllerRoutes are the paths the controller is mounted on.
type AuthControllerRoutes struct {
	Login       string
	Logout      string
	Signup      string
	VerifyEmail string
}

// AuthControllerViews are the template names the controller renders.
type AuthControllerViews struct {
	Login       string
	Signup      string
	VerifyEmail string
}

// AuthController drives the signup, verification and login flows against the
// remote API and keeps the persisted session in step.
type AuthController struct {
	Debug   bool
	Logger  logging.Logger
	Gateway AuthGateway
	Store   session.Store
	Nav     *gate.Navigator
	Routes  *AuthControllerRoutes
	Views   *AuthControllerViews
}

// AuthControllerOption configures an AuthController.
type AuthControllerOption func(*AuthController) *AuthController

// WithAuthGateway sets the API gateway.
func WithAuthGateway(gw AuthGateway) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Gateway = gw
		return a
	}
}

// WithAuthStore sets the persisted session store.
func WithAuthStore(store session.Store) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Store = store
		return a
	}
}

// WithAuthNavigator sets the redirect-preserving navigator.
func WithAuthNavigator(nav *gate.Navigator) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Nav = nav
		return a
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(logger logging.Logger) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Logger = logger
		return a
	}
}

// WithAuthDebug toggles debug payload printing.
func WithAuthDebug(debug bool) AuthControllerOption {
	return func(a *AuthController) *AuthController {
		a.Debug = debug
		return a
	}
}

// NewAuthController builds a controller with default routes and views.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: logging.Default(),
		Routes: &AuthControllerRoutes{
			Login:       "/login",
			Logout:      "/logout",
			Signup:      "/signup",
			VerifyEmail: "/verify-email",
		},
		Views: &AuthControllerViews{
			Login:       "auth/login",
			Signup:      "auth/signup",
			VerifyEmail: "auth/verify",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Gateway == nil {
		panic("missing AuthGateway in auth controller")
	}
	if c.Store == nil {
		panic("missing session store in auth controller")
	}
	if c.Nav == nil {
		c.Nav = gate.NewNavigator(c.Logger)
	}

	return c
}

// Register mounts the auth routes. The guest gate keeps authenticated users
// out of the login and signup views.
func (a *AuthController) Register(app fiber.Router, g *gate.Gate) {
	app.Get(a.Routes.Login, g.GuestOnly(), a.LoginShow)
	app.Post(a.Routes.Login, g.GuestOnly(), a.LoginPost)
	app.Get(a.Routes.Logout, a.LogOut)
	app.Get(a.Routes.Signup, g.GuestOnly(), a.SignupShow)
	app.Post(a.Routes.Signup, g.GuestOnly(), a.SignupPost)
	app.Get(a.Routes.VerifyEmail, g.GuestOnly(), a.VerifyEmailShow)
	app.Post(a.Routes.VerifyEmail, g.GuestOnly(), a.VerifyEmailPost)
}

func (a *AuthController) LoginShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Login, viewCtx(c, fiber.Map{
		"errors": nil,
		"record": nil,
	}))
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).Render(a.Views.Login, viewCtx(c, fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		}))
	}

	if err := payload.Validate(); err != nil {
		return c.Render(a.Views.Login, viewCtx(c, fiber.Map{
			"validation": FormatValidationErrorToMap(err),
			"record":     payload,
		}))
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	sess := gate.CurrentSession(c)
	tag := sess.Begin()

	creds, err := a.Gateway.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Warn("login rejected", "email", payload.Email, "error", err)
		return c.Render(a.Views.Login, viewCtx(c, fiber.Map{
			"errors": map[string]string{"authentication": client.UserMessage(err)},
			"record": payload,
		}))
	}

	// A response that settled after a newer transition must not win.
	if sess.Stale(tag) {
		a.Logger.Warn("discarding stale login response", "email", payload.Email)
		return c.Redirect(a.Nav.Default, fiber.StatusSeeOther)
	}

	if err := sess.Login(creds.Token, creds.User); err != nil {
		a.Logger.Error("session login transition", "error", err)
		return c.Render(a.Views.Login, viewCtx(c, fiber.Map{
			"errors": map[string]string{"authentication": "Authentication Error"},
			"record": payload,
		}))
	}

	// User before token: a partial write must read back as anonymous.
	if err := a.Store.Persist(c, creds.Token, creds.User); err != nil {
		a.Logger.Error("persist session", "error", err)
		a.Store.Clear(c)
		return c.Render(a.Views.Login, viewCtx(c, fiber.Map{
			"errors": map[string]string{"authentication": "Authentication Error"},
			"record": payload,
		}))
	}

	redirect := a.Nav.Redirect(c)
	a.Logger.Info("login ok", "email", payload.Email, "redirect", redirect)

	return c.Redirect(redirect, fiber.StatusSeeOther)
}

// LogOut is local only: both persisted keys and any pending redirect are
// cleared without touching the network.
func (a *AuthController) LogOut(c *fiber.Ctx) error {
	gate.CurrentSession(c).Logout()
	a.Store.Clear(c)
	a.Nav.Clear(c)
	return c.Redirect("/", fiber.StatusTemporaryRedirect)
}

func (a *AuthController) SignupShow(c *fiber.Ctx) error {
	return c.Render(a.Views.Signup, viewCtx(c, fiber.Map{
		"errors": map[string]string{},
		"record": SignupPayload{},
	}))
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).Render(a.Views.Signup, viewCtx(c, fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
			"record": payload,
		}))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Info("signup validation failed", "error", err)
		return c.Render(a.Views.Signup, viewCtx(c, fiber.Map{
			"validation": FormatValidationErrorToMap(err),
			"record":     payload,
		}))
	}

	outcome, err := a.Gateway.Signup(c.UserContext(), client.SignupInput{
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Email:           payload.Email,
		Phone:           payload.Phone,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})
	if err != nil {
		a.Logger.Error("signup rejected", "email", payload.Email, "error", err)
		return c.Render(a.Views.Signup, viewCtx(c, fiber.Map{
			"errors": map[string]string{"signup": client.UserMessage(err)},
			"record": payload,
		}))
	}

	sess := gate.CurrentSession(c)

	switch res := outcome.(type) {
	case client.SignupAuthenticated:
		if err := sess.Login(res.Token, res.User); err != nil {
			a.Logger.Error("session login transition", "error", err)
			return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
		}
		if err := a.Store.Persist(c, res.Token, res.User); err != nil {
			a.Logger.Error("persist session", "error", err)
			a.Store.Clear(c)
			return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
		}
		return c.Redirect("/", fiber.StatusSeeOther)

	case client.SignupVerificationRequired:
		if err := sess.StartVerification(res.Email); err != nil {
			a.Logger.Error("start verification transition", "error", err)
		}
		a.Logger.Info("signup pending verification", "email", res.Email)
		return c.Render(a.Views.VerifyEmail, viewCtx(c, fiber.Map{
			"errors": map[string]string{},
			"email":  res.Email,
		}))

	default:
		a.Logger.Error("unknown signup outcome")
		return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
	}
}

// VerifyEmailShow renders the code entry form. Without a pending email there
// is no verification in progress and the form says so.
func (a *AuthController) VerifyEmailShow(c *fiber.Ctx) error {
	return c.Render(a.Views.VerifyEmail, viewCtx(c, fiber.Map{
		"errors": map[string]string{},
		"email":  c.Query("email"),
	}))
}

func (a *AuthController) VerifyEmailPost(c *fiber.Ctx) error {
	payload := new(VerifyEmailPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("verify parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).Render(a.Views.VerifyEmail, viewCtx(c, fiber.Map{
			"errors": map[string]string{"form": "Failed to parse form"},
			"email":  payload.Email,
		}))
	}

	if err := payload.Validate(); err != nil {
		return c.Render(a.Views.VerifyEmail, viewCtx(c, fiber.Map{
			"validation": FormatValidationErrorToMap(err),
			"email":      payload.Email,
		}))
	}

	sess := gate.CurrentSession(c)
	if err := sess.StartVerification(payload.Email); err != nil {
		a.Logger.Error("start verification transition", "error", err)
	}

	if err := a.Gateway.VerifyEmail(c.UserContext(), payload.Email, payload.OTP); err != nil {
		a.Logger.Warn("email verification rejected", "email", payload.Email, "error", err)
		return c.Render(a.Views.VerifyEmail, viewCtx(c, fiber.Map{
			"errors": map[string]string{"verification": client.UserMessage(err)},
			"email":  payload.Email,
		}))
	}

	// Verification acknowledges the email only; an explicit login follows.
	if err := sess.CompleteVerification(); err != nil {
		a.Logger.Error("complete verification transition", "error", err)
	}

	a.Logger.Info("email verified", "email", payload.Email)
	return c.Redirect(a.Routes.Login, fiber.StatusSeeOther)
}
