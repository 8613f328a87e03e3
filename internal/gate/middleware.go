package gate

import (
	"github.com/gofiber/fiber/v2"

	"github.com/protacc/storefront/internal/client"
	"github.com/protacc/storefront/internal/pkg/logging"
	"github.com/protacc/storefront/internal/session"
)

// sessionLocalsKey is where the hydrated session lives for downstream
// handlers.
const sessionLocalsKey = "storefront_session"

// Gate evaluates access per navigation against the persisted session.
type Gate struct {
	Store     session.Store
	Nav       *Navigator
	Logger    logging.Logger
	LoginPath string
	HomePath  string
}

// New builds a Gate over the given store.
func New(store session.Store, nav *Navigator, logger logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	if nav == nil {
		nav = NewNavigator(logger)
	}
	return &Gate{
		Store:     store,
		Nav:       nav,
		Logger:    logger,
		LoginPath: "/login",
		HomePath:  "/",
	}
}

// Hydrate reads the session once per request, stashes it in Locals, and
// propagates the bearer token through the request context for outgoing API
// calls. It never blocks a request on its own.
func (g *Gate) Hydrate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := g.Store.Read(c)
		c.Locals(sessionLocalsKey, sess)
		if token := sess.Token(); token != "" {
			c.SetUserContext(client.WithToken(c.UserContext(), token))
		}
		return c.Next()
	}
}

// Protected guards a route, optionally restricting it to a role set.
func (g *Gate) Protected(roles ...session.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)

		switch Evaluate(sess, roles...) {
		case RedirectToLogin:
			g.Logger.Info("anonymous access denied", "path", c.OriginalURL())
			g.Nav.SetRedirect(c)
			return c.Redirect(g.LoginPath, redirectStatus(c))
		case RedirectToHome:
			g.Logger.Warn("role denied", "path", c.OriginalURL(), "role", sess.User().Role)
			return c.Redirect(g.HomePath, redirectStatus(c))
		default:
			return c.Next()
		}
	}
}

// GuestOnly keeps authenticated users out of login and signup views.
func (g *Gate) GuestOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if EvaluateGuestOnly(CurrentSession(c)) == RedirectToHome {
			return c.Redirect(g.HomePath, fiber.StatusFound)
		}
		return c.Next()
	}
}

// ForceLogout clears every persisted session key, including any pending
// redirect, and sends the user to the login entry point. Used when the API
// rejects the bearer token mid-session.
func (g *Gate) ForceLogout(c *fiber.Ctx) error {
	g.Logger.Warn("forcing local logout", "path", c.OriginalURL())
	g.Store.Clear(c)
	g.Nav.Clear(c)
	c.Locals(sessionLocalsKey, session.New())
	return c.Redirect(g.LoginPath, redirectStatus(c))
}

// CurrentSession returns the session hydrated for this request. Routes not
// behind Hydrate get an empty anonymous session.
func CurrentSession(c *fiber.Ctx) *session.Session {
	if sess, ok := c.Locals(sessionLocalsKey).(*session.Session); ok && sess != nil {
		return sess
	}
	return session.New()
}

func redirectStatus(c *fiber.Ctx) int {
	if c.Method() == fiber.MethodGet {
		return fiber.StatusFound
	}
	return fiber.StatusSeeOther
}
