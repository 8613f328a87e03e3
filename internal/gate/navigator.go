package gate

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/protacc/storefront/internal/pkg/logging"
)

const (
	// DefaultRejectedRouteKey is the cookie recording a denied destination.
	DefaultRejectedRouteKey = "rejected_route"
	// rejectedRouteTTL bounds how long a captured destination stays valid.
	rejectedRouteTTL = 5 * time.Minute
)

// Navigator captures the destination a user wanted before being forced to
// authenticate, and replays it exactly once after a successful login.
type Navigator struct {
	CookieKey string
	Default   string
	Secure    bool
	Logger    logging.Logger
}

// NewNavigator returns a navigator with the default cookie key and landing
// view.
func NewNavigator(logger logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Navigator{
		CookieKey: DefaultRejectedRouteKey,
		Default:   "/",
		Secure:    true,
		Logger:    logger,
	}
}

// SetRedirect records the currently requested URL as the pending destination.
func (n *Navigator) SetRedirect(c *fiber.Ctx) {
	n.Logger.Info("capturing rejected route", "key", n.CookieKey, "path", c.OriginalURL())

	c.Cookie(&fiber.Cookie{
		Name:     n.CookieKey,
		Value:    c.OriginalURL(),
		Expires:  time.Now().Add(rejectedRouteTTL),
		HTTPOnly: true,
		Secure:   n.Secure,
		SameSite: "Lax",
	})
}

// Redirect returns the captured destination or the default landing view. The
// capture is consumed: it is cleared so it cannot leak into a later login.
func (n *Navigator) Redirect(c *fiber.Ctx) string {
	r := c.Cookies(n.CookieKey)
	if r == "" {
		return n.Default
	}
	n.Clear(c)
	return r
}

// Clear drops any pending destination, e.g. on logout.
func (n *Navigator) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     n.CookieKey,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   n.Secure,
		SameSite: "Lax",
	})
}
