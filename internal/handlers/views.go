package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/protacc/storefront/internal/gate"
)

// viewCtx folds the current session into the template bindings so the layout
// can render the right navigation state.
func viewCtx(c *fiber.Ctx, bind fiber.Map) fiber.Map {
	if bind == nil {
		bind = fiber.Map{}
	}

	sess := gate.CurrentSession(c)
	bind["is_authenticated"] = sess.IsAuthenticated()
	if user := sess.User(); user != nil {
		bind["current_user"] = user
	}

	return bind
}
