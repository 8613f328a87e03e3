package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/protacc/storefront/internal/client"
	"github.com/protacc/storefront/internal/gate"
	"github.com/protacc/storefront/internal/pkg/logging"
	"github.com/protacc/storefront/internal/session"
)

// CatalogAPI reads the public service catalog.
type CatalogAPI interface {
	Categories(ctx context.Context) ([]client.Category, error)
	Services(ctx context.Context) ([]client.Service, error)
	ServiceBySlug(ctx context.Context, slug string) (*client.Service, error)
}

// CartAPI mutates the authenticated user's cart.
type CartAPI interface {
	CartItems(ctx context.Context) ([]client.CartItem, error)
	AddToCart(ctx context.Context, serviceID int64) error
	RemoveFromCart(ctx context.Context, serviceID int64) error
}

// OrdersAPI drives the order lifecycle.
type OrdersAPI interface {
	CreateOrder(ctx context.Context, serviceID int64) (*client.Order, error)
	Orders(ctx context.Context) ([]client.Order, error)
	OrderByNumber(ctx context.Context, orderNumber string) (*client.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*client.Order, error)
	OrderHistory(ctx context.Context, orderID int64) ([]client.OrderEvent, error)
}

// UsersAPI reads user profiles.
type UsersAPI interface {
	Profile(ctx context.Context) (*session.User, error)
	AdminUsers(ctx context.Context) ([]session.User, error)
}

// StorefrontController renders the catalog, cart, order and profile pages.
type StorefrontController struct {
	Catalog CatalogAPI
	Cart    CartAPI
	Orders  OrdersAPI
	Users   UsersAPI
	Gate    *gate.Gate
	Logger  logging.Logger
}

// NewStorefrontController wires the page handlers over the API client.
func NewStorefrontController(api *client.Client, g *gate.Gate, logger logging.Logger) *StorefrontController {
	if logger == nil {
		logger = logging.Default()
	}
	return &StorefrontController{
		Catalog: api,
		Cart:    api,
		Orders:  api,
		Users:   api,
		Gate:    g,
		Logger:  logger,
	}
}

// Register mounts the storefront routes behind the authorization gate.
func (s *StorefrontController) Register(app fiber.Router, g *gate.Gate) {
	app.Get("/", s.Home)
	app.Get("/services", s.ServicesIndex)
	app.Get("/services/:slug", s.ServiceShow)

	app.Get("/cart", g.Protected(), s.CartIndex)
	app.Post("/cart/:serviceId", g.Protected(), s.CartAdd)
	app.Post("/cart/:serviceId/remove", g.Protected(), s.CartRemove)

	app.Post("/orders/services/:serviceId", g.Protected(), s.OrderCreate)
	app.Get("/orders", g.Protected(), s.OrdersIndex)
	app.Get("/orders/:orderNumber", g.Protected(), s.OrderShow)
	app.Post("/orders/:orderId/status", g.Protected(session.RoleAdmin), s.OrderStatusUpdate)

	app.Get("/profile", g.Protected(), s.ProfileShow)
	app.Get("/admin/users", g.Protected(session.RoleAdmin), s.AdminUsersIndex)
}

func (s *StorefrontController) Home(c *fiber.Ctx) error {
	categories, err := s.Catalog.Categories(c.UserContext())
	if err != nil {
		s.Logger.Error("home categories fetch", "error", err)
	}

	return c.Render("home", viewCtx(c, fiber.Map{
		"categories": categories,
	}))
}

func (s *StorefrontController) ServicesIndex(c *fiber.Ctx) error {
	ctx := c.UserContext()

	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		s.Logger.Error("categories fetch", "error", err)
	}

	services, err := s.Catalog.Services(ctx)
	if err != nil {
		s.Logger.Error("services fetch", "error", err)
		return c.Render("services/index", viewCtx(c, fiber.Map{
			"error_message": client.UserMessage(err),
			"categories":    categories,
		}))
	}

	return c.Render("services/index", viewCtx(c, fiber.Map{
		"categories": categories,
		"services":   services,
	}))
}

func (s *StorefrontController) ServiceShow(c *fiber.Ctx) error {
	service, err := s.Catalog.ServiceBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		s.Logger.Warn("service fetch", "slug", c.Params("slug"), "error", err)
		return c.Status(fiber.StatusNotFound).Render("errors/404", viewCtx(c, fiber.Map{
			"message": client.UserMessage(err),
		}))
	}

	return c.Render("services/show", viewCtx(c, fiber.Map{
		"service": service,
	}))
}

func (s *StorefrontController) CartIndex(c *fiber.Ctx) error {
	items, err := s.Cart.CartItems(c.UserContext())
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("cart fetch", "error", err)
		return c.Render("cart/index", viewCtx(c, fiber.Map{
			"error_message": client.UserMessage(err),
		}))
	}

	total := 0.0
	booking := 0.0
	for _, item := range items {
		total += item.Service.Price
		booking += item.Service.BookingAmount
	}

	return c.Render("cart/index", viewCtx(c, fiber.Map{
		"items":          items,
		"total_price":    total,
		"booking_amount": booking,
	}))
}

func (s *StorefrontController) CartAdd(c *fiber.Ctx) error {
	serviceID, err := strconv.ParseInt(c.Params("serviceId"), 10, 64)
	if err != nil {
		return c.Redirect("/services", fiber.StatusSeeOther)
	}

	if err := s.Cart.AddToCart(c.UserContext(), serviceID); err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("cart add", "service_id", serviceID, "error", err)
	}

	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (s *StorefrontController) CartRemove(c *fiber.Ctx) error {
	serviceID, err := strconv.ParseInt(c.Params("serviceId"), 10, 64)
	if err != nil {
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}

	if err := s.Cart.RemoveFromCart(c.UserContext(), serviceID); err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("cart remove", "service_id", serviceID, "error", err)
	}

	return c.Redirect("/cart", fiber.StatusSeeOther)
}

func (s *StorefrontController) OrderCreate(c *fiber.Ctx) error {
	serviceID, err := strconv.ParseInt(c.Params("serviceId"), 10, 64)
	if err != nil {
		return c.Redirect("/cart", fiber.StatusSeeOther)
	}

	order, err := s.Orders.CreateOrder(c.UserContext(), serviceID)
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("order create", "service_id", serviceID, "error", err)
		return c.Render("cart/index", viewCtx(c, fiber.Map{
			"error_message": client.UserMessage(err),
		}))
	}

	s.Logger.Info("order created", "order_number", order.OrderNumber)
	return c.Redirect("/orders/"+order.OrderNumber, fiber.StatusSeeOther)
}

func (s *StorefrontController) OrdersIndex(c *fiber.Ctx) error {
	orders, err := s.Orders.Orders(c.UserContext())
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("orders fetch", "error", err)
		return c.Render("orders/index", viewCtx(c, fiber.Map{
			"error_message": client.UserMessage(err),
		}))
	}

	return c.Render("orders/index", viewCtx(c, fiber.Map{
		"orders": orders,
	}))
}

func (s *StorefrontController) OrderShow(c *fiber.Ctx) error {
	ctx := c.UserContext()

	order, err := s.Orders.OrderByNumber(ctx, c.Params("orderNumber"))
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Warn("order fetch", "order_number", c.Params("orderNumber"), "error", err)
		return c.Status(fiber.StatusNotFound).Render("errors/404", viewCtx(c, fiber.Map{
			"message": client.UserMessage(err),
		}))
	}

	history, err := s.Orders.OrderHistory(ctx, order.ID)
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Warn("order history fetch", "order_id", order.ID, "error", err)
	}

	return c.Render("orders/show", viewCtx(c, fiber.Map{
		"order":   order,
		"history": history,
	}))
}

func (s *StorefrontController) OrderStatusUpdate(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("orderId"), 10, 64)
	if err != nil {
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}

	payload := new(OrderStatusPayload)
	if err := c.BodyParser(payload); err != nil {
		s.Logger.Error("order status parse payload", "error", err)
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}

	if err := payload.Validate(); err != nil {
		s.Logger.Warn("order status validation", "error", err)
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}

	order, err := s.Orders.UpdateOrderStatus(c.UserContext(), orderID, payload.Status)
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("order status update", "order_id", orderID, "error", err)
		return c.Redirect("/orders", fiber.StatusSeeOther)
	}

	return c.Redirect("/orders/"+order.OrderNumber, fiber.StatusSeeOther)
}

func (s *StorefrontController) ProfileShow(c *fiber.Ctx) error {
	profile, err := s.Users.Profile(c.UserContext())
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("profile fetch", "error", err)
		// Fall back to the persisted snapshot rather than a blank page.
		profile = gate.CurrentSession(c).User()
	}

	return c.Render("profile/show", viewCtx(c, fiber.Map{
		"profile": profile,
	}))
}

func (s *StorefrontController) AdminUsersIndex(c *fiber.Ctx) error {
	users, err := s.Users.AdminUsers(c.UserContext())
	if err != nil {
		if client.IsAuthExpired(err) {
			return s.Gate.ForceLogout(c)
		}
		s.Logger.Error("admin users fetch", "error", err)
		return c.Render("admin/users", viewCtx(c, fiber.Map{
			"error_message": client.UserMessage(err),
		}))
	}

	return c.Render("admin/users", viewCtx(c, fiber.Map{
		"users": users,
	}))
}
