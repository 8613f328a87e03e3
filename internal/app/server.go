package app

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/django/v3"
	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"

	"github.com/protacc/storefront/internal/client"
	"github.com/protacc/storefront/internal/config"
	"github.com/protacc/storefront/internal/gate"
	"github.com/protacc/storefront/internal/handlers"
	"github.com/protacc/storefront/internal/pkg/logging"
	"github.com/protacc/storefront/internal/session"
)

// Server assembles the storefront: view engine, session store, gate, API
// client and controllers.
type Server struct {
	cfg    config.AppConfig
	app    *fiber.App
	logger logging.Logger
	zap    *zap.Logger
}

// NewServer builds a ready-to-start server from config.
func NewServer(cfg config.AppConfig) *Server {
	zl := newZap(cfg.Debug)
	logger := logging.NewZap(zl.Sugar())

	engine := django.New("./views", ".html")
	engine.Reload(cfg.Debug)

	store := session.NewCookieStore(cfg.CookieTTL, logger)
	store.Secure = cfg.SecureCookie

	nav := gate.NewNavigator(logger)
	nav.Secure = cfg.SecureCookie

	g := gate.New(store, nav, logger)

	api := client.New(client.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Debug:   cfg.Debug,
	}, client.WithLogger(logger))

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Static("/public", "./public")
	app.Use(g.Hydrate())

	auth := handlers.NewAuthController(
		handlers.WithAuthGateway(api),
		handlers.WithAuthStore(store),
		handlers.WithAuthNavigator(nav),
		handlers.WithAuthLogger(logger),
		handlers.WithAuthDebug(cfg.Debug),
	)
	auth.Register(app, g)

	storefront := handlers.NewStorefrontController(api, g, logger)
	storefront.Register(app, g)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("errors/404", fiber.Map{
			"message": "page not found",
		})
	})

	return &Server{cfg: cfg, app: app, logger: logger, zap: zl}
}

// Start blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("storefront listening", "addr", s.cfg.HTTPAddr, "api", s.cfg.APIBaseURL)
	return s.app.Listen(s.cfg.HTTPAddr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	defer func() { _ = s.zap.Sync() }()
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the fiber app, used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func newZap(debug bool) *zap.Logger {
	if debug {
		zl, err := zap.NewDevelopment()
		if err == nil {
			return zl
		}
	}
	zl, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// errorHandler renders unhandled errors. Auth category errors go to the
// login page, everything else renders the 500 view.
func errorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
				WithCode(goerrors.CodeInternal)
		}

		logger.Error("unhandled error",
			"error", richErr.Message,
			"category", richErr.Category,
			"path", c.OriginalURL(),
		)

		switch richErr.Category {
		case goerrors.CategoryAuth, goerrors.CategoryAuthz:
			return c.Redirect("/login", fiber.StatusSeeOther)
		default:
			status := richErr.Code
			if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).Render("errors/500", fiber.Map{
				"message": richErr.Message,
			})
		}
	}
}
