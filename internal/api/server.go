package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"kusina-service/internal/auth"
	"kusina-service/internal/config"
	"net/http"
	"os"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

type Handlers struct {
	Orders    *OrderHandler
	Products  *ProductHandler
	Users     *UserHandler
	Customers *CustomerHandler
	Settings  *SettingsHandler
}

type ServerOptions struct {
	Name      string
	JWTSecret string
	// RateLimit with a zero Rate disables the limiter.
	RateLimit config.RateLimit
}

// NewServer builds the echo instance with middleware and every route.
func NewServer(opts ServerOptions, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	if opts.RateLimit.Rate > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(opts.RateLimit)))
	}

	Register(e, opts, h)
	return e
}

// Register wires the routes. Admin checks happen in the services, the
// middleware here only authenticates.
func Register(e *echo.Echo, opts ServerOptions, h Handlers) {
	requireToken := auth.Middleware(opts.JWTSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": opts.Name,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.POST("/auth/register", h.Users.Register)
	e.POST("/auth/login", h.Users.Login)
	e.GET("/products", h.Products.List)

	e.GET("/profile", h.Users.Profile, requireToken)
	e.PUT("/profile", h.Users.UpdateProfile, requireToken)

	orders := e.Group("/orders", requireToken)
	orders.POST("", h.Orders.CreateOrder)
	orders.GET("", h.Orders.ListOrders)
	orders.PATCH("", h.Orders.UpdateOrderStatus)
	orders.PATCH("/payment", h.Orders.UpdatePaymentStatus)
	orders.GET("/stats", h.Orders.Stats)
	orders.GET("/:id", h.Orders.GetOrder)

	e.POST("/payment/gcash", h.Orders.InitiateGCashPayment, requireToken)

	admin := e.Group("/admin", requireToken)
	admin.GET("/products", h.Products.AdminList)
	admin.POST("/products", h.Products.Create)
	admin.GET("/products/:id", h.Products.Get)
	admin.PUT("/products/:id", h.Products.Update)
	admin.DELETE("/products/:id", h.Products.Delete)
	admin.GET("/customers", h.Customers.List)
	admin.GET("/customers/:id", h.Customers.Get)
	admin.GET("/settings", h.Settings.Get)
	admin.POST("/settings", h.Settings.Save)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("remote_ip", v.RemoteIP).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

func rateLimiterConfig(rl config.RateLimit) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(rl.Rate),
				Burst:     rl.Burst,
				ExpiresIn: rl.ExpiresIn,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden", Message: "could not identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	}
}
