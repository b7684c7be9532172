package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"paywallet/docs"
	"paywallet/internal/auth"
	"paywallet/internal/config"
	"paywallet/internal/handler"
	"paywallet/internal/middleware"
	"paywallet/internal/validate"
)

// BasePath is the prefix every user route is mounted under.
const BasePath = "/api/v1/user"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
) {
	e.Use(echomw.RequestID())
	e.Use(requestLogger())
	e.Use(echomw.Recover())

	e.Validator = validate.New()

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(BasePath)
	limited := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Public routes
	api.POST("/signup", authHandler.Signup, limited)
	api.POST("/signin", authHandler.Signin, limited)
	api.GET("/bulk", userHandler.Bulk, limited)

	// Secured routes (require JWT authentication)
	secured := api.Group("", middleware.JWTAuth(jwtService, tokenStore))

	secured.POST("/signout", authHandler.Signout)
	secured.PUT("", userHandler.Update)
	secured.PUT("/", userHandler.Update)
	secured.GET("/info", userHandler.Info)
	secured.DELETE("", userHandler.Delete)
	secured.DELETE("/", userHandler.Delete)
}

func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			slog.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})
}
