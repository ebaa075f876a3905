package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"moviefinder/errs"
	"moviefinder/movie"
	"moviefinder/pkg/config"
	"moviefinder/pkg/sentry"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPort = 3000

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	// Allowed origins for CORS
	AllowOrigins []string

	Logger *slog.Logger

	MovieService movie.Service
}

func Default(cfg *config.Config) *Server {
	port := cfg.Port
	if port <= 0 {
		port = defaultPort
	}
	origins := cfg.Origins()
	if cfg.AllowOrigins == "" {
		origins = []string{"*"}
	}

	s := Server{
		Router:       echo.New(),
		Addr:         fmt.Sprintf(":%d", port),
		AllowOrigins: origins,
		Logger:       slog.Default(),
	}

	s.Router.HideBanner = true
	s.Router.HidePort = true
	s.Router.Validator = NewValidator()
	s.Router.HTTPErrorHandler = s.handleError
	s.RegisterGlobalMiddlewares()

	s.RegisterMovieRoutes()
	s.RegisterHealthRoutes()
	s.RegisterMetricsRoutes()
	s.RegisterStaticRoutes()
	return &s
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	// CORS
	if len(s.AllowOrigins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.AllowOrigins,
		}))
	}
}

func (s *Server) RegisterMetricsRoutes() {
	s.Router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (s *Server) Start() error {
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

// handleError maps application errors to HTTP status codes and always
// answers with a JSON {"error": ...} body. Causes are logged, never sent.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else {
		// Map application error codes to HTTP status codes
		switch errs.ErrorCode(err) {
		case errs.EINVALID:
			code = http.StatusBadRequest
			message = errs.ErrorMessage(err)
		case errs.ENOTFOUND:
			code = http.StatusNotFound
			message = errs.ErrorMessage(err)
		case errs.ECONFLICT:
			code = http.StatusConflict
			message = errs.ErrorMessage(err)
		case errs.EUNAUTHORIZED:
			code = http.StatusUnauthorized
			message = errs.ErrorMessage(err)
		case errs.ENOTIMPLEMENTED:
			code = http.StatusNotImplemented
			message = errs.ErrorMessage(err)
		case errs.EUNAVAILABLE:
			code = http.StatusInternalServerError
			message = errs.ErrorMessage(err)
		case errs.EINTERNAL:
			code = http.StatusInternalServerError
			message = "Internal server error"
		}
	}

	s.logError(c, err, code)
	if code >= http.StatusInternalServerError {
		sentry.WithContext(c).WithExtras(map[string]interface{}{
			"status": code,
			"path":   c.Path(),
		}).Error(err)
	}

	// Don't write response if already committed
	if !c.Response().Committed {
		if err := respondError(c, code, message); err != nil {
			s.Logger.Error("cannot write error response", "error", err)
		}
	}
}

func (s *Server) logError(c echo.Context, err error, status int) {
	attrs := []any{
		"request_id", requestID(c),
		"method", c.Request().Method,
		"path", c.Path(),
		"status", status,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(c.Request().Context(), "request failed", attrs...)
		return
	}
	s.Logger.InfoContext(c.Request().Context(), "request rejected", attrs...)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
