// Package api implements the HTTP control protocol: frame upload, display
// info, button state and shutdown.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stut/displayproxy/internal/decoder"
	"github.com/stut/displayproxy/internal/display"
	"github.com/stut/displayproxy/internal/encoder"
	"github.com/stut/displayproxy/internal/metrics"
	"github.com/stut/displayproxy/internal/version"
)

const notFound = "Not found"

// Router dispatches control requests to a display.
type Router struct {
	echo    *echo.Echo
	display display.Display
	decoder decoder.Decoder
	encoder encoder.Encoder
	events  http.Handler
	log     *slog.Logger

	routes map[string]bool
}

var _ http.Handler = (*Router)(nil)

// NewRouter builds the router. events serves GET /events and may be nil.
func NewRouter(d display.Display, events http.Handler, enc encoder.Encoder) *Router {
	if enc == nil {
		enc = encoder.NewJPEGEncoder(encoder.DefaultQuality)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	r := &Router{
		echo:    e,
		display: d,
		decoder: decoder.NewImageDecoder(),
		encoder: enc,
		events:  events,
		log:     slog.With("component", "http"),
	}
	e.HTTPErrorHandler = r.handleError
	r.registerRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.echo.ServeHTTP(w, req)
}

func (r *Router) registerRoutes() {
	r.echo.Pre(serverHeader())
	r.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	r.echo.Use(r.setupRequestLoggerMiddleware())
	r.echo.Use(middleware.Recover())

	r.echo.GET("/info", r.handleInfo)
	r.echo.GET("/buttons", r.handleButtons)
	r.echo.POST("/update", r.handleUpdate)
	r.echo.POST("/shutdown", r.handleShutdown)

	r.echo.GET("/frame", r.handleFrame)
	r.echo.GET("/version", r.handleVersion)
	r.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if r.events != nil {
		r.echo.GET("/events", echo.WrapHandler(r.events))
	}

	r.routes = map[string]bool{}
	for _, route := range r.echo.Routes() {
		r.routes[route.Path] = true
	}
}

func serverHeader() echo.MiddlewareFunc {
	value := version.ServerHeader()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, value)
			return next(c)
		}
	}
}

// setupRequestLoggerMiddleware logs and counts every request once its final
// status is known.
func (r *Router) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:  true,
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRoutePath: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := v.RoutePath
			if !r.routes[route] {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).Inc()

			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			r.log.Info("Request", attrs...)
			return nil
		},
	})
}

// handleError answers every failure in plain text. Unknown routes and known
// routes hit with the wrong method are both plain 404s.
func (r *Router) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		} else {
			msg = http.StatusText(code)
		}
	}
	if code == http.StatusNotFound || code == http.StatusMethodNotAllowed {
		c.Response().Header().Del(echo.HeaderAllow)
		code, msg = http.StatusNotFound, notFound
	}

	if err := c.String(code, msg); err != nil {
		r.log.Warn("Failed to write error response", "error", err)
	}
}
