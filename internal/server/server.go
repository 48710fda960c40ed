// Package server wires configuration, a display backend, the HTTP control
// API and press notifications together, and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/stut/displayproxy/internal/api"
	"github.com/stut/displayproxy/internal/buttons"
	"github.com/stut/displayproxy/internal/config"
	"github.com/stut/displayproxy/internal/display"
	"github.com/stut/displayproxy/internal/encoder"
	"github.com/stut/displayproxy/internal/notify"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Constructor builds a backend from the resolved configuration. Presses must
// be recorded in tracker.
type Constructor func(cfg *config.Config, tracker *buttons.Tracker) (display.Display, error)

// Options configure a Server.
type Options struct {
	DisplayType string
	Buttons     string
	Options     string
	Host        string
	Port        int

	// Backends maps each supported kind to its constructor.
	Backends map[display.Kind]Constructor
	Clock    clockwork.Clock
}

// Server runs the HTTP listener alongside the display loop.
type Server struct {
	opts    Options
	cfg     *config.Config
	kind    display.Kind
	tracker *buttons.Tracker
	display display.Display
	router  *api.Router
	notify  notify.Fanout
	log     *slog.Logger

	ready     chan struct{}
	addr      net.Addr
	closeOnce sync.Once
	closeErr  error
}

// New resolves the configuration and constructs the backend. Nothing is
// bound until Start.
func New(opts Options) (*Server, error) {
	cfg, err := config.Resolve(opts.DisplayType, opts.Buttons, opts.Options)
	if err != nil {
		return nil, err
	}
	kind, err := display.ParseKind(cfg.DisplayType())
	if err != nil {
		return nil, err
	}
	construct, ok := opts.Backends[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported display type %q: no backend available", kind)
	}
	quality, err := cfg.Int("frame_quality", encoder.DefaultQuality)
	if err != nil {
		return nil, err
	}

	tracker := buttons.NewTracker(cfg.Labels(), opts.Clock)
	d, err := construct(cfg, tracker)
	if err != nil {
		return nil, fmt.Errorf("create %s display: %w", kind, err)
	}

	hub := notify.NewHub(opts.Clock)
	publishers := notify.Fanout{hub}
	mqttPublisher, err := notify.NewMQTTPublisher(cfg)
	if err != nil {
		return nil, errors.Join(err, hub.Close(), d.Close())
	}
	if mqttPublisher != nil {
		publishers = append(publishers, mqttPublisher)
	}
	tracker.Subscribe(publishers.Publish)

	return &Server{
		opts:    opts,
		cfg:     cfg,
		kind:    kind,
		tracker: tracker,
		display: d,
		router:  api.NewRouter(d, hub, encoder.NewJPEGEncoder(quality)),
		notify:  publishers,
		log:     slog.With("component", "server"),
		ready:   make(chan struct{}),
	}, nil
}

// Config returns the resolved configuration, including values injected by
// the backend.
func (s *Server) Config() *config.Config { return s.cfg }

// Display returns the running backend.
func (s *Server) Display() display.Display { return s.display }

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound listener address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.addr
	default:
		return nil
	}
}

// Start binds the listener, serves HTTP in the background and runs the
// display loop on the calling goroutine. It returns after shutdown is
// requested over HTTP, from the display itself or by cancelling ctx.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.addr = ln.Addr()
	close(s.ready)

	s.log.Info("Listening", "addr", s.addr.String(), "display", s.kind,
		"width", s.display.Width(), "height", s.display.Height(), "buttons", s.tracker.Labels())

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		err := httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.log.Error("HTTP server failed", "error", err)
			s.display.Shutdown()
		}
		serveErr <- err
	}()

	stop := context.AfterFunc(ctx, func() {
		s.log.Info("Interrupted, shutting down")
		s.display.Shutdown()
	})
	defer stop()

	runErr := s.display.Run()
	s.display.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	httpErr := httpServer.Shutdown(shutdownCtx)

	err = errors.Join(runErr, httpErr, <-serveErr)
	if err == nil {
		s.log.Info("Shut down cleanly")
	}
	return err
}

// Close releases notifiers and the backend. Only the first call has effect.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = errors.Join(s.notify.Close(), s.display.Close())
	})
	return s.closeErr
}

// Run builds a server, runs it until shutdown and always cleans up.
func Run(ctx context.Context, opts Options) (err error) {
	s, err := New(opts)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return s.Start(ctx)
}
