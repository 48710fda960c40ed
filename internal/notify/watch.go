package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/stut/displayproxy/internal/buttons"
)

// ErrStreamClosed is returned by Watch when the server ends the stream.
var ErrStreamClosed = errors.New("events stream closed")

// EventsURL turns host:port, an http(s) URL or a ws(s) URL into the
// websocket address of the events endpoint.
func EventsURL(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", errors.New("events: empty target")
	}
	if !strings.Contains(target, "://") {
		target = "ws://" + target
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("events: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("events: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("events: missing host in %q", target)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/events"
	}
	return u.String(), nil
}

// Watch prints every press from the server at target to w as one JSON line.
// It returns nil when ctx is cancelled and ErrStreamClosed when the server
// goes away.
func Watch(ctx context.Context, target string, w io.Writer) error {
	addr, err := EventsURL(target)
	if err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		stopped bool
	)
	enc := json.NewEncoder(w)
	client := NewClient(addr, func(p buttons.Press) {
		mu.Lock()
		defer mu.Unlock()
		if !stopped {
			enc.Encode(p)
		}
	})
	if err := client.Connect(); err != nil {
		return err
	}
	// w is not written to once Watch has returned.
	defer func() {
		client.Close()
		mu.Lock()
		stopped = true
		mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil
	case <-client.Done():
		return ErrStreamClosed
	}
}
