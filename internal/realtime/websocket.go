package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 1 << 20
)

// WSTransport subscribes to named channels over a websocket connection. The
// connection is re-dialed with capped exponential backoff until the
// subscription context is cancelled.
type WSTransport struct {
	endpoint   string
	token      string
	logger     *slog.Logger
	dialer     *websocket.Dialer
	maxBackoff time.Duration
}

// NewWSTransport constructs a websocket transport for the given endpoint.
func NewWSTransport(endpoint, token string, maxBackoff time.Duration, logger *slog.Logger) *WSTransport {
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	return &WSTransport{
		endpoint:   endpoint,
		token:      token,
		logger:     logger,
		dialer:     websocket.DefaultDialer,
		maxBackoff: maxBackoff,
	}
}

// Subscribe starts the reconnect loop for the channel and returns the event
// stream. The stream closes once ctx is cancelled.
func (t *WSTransport) Subscribe(ctx context.Context, channel string) (<-chan Event, error) {
	target, err := url.Parse(t.endpoint)
	if err != nil {
		return nil, err
	}
	query := target.Query()
	query.Set("channel", channel)
	target.RawQuery = query.Encode()

	out := make(chan Event, 16)
	go t.run(ctx, target.String(), channel, out)
	return out, nil
}

func (t *WSTransport) run(ctx context.Context, target, channel string, out chan<- Event) {
	defer close(out)

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}

		header := http.Header{}
		if t.token != "" {
			header.Set("Authorization", "Bearer "+t.token)
		}
		conn, _, err := t.dialer.DialContext(ctx, target, header)
		if err != nil {
			t.logger.Error("websocket dial failed",
				slog.String("channel", channel),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > t.maxBackoff {
				backoff = t.maxBackoff
			}
			continue
		}

		backoff = time.Second
		t.read(ctx, conn, channel, out)
		_ = conn.Close()
	}
}

func (t *WSTransport) read(ctx context.Context, conn *websocket.Conn, channel string, out chan<- Event) {
	done := make(chan struct{})
	defer close(done)

	// Close the connection when the subscription is released so the blocked
	// ReadMessage below returns.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				t.logger.Error("websocket read failed",
					slog.String("channel", channel),
					slog.String("error", err.Error()))
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.logger.Warn("malformed event frame", slog.String("error", err.Error()))
			continue
		}
		if ev.Channel != "" && ev.Channel != channel {
			continue
		}

		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}
