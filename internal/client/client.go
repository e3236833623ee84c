package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/tictactoe-client/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// EndpointPath is where the game server accepts WebSocket connections.
const EndpointPath = "/ws"

const (
	writeWait       = 10 * time.Second
	sendBufferSize  = 16
	frameBufferSize = 64
	maxFrameSize    = 4096
)

var (
	// ErrNotConnected is returned by Send before Connect or after the
	// connection has ended. The intent is dropped.
	ErrNotConnected = errors.New("not connected")
	// ErrSendBufferFull is returned when intents are produced faster than
	// they can be written.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Options configures a Client.
type Options struct {
	// Host is "host:port", or a URL whose scheme picks ws/wss.
	Host         string
	Secure       bool
	DialTimeout  time.Duration
	PingInterval time.Duration
	// IndexAsString encodes move indexes as JSON strings.
	IndexAsString bool
	// Clock drives keepalive pings; socket deadlines always use wall time.
	// Defaults to the real clock.
	Clock quartz.Clock
}

// Client is a single WebSocket connection to the game server. It never
// reconnects: once the connection ends, Receive reports why and Send fails.
type Client struct {
	endpoint string
	id       string
	opts     Options
	encoder  protocol.Encoder
	clock    quartz.Clock
	logger   *log.Logger

	conn   *websocket.Conn
	send   chan []byte
	frames chan []byte
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.RWMutex
	connected bool
	err       error
	closeOnce sync.Once
}

// Endpoint derives the WebSocket URL for host. A bare "host:port" becomes
// ws://host:port/ws (wss when secure); http and https URLs map to ws and wss.
func Endpoint(host string, secure bool) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("host is required")
	}

	if !strings.Contains(host, "://") {
		scheme := "ws"
		if secure {
			scheme = "wss"
		}
		host = scheme + "://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid host %q", host)
	}

	u.Path = EndpointPath
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// New creates a client for opts. It does not dial.
func New(opts Options, logger *log.Logger) (*Client, error) {
	endpoint, err := Endpoint(opts.Host, opts.Secure)
	if err != nil {
		return nil, err
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 54 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}

	id := uuid.NewString()
	return &Client{
		endpoint: endpoint,
		id:       id,
		opts:     opts,
		encoder:  protocol.Encoder{IndexAsString: opts.IndexAsString},
		clock:    opts.Clock,
		logger:   logger.WithPrefix("client").With("conn", id),
		send:     make(chan []byte, sendBufferSize),
		frames:   make(chan []byte, frameBufferSize),
		done:     make(chan struct{}),
	}, nil
}

// Endpoint returns the URL the client dials.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// ID returns the connection ID used in log lines.
func (c *Client) ID() string {
	return c.id
}

// Connect dials the server and starts the read and write pumps.
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.endpoint)

	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: c.opts.DialTimeout,
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancelDial()

	conn, _, err := dialer.DialContext(dialCtx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	conn.SetReadLimit(maxFrameSize)

	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.connected = true
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return c.readPump(gctx) })
	g.Go(func() error { return c.writePump(gctx) })
	g.Go(func() error {
		// Unblocks the read pump once either side is done.
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})

	go func() {
		err := g.Wait()
		c.mu.Lock()
		c.connected = false
		c.err = err
		c.mu.Unlock()
		cancel()
		close(c.done)
		c.logger.Info("Disconnected from server", "error", err)
	}()

	c.logger.Info("Connected to server")
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send encodes msg and queues it for the write pump without waiting for it
// to be written.
func (c *Client) Send(msg protocol.Outbound) error {
	data, err := c.encoder.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return ErrNotConnected
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Receive blocks until the next server frame arrives. Once the connection
// has ended and every received frame has been returned, it returns the
// reason the connection ended.
func (c *Client) Receive() ([]byte, error) {
	if data, ok := <-c.frames; ok {
		return data, nil
	}
	<-c.done
	return nil, c.Err()
}

// Done is closed when the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns why the connection ended, or nil while it is still up.
func (c *Client) Err() error {
	select {
	case <-c.done:
	default:
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.err == nil {
		return ErrNotConnected
	}
	return c.err
}

// Close ends the connection. Pending intents that the write pump has not
// taken yet are discarded.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		cancel := c.cancel
		c.connected = false
		c.mu.Unlock()

		if cancel == nil {
			// Never connected: nothing runs, release readers.
			close(c.frames)
			close(c.done)
			return
		}
		cancel()
		<-c.done
	})
	return nil
}

// readPump hands every frame to Receive until the connection fails.
func (c *Client) readPump(ctx context.Context) error {
	defer close(c.frames)

	// Allow one missed pong before giving up on the server.
	pongWait := 2 * c.opts.PingInterval
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return fmt.Errorf("read: %w", err)
		}
		if msgType != websocket.TextMessage {
			c.logger.Debug("Ignoring non-text frame", "type", msgType)
			continue
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		c.logger.Debug("Received frame", "bytes", len(data))

		select {
		case c.frames <- data:
		case <-ctx.Done():
			return nil
		}
	}
}

// writePump writes queued intents and keepalive pings.
func (c *Client) writePump(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.opts.PingInterval, "client", "ping")
	defer ticker.Stop()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return fmt.Errorf("write: %w", err)
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil
		}
	}
}
