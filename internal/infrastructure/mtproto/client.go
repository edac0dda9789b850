package mtproto

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/samber/oops"
	"golang.org/x/time/rate"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	peerRepository "github.com/reshetovitsme/tgfeed/internal/modules/peer/repository"
	sharedErrors "github.com/reshetovitsme/tgfeed/internal/shared/errors"
	"github.com/reshetovitsme/tgfeed/internal/shared/metrics"
)

// api is the subset of *tg.Client used by the adapter
type api interface {
	ContactsResolveUsername(ctx context.Context, request *tg.ContactsResolveUsernameRequest) (*tg.ContactsResolvedPeer, error)
	UsersGetUsers(ctx context.Context, id []tg.InputUserClass) ([]tg.UserClass, error)
	UsersGetFullUser(ctx context.Context, id tg.InputUserClass) (*tg.UsersUserFull, error)
	ChannelsGetChannels(ctx context.Context, id []tg.InputChannelClass) (tg.MessagesChatsClass, error)
	ChannelsGetFullChannel(ctx context.Context, channel tg.InputChannelClass) (*tg.MessagesChatFull, error)
	ChannelsGetMessages(ctx context.Context, request *tg.ChannelsGetMessagesRequest) (tg.MessagesMessagesClass, error)
	MessagesGetChats(ctx context.Context, id []int64) (tg.MessagesChatsClass, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
	MessagesGetMessages(ctx context.Context, id []tg.InputMessageClass) (tg.MessagesMessagesClass, error)
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
}

var _ api = (*tg.Client)(nil)

// Config holds configuration for Client
type Config struct {
	APIID       int
	APIHash     string
	Phone       string
	SessionPath string
	PartSize    int
	RateLimit   float64
	RateBurst   int
}

// Client implements the chat repository and session on top of gotd/td.
type Client struct {
	apiID       int
	apiHash     string
	sessionPath string
	partSize    int

	terminal *Terminal
	peers    peerRepository.Repository
	metrics  *metrics.Metrics
	logger   *slog.Logger
	limiter  *rate.Limiter

	mu        sync.RWMutex
	connected bool
	api       api
	raw       *tg.Client
	cancel    context.CancelFunc
	runDone   chan struct{}

	// reconnect serialises EnsureConnected
	reconnect sync.Mutex
}

var (
	_ chat.Repository = (*Client)(nil)
	_ chat.Session    = (*Client)(nil)
)

// New creates a new client. It does not connect.
func New(cfg Config, peers peerRepository.Repository, m *metrics.Metrics) (*Client, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, sharedErrors.ErrMissingAPICredentials
	}
	if cfg.PartSize <= 0 {
		cfg.PartSize = 32 * 1024
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}

	return &Client{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		sessionPath: cfg.SessionPath,
		partSize:    cfg.PartSize,
		terminal:    NewTerminal(cfg.Phone),
		peers:       peers,
		metrics:     m,
		logger:      slog.Default().With("component", "mtproto"),
		limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}, nil
}

// Connect starts the client and blocks until it is authorized.
// The connection outlives ctx; use Disconnect to stop it.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	c.logger.InfoContext(ctx, "Connecting to Telegram")

	client := telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: c.sessionPath},
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)

		err := client.Run(runCtx, func(ctx context.Context) error {
			if err := c.authorize(ctx, client); err != nil {
				return err
			}
			close(ready)

			<-ctx.Done()
			return ctx.Err()
		})
		errCh <- err

		c.markDisconnected(runDone, err)
	}()

	select {
	case <-ready:
	case err := <-errCh:
		cancel()
		if err == nil {
			err = sharedErrors.ErrNotConnected
		}
		return oops.With("context", "failed to connect").Wrap(classify(err))
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}

	c.raw = client.API()
	c.api = c.raw
	c.cancel = cancel
	c.runDone = runDone
	c.connected = true
	c.metrics.Connected.Set(1)

	c.logger.InfoContext(ctx, "Connected to Telegram")
	return nil
}

func (c *Client) authorize(ctx context.Context, client *telegram.Client) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return oops.With("context", "failed to check auth status").Wrap(err)
	}
	if status.Authorized {
		c.logger.InfoContext(ctx, "Session restored")
		return nil
	}

	if !c.terminal.Interactive() {
		return oops.With("session", c.sessionPath).Wrap(sharedErrors.ErrUnauthorized)
	}

	c.logger.WarnContext(ctx, "Not authorized, starting interactive login")
	flow := auth.NewFlow(c.terminal, auth.SendCodeOptions{})
	if err := flow.Run(ctx, client.Auth()); err != nil {
		return oops.With("context", "interactive login failed").Wrap(err)
	}

	c.logger.InfoContext(ctx, "Login successful, session saved", "session", c.sessionPath)
	return nil
}

// markDisconnected resets the state when the run loop of the current
// connection exits on its own.
func (c *Client) markDisconnected(runDone chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runDone != runDone {
		return
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Error("Telegram client stopped", "error", err)
	}

	c.connected = false
	c.api = nil
	c.raw = nil
	c.cancel = nil
	c.runDone = nil
	c.metrics.Connected.Set(0)
}

// Disconnect stops the client and waits for it to exit or for ctx to end.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	cancel := c.cancel
	runDone := c.runDone
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Disconnecting from Telegram")

	if cancel != nil {
		cancel()
	}
	if runDone != nil {
		select {
		case <-runDone:
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "Timed out waiting for the client to stop")
		}
	}

	c.mu.Lock()
	if c.runDone == runDone {
		c.connected = false
		c.api = nil
		c.raw = nil
		c.cancel = nil
		c.runDone = nil
		c.metrics.Connected.Set(0)
	}
	c.mu.Unlock()

	return nil
}

// IsConnected checks if client is connected to Telegram
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// EnsureConnected runs the full connect and resync sequence when the
// session is down. It is attempted unconditionally on every call.
func (c *Client) EnsureConnected(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}

	c.reconnect.Lock()
	defer c.reconnect.Unlock()

	if c.IsConnected() {
		return nil
	}

	c.logger.WarnContext(ctx, "Not connected, reconnecting")
	c.metrics.Reconnects.Inc()

	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Resync(ctx)
}

// invoke runs a single RPC behind the connection check and the limiter.
func (c *Client) invoke(ctx context.Context, method string, fn func(ctx context.Context, api api) error) error {
	c.mu.RLock()
	client, connected := c.api, c.connected
	c.mu.RUnlock()

	if !connected || client == nil {
		return sharedErrors.ErrNotConnected
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return oops.With("method", method, "context", "rate limit wait cancelled").Wrap(err)
	}

	c.metrics.UpstreamCalls.WithLabelValues(method).Inc()

	if err := fn(ctx, client); err != nil {
		c.metrics.UpstreamErrors.WithLabelValues(method).Inc()
		c.logger.DebugContext(ctx, "RPC failed", "method", method, "error", err)
		return classify(err)
	}
	return nil
}
