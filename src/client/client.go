package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"personal/discord_go/src/cache"
	"personal/discord_go/src/config"
	"personal/discord_go/src/entity"
	"personal/discord_go/src/gateway"
)

var ErrAlreadyConnected = errors.New("client: already connected")

type Option func(*Client)

// WithDialer replaces the websocket dialer used for every shard.
func WithDialer(d gateway.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithGatewayOptions is applied to every shard's gateway.
func WithGatewayOptions(opts ...gateway.Option) Option {
	return func(c *Client) { c.gatewayOpts = append(c.gatewayOpts, opts...) }
}

// Client is a bot session over one or more gateway shards. The shards share
// the entity caches and the listeners and nothing else.
type Client struct {
	cfg         *config.Config
	logger      *slog.Logger
	baseLogger  *slog.Logger
	httpClient  *http.Client
	dialer      gateway.Dialer
	gatewayOpts []gateway.Option

	rest  *rest
	table *gateway.DispatchTable
	emit  *Emitter

	channels *cache.Store[entity.ChannelPayload]
	guilds   *cache.Store[entity.GuildPayload]
	commands *cache.Store[entity.ApplicationCommandPayload]
	users    *cache.Store[entity.User]

	mu            sync.RWMutex
	shards        []*gateway.Gateway
	user          *entity.User
	applicationID entity.Snowflake
}

var _ entity.Handle = (*Client)(nil)

func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:        cfg,
		logger:     logger.With("component", "client"),
		baseLogger: logger,
		httpClient: &http.Client{Timeout: cfg.REST.Timeout},
		dialer:     gateway.WebsocketDialer{},
	}
	for _, o := range opts {
		o(c)
	}

	var err error
	if c.channels, err = cache.New[entity.ChannelPayload]("channels", cfg.Cache.Size); err != nil {
		return nil, err
	}
	if c.guilds, err = cache.New[entity.GuildPayload]("guilds", cfg.Cache.Size); err != nil {
		return nil, err
	}
	if c.commands, err = cache.New[entity.ApplicationCommandPayload]("commands", cfg.Cache.Size); err != nil {
		return nil, err
	}
	if c.users, err = cache.New[entity.User]("users", cfg.Cache.Size); err != nil {
		return nil, err
	}

	c.rest = newREST(cfg.REST, cfg.APIURL, cfg.Token, c.httpClient, logger.With("component", "rest"))
	c.emit = NewEmitter(c.logger)
	c.table = gateway.NewDispatchTable(cfg.Gateway.LookupTimeout)
	c.registerHandlers(c.table)

	return c, nil
}

// GatewayBot fetches the recommended gateway URL and shard count.
func (c *Client) GatewayBot(ctx context.Context) (*GatewayBotResponse, error) {
	var response GatewayBotResponse
	if err := c.rest.get(ctx, "/gateway/bot", &response); err != nil {
		return nil, fmt.Errorf("could not fetch gateway: %w", err)
	}
	return &response, nil
}

// ConnectToGateway opens one gateway session per configured shard and blocks
// until Disconnect is called, ctx is cancelled, or a shard fails terminally.
// A terminal failure on one shard closes the others and is returned.
func (c *Client) ConnectToGateway(ctx context.Context) error {
	url := c.cfg.GatewayURL
	if url == "" {
		bot, err := c.GatewayBot(ctx)
		if err != nil {
			return err
		}
		url = bot.URL
		c.logger.Info("resolved gateway",
			"url", url,
			"recommended_shards", bot.Shards,
			"session_starts_remaining", bot.SessionStartLimit.Remaining,
		)
	}
	if url == "" {
		return fmt.Errorf("gateway URL not set")
	}

	shards, err := c.startShards(url)
	if err != nil {
		return err
	}
	defer func() {
		c.mu.Lock()
		c.shards = nil
		c.mu.Unlock()
	}()

	eg, egCtx := errgroup.WithContext(ctx)
	for _, gw := range shards {
		eg.Go(func() error {
			if err := gw.Run(egCtx); err != nil {
				return fmt.Errorf("shard %d: %w", gw.Shard(), err)
			}
			return nil
		})
	}
	return eg.Wait()
}

func (c *Client) startShards(url string) ([]*gateway.Gateway, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.shards) > 0 {
		return nil, ErrAlreadyConnected
	}

	opts := append([]gateway.Option{gateway.WithLogger(c.baseLogger.With("component", "gateway"))}, c.gatewayOpts...)
	shards := make([]*gateway.Gateway, c.cfg.ShardCount)
	for i := range shards {
		shards[i] = gateway.New(gateway.Config{
			Token:                c.cfg.Token,
			URL:                  url,
			Intents:              c.cfg.Intents,
			ShardID:              i,
			ShardCount:           c.cfg.ShardCount,
			LargeThreshold:       c.cfg.Gateway.LargeThreshold,
			Presence:             presence(c.cfg.Gateway.Presence),
			MaxReconnectAttempts: c.cfg.Gateway.MaxReconnectAttempts,
			BackoffInitial:       c.cfg.Gateway.BackoffInitial,
			BackoffMax:           c.cfg.Gateway.BackoffMax,
		}, c.dialer, c.table, opts...)
	}
	c.shards = shards
	return shards, nil
}

func presence(cfg config.PresenceConfig) *gateway.Presence {
	if cfg.Status == "" {
		return nil
	}
	p := &gateway.Presence{Status: cfg.Status, Activities: []gateway.Activity{}}
	if cfg.Activity != "" {
		p.Activities = append(p.Activities, gateway.Activity{Name: cfg.Activity, Type: cfg.ActivityType})
	}
	return p
}

// Disconnect closes every shard with a normal closure. ConnectToGateway
// returns once they have stopped.
func (c *Client) Disconnect() error {
	c.mu.RLock()
	shards := c.shards
	c.mu.RUnlock()
	if len(shards) == 0 {
		return nil
	}

	c.logger.Info("closing gateway connections", "shards", len(shards))
	var errs []error
	for _, gw := range shards {
		if err := gw.Close(); err != nil {
			errs = append(errs, fmt.Errorf("shard %d: %w", gw.Shard(), err))
		}
	}
	return errors.Join(errs...)
}

// Latency is the mean heartbeat round trip over the shards that have one.
func (c *Client) Latency() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		total time.Duration
		n     int
	)
	for _, gw := range c.shards {
		if l := gw.Latency(); l > 0 {
			total += l
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / time.Duration(n)
}

// User is the bot's own account, known after the first READY.
func (c *Client) User() *entity.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Client) ApplicationID() entity.Snowflake {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applicationID
}

func (c *Client) Prefix() string { return c.cfg.Prefix }

func (c *Client) On(name string, fn Listener) { c.emit.On(name, fn) }

func (c *Client) Subscribe(buffer int) (<-chan Notification, func()) {
	return c.emit.Subscribe(buffer)
}

func (c *Client) OnMessageCreate(fn func(ctx context.Context, m *entity.Message)) {
	c.On(EventMessageCreate, func(ctx context.Context, n Notification) {
		if m, ok := n.Arg(0).(*entity.Message); ok {
			fn(ctx, m)
		}
	})
}

func (c *Client) OnReady(fn func(ctx context.Context, ev ReadyEvent)) {
	c.On(EventReady, func(ctx context.Context, n Notification) {
		if ev, ok := n.Arg(0).(ReadyEvent); ok {
			fn(ctx, ev)
		}
	})
}

func (c *Client) notify(ctx context.Context, ev gateway.Event, name string, args ...any) {
	c.emit.Emit(ctx, Notification{Name: name, Shard: ev.Shard, Args: args})
}
