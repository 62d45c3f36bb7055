package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/banky/go-edgex/constants"
	"github.com/banky/go-edgex/internal/utils"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const publicPath = "/api/v1/public/ws"

// ClientInterface is the stream surface other packages depend on
type ClientInterface interface {
	Start(ctx context.Context) error
	Stop()
	SubscribeTicker(ctx context.Context, contractID string, ch chan<- TickerMessage) (Subscription, error)
	SubscribeKline(ctx context.Context, contractID string, priceType PriceType, interval KlineInterval, ch chan<- KlineMessage) (Subscription, error)
	SubscribeDepth(ctx context.Context, contractID string, depth int, ch chan<- DepthMessage) (Subscription, error)
	SubscribeTrades(ctx context.Context, contractID string, ch chan<- TradesMessage) (Subscription, error)
}

var _ ClientInterface = (*Client)(nil)

// Client manages the public quote socket and routes events to subscribers
type Client struct {
	url    string
	logger *zap.Logger

	conn                  *websocket.Conn
	writeMu               sync.Mutex
	subscriptionIDCounter int64
	activeSubscriptions   map[string][]*channelSubscription
	stopChan              chan struct{}
	stopOnce              sync.Once
	wg                    sync.WaitGroup
	deliveries            sync.WaitGroup
	mu                    sync.RWMutex
}

// Config for the quote stream
type Config struct {
	// URL is the socket host. Defaults to the mainnet quote host
	URL    string
	Logger *zap.Logger
}

// New creates a stream client. Call Start to connect.
func New(cfg Config) *Client {
	u := cfg.URL
	if u == "" {
		u = constants.MAINNET_WS_URL
	}

	return &Client{
		url:                 u,
		logger:              utils.OrNop(cfg.Logger),
		activeSubscriptions: make(map[string][]*channelSubscription),
		stopChan:            make(chan struct{}),
	}
}

func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parse ws URL %q: %w", c.url, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "wss"
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = publicPath
	}

	q := u.Query()
	q.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Start dials the socket, starts the read loop and replays any
// subscriptions made before the connection existed.
func (c *Client) Start(ctx context.Context) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	conn.SetReadLimit(1 << 20)

	c.mu.Lock()
	c.conn = conn
	channels := make([]string, 0, len(c.activeSubscriptions))
	for ch, subs := range c.activeSubscriptions {
		if len(subs) > 0 {
			channels = append(channels, ch)
		}
	}
	c.mu.Unlock()

	for _, ch := range channels {
		if err := c.send(frame{Type: frameSubscribe, Channel: ch}); err != nil {
			c.logger.Warn("failed to replay subscription", zap.String("channel", ch), zap.Error(err))
		}
	}

	c.wg.Add(1)
	go c.readLoop()

	c.logger.Info("websocket connected", zap.String("url", c.url))
	return nil
}

// Stop closes the socket and waits for the read loop and every delivery
// goroutine to exit
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)

		c.mu.Lock()
		conn := c.conn
		c.conn = nil
		c.mu.Unlock()

		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "closing")
		}
	})

	c.wg.Wait()
	c.deliveries.Wait()
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			return
		}

		_, data, err := conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.stopChan:
				return
			default:
			}
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				c.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		c.handleMessage(data)
	}
}

// send writes one frame. Writes are serialized because the read loop
// answers pings concurrently with subscribe calls.
func (c *Client) send(f frame) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return nil
	}

	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return conn.Write(ctx, websocket.MessageText, data)
}
