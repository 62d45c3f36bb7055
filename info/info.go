package info

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/banky/go-edgex/internal/utils"
	"github.com/banky/go-edgex/rest"
	"github.com/banky/go-edgex/types"
	"github.com/banky/go-edgex/ws"
	"go.uber.org/zap"
)

const (
	metadataPath   = "/api/v1/public/meta/getMetaData"
	serverTimePath = "/api/v1/public/meta/getServerTime"
	tickerPath     = "/api/v1/public/quote/getTicker"
)

var errWSDisabled = errors.New("websocket client is disabled")

// Info provides access to exchange metadata and market data via REST and
// WebSocket APIs
type Info struct {
	rest   rest.ClientInterface
	ws     ws.ClientInterface
	logger *zap.Logger

	mu       sync.RWMutex
	metadata *Metadata
}

// Config for initializing the Info client
type Config struct {
	BaseURL string
	Timeout uint
	// Client replaces the REST client built from BaseURL and Timeout
	Client rest.ClientInterface
	WsURL  string
	SkipWS bool
	Logger *zap.Logger
	// Metadata seeds the cache so the first signed operation does not need
	// a round trip
	Metadata *Metadata
}

// New creates a new Info client
func New(cfg Config) (*Info, error) {
	logger := utils.OrNop(cfg.Logger)

	client := cfg.Client
	if client == nil {
		client = rest.New(rest.Config{
			BaseUrl: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	}

	var wsClient ws.ClientInterface
	if !cfg.SkipWS {
		wsClient = ws.New(ws.Config{
			URL:    cfg.WsURL,
			Logger: logger,
		})
	}

	return &Info{
		rest:     client,
		ws:       wsClient,
		logger:   logger,
		metadata: cfg.Metadata,
	}, nil
}

// Start opens the WebSocket connection
func (i *Info) Start(ctx context.Context) error {
	if i.ws != nil {
		return i.ws.Start(ctx)
	}
	return nil
}

// Stop closes the WebSocket connection
func (i *Info) Stop() {
	if i.ws != nil {
		i.ws.Stop()
	}
}

// ===== Metadata Queries =====

// Metadata fetches the exchange metadata document and caches it as the
// latest snapshot.
func (i *Info) Metadata(ctx context.Context) (*Metadata, error) {
	var result types.Response[Metadata]
	if err := i.rest.Get(ctx, metadataPath, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	if err := result.Check(metadataPath); err != nil {
		return nil, err
	}

	meta := result.Data

	i.mu.Lock()
	i.metadata = &meta
	i.mu.Unlock()

	i.logger.Debug("metadata refreshed",
		zap.Int("contracts", len(meta.ContractList)),
		zap.Int("coins", len(meta.CoinList)),
	)

	return &meta, nil
}

// CachedMetadata returns the last fetched snapshot, fetching one if the
// cache is empty.
func (i *Info) CachedMetadata(ctx context.Context) (*Metadata, error) {
	i.mu.RLock()
	meta := i.metadata
	i.mu.RUnlock()

	if meta != nil {
		return meta, nil
	}
	return i.Metadata(ctx)
}

// ServerTime returns the gateway's clock
func (i *Info) ServerTime(ctx context.Context) (time.Time, error) {
	var result types.Response[ServerTime]
	if err := i.rest.Get(ctx, serverTimePath, nil, &result); err != nil {
		return time.Time{}, fmt.Errorf("failed to fetch server time: %w", err)
	}
	if err := result.Check(serverTimePath); err != nil {
		return time.Time{}, err
	}

	ms, err := strconv.ParseInt(result.Data.TimeMillis, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid server time %q: %w", result.Data.TimeMillis, err)
	}

	return time.UnixMilli(ms), nil
}

// ===== Market Data Queries =====

// Ticker retrieves the 24 hour quote for a contract.
func (i *Info) Ticker(ctx context.Context, contractID string) (*Ticker, error) {
	var result types.Response[[]Ticker]
	err := i.rest.Get(
		ctx,
		tickerPath,
		map[string]string{"contractId": contractID},
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker: %w", err)
	}
	if err := result.Check(tickerPath); err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no ticker for contract: %s", contractID)
	}

	return &result.Data[0], nil
}

// ===== Streams =====

// SubscribeTicker streams ticker updates for a contract.
func (i *Info) SubscribeTicker(
	ctx context.Context,
	contractID string,
	ch chan<- ws.TickerMessage,
) (ws.Subscription, error) {
	if i.ws == nil {
		return nil, errWSDisabled
	}
	return i.ws.SubscribeTicker(ctx, contractID, ch)
}

// SubscribeKline streams candles for a contract.
func (i *Info) SubscribeKline(
	ctx context.Context,
	contractID string,
	priceType ws.PriceType,
	interval ws.KlineInterval,
	ch chan<- ws.KlineMessage,
) (ws.Subscription, error) {
	if i.ws == nil {
		return nil, errWSDisabled
	}
	return i.ws.SubscribeKline(ctx, contractID, priceType, interval, ch)
}

// SubscribeDepth streams order book snapshots and changes.
func (i *Info) SubscribeDepth(
	ctx context.Context,
	contractID string,
	depth int,
	ch chan<- ws.DepthMessage,
) (ws.Subscription, error) {
	if i.ws == nil {
		return nil, errWSDisabled
	}
	return i.ws.SubscribeDepth(ctx, contractID, depth, ch)
}

// SubscribeTrades streams public trades for a contract.
func (i *Info) SubscribeTrades(
	ctx context.Context,
	contractID string,
	ch chan<- ws.TradesMessage,
) (ws.Subscription, error) {
	if i.ws == nil {
		return nil, errWSDisabled
	}
	return i.ws.SubscribeTrades(ctx, contractID, ch)
}
