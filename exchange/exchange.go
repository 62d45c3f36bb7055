package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/banky/go-edgex/info"
	"github.com/banky/go-edgex/internal/utils"
	"github.com/banky/go-edgex/l2"
	"github.com/banky/go-edgex/rest"
	"github.com/banky/go-edgex/types"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	createOrderPath          = "/api/v1/private/order/createOrder"
	cancelOrderByIDPath      = "/api/v1/private/order/cancelOrderById"
	cancelOrderByClientPath  = "/api/v1/private/order/cancelOrderByClientOrderId"
	cancelAllOrderPath       = "/api/v1/private/order/cancelAllOrder"
	activeOrderPagePath      = "/api/v1/private/order/getActiveOrderPage"
	fillTransactionPagePath  = "/api/v1/private/order/getHistoryOrderFillTransactionPage"
	maxCreateOrderSizePath   = "/api/v1/private/order/getMaxCreateOrderSize"
	accountAssetPath         = "/api/v1/private/account/getAccountAsset"
	createTransferOutPath    = "/api/v1/private/transfer/createTransferOut"
	createNormalWithdrawPath = "/api/v1/private/assets/createNormalWithdraw"

	defaultPageSize = 100
)

// marketBuyMultiplier scales the oracle price into a buy price that will
// cross any resting ask
var marketBuyMultiplier = decimal.NewFromInt(10)

var errEmptyCancel = errors.New("cancel request selects no orders")

// Config for initializing the Exchange client
type Config struct {
	BaseURL string
	// Timeout in seconds, none when zero
	Timeout   uint
	AccountID uint64
	// Signer holds the account's L2 key. Required.
	Signer l2.Signer
	// Hasher defaults to l2.PedersenHasher
	Hasher l2.Hasher
	// Params defaults to l2.DefaultParams()
	Params *l2.Params
	Logger *zap.Logger
	// Auth authorizes private requests. Defaults to RequestAuthenticator
	// over Signer.
	Auth rest.Authenticator
	// Client replaces the REST client built from BaseURL, Timeout and Auth
	Client rest.ClientInterface
	// Metadata seeds the metadata cache
	Metadata *info.Metadata
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Exchange signs and submits orders, transfers and withdrawals
type Exchange struct {
	rest      rest.ClientInterface
	info      *info.Info
	encoder   *l2.Encoder
	accountID uint64
	logger    *zap.Logger
}

// New creates a new Exchange client
func New(cfg Config) (*Exchange, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}

	logger := utils.OrNop(cfg.Logger)

	restClient := cfg.Client
	if restClient == nil {
		auth := cfg.Auth
		if auth == nil {
			auth = RequestAuthenticator(cfg.Signer, cfg.Clock)
		}
		restClient = rest.New(rest.Config{
			BaseUrl: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Auth:    auth,
		})
	}

	infoClient, err := info.New(info.Config{
		Client:   restClient,
		SkipWS:   true,
		Logger:   logger,
		Metadata: cfg.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create info client: %w", err)
	}

	encoder, err := l2.NewEncoder(l2.EncoderConfig{
		AccountID: cfg.AccountID,
		Signer:    cfg.Signer,
		Hasher:    cfg.Hasher,
		Params:    cfg.Params,
		Logger:    logger,
		Clock:     cfg.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}

	return &Exchange{
		rest:      restClient,
		info:      infoClient,
		encoder:   encoder,
		accountID: cfg.AccountID,
		logger:    logger,
	}, nil
}

// Info returns the metadata client the exchange signs against
func (e *Exchange) Info() *info.Info {
	return e.info
}

// CreateOrder signs and submits an order. Market orders without an explicit
// price get one from MarketOrderPrice; the wire price is "0" either way.
func (e *Exchange) CreateOrder(ctx context.Context, intent l2.OrderIntent) (*CreateOrderResult, error) {
	if intent.Type == types.OrderTypeMarket && intent.Price == "" {
		price, err := e.MarketOrderPrice(ctx, intent.ContractID, intent.Side)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve market order price: %w", err)
		}
		intent.Price = price
	}

	meta, err := e.info.CachedMetadata(ctx)
	if err != nil {
		return nil, err
	}

	signed, err := e.encoder.EncodeOrder(meta, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	result, err := post[CreateOrderResult](ctx, e.rest, createOrderPath, newOrderWire(e.accountID, signed))
	if err != nil {
		return nil, err
	}
	result.ClientOrderID = signed.ClientOrderID

	e.logger.Info("order created",
		zap.String("orderId", result.OrderID),
		zap.String("clientOrderId", result.ClientOrderID),
	)

	return &result, nil
}

// CreateTransferOut signs and submits a collateral transfer to another
// account.
func (e *Exchange) CreateTransferOut(
	ctx context.Context,
	coinID string,
	amount string,
	receiverAccountID string,
	receiverL2Key string,
	opts ...TransferOption,
) (*TransferOutResult, error) {
	intent := l2.TransferIntent{
		CoinID:            coinID,
		Amount:            amount,
		ReceiverAccountID: receiverAccountID,
		ReceiverL2Key:     receiverL2Key,
	}
	for _, opt := range opts {
		opt(&intent)
	}

	meta, err := e.info.CachedMetadata(ctx)
	if err != nil {
		return nil, err
	}

	signed, err := e.encoder.EncodeTransfer(meta, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer: %w", err)
	}

	result, err := post[TransferOutResult](ctx, e.rest, createTransferOutPath, newTransferWire(e.accountID, signed))
	if err != nil {
		return nil, err
	}
	result.ClientTransferID = signed.ClientTransferID

	return &result, nil
}

// CreateWithdrawal signs and submits a withdrawal to an L1 address.
func (e *Exchange) CreateWithdrawal(
	ctx context.Context,
	coinID string,
	amount string,
	ethAddress string,
	opts ...WithdrawalOption,
) (*WithdrawalResult, error) {
	intent := l2.WithdrawalIntent{
		CoinID:     coinID,
		Amount:     amount,
		EthAddress: ethAddress,
	}
	for _, opt := range opts {
		opt(&intent)
	}

	meta, err := e.info.CachedMetadata(ctx)
	if err != nil {
		return nil, err
	}

	signed, err := e.encoder.EncodeWithdrawal(meta, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode withdrawal: %w", err)
	}

	result, err := post[WithdrawalResult](ctx, e.rest, createNormalWithdrawPath, newWithdrawalWire(e.accountID, signed))
	if err != nil {
		return nil, err
	}
	result.ClientWithdrawID = signed.ClientWithdrawID

	return &result, nil
}

// CancelOrder cancels the orders selected by req. Cancels are not signed at
// L2.
func (e *Exchange) CancelOrder(ctx context.Context, req CancelRequest) (*CancelOrderResult, error) {
	accountID := formatUint(e.accountID)

	var (
		path string
		body map[string]any
	)
	switch {
	case len(req.OrderIDs) > 0:
		path = cancelOrderByIDPath
		body = map[string]any{"accountId": accountID, "orderIdList": req.OrderIDs}
	case len(req.ClientOrderIDs) > 0:
		path = cancelOrderByClientPath
		body = map[string]any{"accountId": accountID, "clientOrderIdList": req.ClientOrderIDs}
	case len(req.ContractIDs) > 0:
		path = cancelAllOrderPath
		body = map[string]any{"accountId": accountID, "filterContractIdList": req.ContractIDs}
	default:
		return nil, errEmptyCancel
	}

	result, err := post[CancelOrderResult](ctx, e.rest, path, body)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ActiveOrders lists open orders matching filter
func (e *Exchange) ActiveOrders(ctx context.Context, filter OrderPageFilter) (*ActiveOrderPage, error) {
	q := e.pageQuery(filter.Size, filter.OffsetData)
	q.list("filterCoinIdList", filter.CoinIDs)
	q.list("filterContractIdList", filter.ContractIDs)
	orderTypes := make([]string, len(filter.Types))
	for i, t := range filter.Types {
		orderTypes[i] = string(t)
	}
	q.list("filterTypeList", orderTypes)
	q.list("filterStatusList", filter.Statuses)
	q.createdRange(filter.CreatedFrom, filter.CreatedUntil)

	page, err := get[ActiveOrderPage](ctx, e.rest, activeOrderPagePath, q)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// OrderFillTransactions lists the account's fills matching filter
func (e *Exchange) OrderFillTransactions(ctx context.Context, filter FillPageFilter) (*OrderFillPage, error) {
	q := e.pageQuery(filter.Size, filter.OffsetData)
	q.list("filterCoinIdList", filter.CoinIDs)
	q.list("filterContractIdList", filter.ContractIDs)
	q.list("filterOrderIdList", filter.OrderIDs)
	q.flag("filterIsLiquidateList", filter.Liquidate)
	q.flag("filterIsDeleverageList", filter.Deleverage)
	q.flag("filterIsPositionTpslList", filter.PositionTPSL)
	q.createdRange(filter.CreatedFrom, filter.CreatedUntil)

	page, err := get[OrderFillPage](ctx, e.rest, fillTransactionPagePath, q)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// MaxOrderSize returns the largest buy and sell size the account can place
// on contractID at price.
func (e *Exchange) MaxOrderSize(ctx context.Context, contractID string, price string) (*MaxOrderSize, error) {
	if _, err := l2.ParseAmount("price", price); err != nil {
		return nil, err
	}

	result, err := post[MaxOrderSize](ctx, e.rest, maxCreateOrderSizePath, map[string]string{
		"accountId":  formatUint(e.accountID),
		"contractId": contractID,
		"price":      price,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// AccountAsset returns the account record with its collateral and positions
func (e *Exchange) AccountAsset(ctx context.Context) (*AccountAsset, error) {
	asset, err := get[AccountAsset](ctx, e.rest, accountAssetPath, map[string]string{
		"accountId": formatUint(e.accountID),
	})
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// AccountPositions returns the open positions and their valuation. The
// gateway serves them as part of the account asset.
func (e *Exchange) AccountPositions(ctx context.Context) (*AccountPositions, error) {
	asset, err := e.AccountAsset(ctx)
	if err != nil {
		return nil, err
	}
	return &AccountPositions{
		PositionList:      asset.PositionList,
		PositionAssetList: asset.PositionAssetList,
	}, nil
}

// pageQuery is the query of a paged private listing
type pageQuery map[string]string

func (e *Exchange) pageQuery(size int, offsetData string) pageQuery {
	if size <= 0 {
		size = defaultPageSize
	}
	q := pageQuery{
		"accountId": formatUint(e.accountID),
		"size":      strconv.Itoa(size),
	}
	if offsetData != "" {
		q["offsetData"] = offsetData
	}
	return q
}

func (q pageQuery) list(key string, ids []string) {
	if len(ids) > 0 {
		q[key] = utils.JoinIDs(ids)
	}
}

func (q pageQuery) flag(key string, v mo.Option[bool]) {
	if b, ok := v.Get(); ok {
		q[key] = strconv.FormatBool(b)
	}
}

func (q pageQuery) createdRange(from, until mo.Option[time.Time]) {
	if t, ok := from.Get(); ok {
		q["filterStartCreatedTimeInclusive"] = formatInt(t.UnixMilli())
	}
	if t, ok := until.Get(); ok {
		q["filterEndCreatedTimeExclusive"] = formatInt(t.UnixMilli())
	}
}

// MarketOrderPrice returns the price a market order is signed with: ten
// times the oracle price at tick precision for buys, one tick for sells.
func (e *Exchange) MarketOrderPrice(ctx context.Context, contractID string, side types.Side) (string, error) {
	if err := side.Validate(); err != nil {
		return "", err
	}

	meta, err := e.info.CachedMetadata(ctx)
	if err != nil {
		return "", err
	}

	contract, err := l2.ResolveContract(meta, contractID)
	if err != nil {
		return "", err
	}

	if !side.IsBuy() {
		return utils.FormatDecimal(contract.TickSize), nil
	}

	ticker, err := e.info.Ticker(ctx, contractID)
	if err != nil {
		return "", err
	}

	oracle, err := l2.ParseAmount("oraclePrice", ticker.OraclePrice)
	if err != nil {
		return "", err
	}

	price := utils.RoundToPlaces(
		oracle.Mul(marketBuyMultiplier),
		utils.DecimalPlaces(contract.TickSize),
	)

	e.logger.Debug("resolved market order price",
		zap.String("contractId", contractID),
		zap.String("oraclePrice", ticker.OraclePrice),
		zap.String("price", price.String()),
	)

	return utils.FormatDecimal(price), nil
}
