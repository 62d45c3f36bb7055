package exchange

import (
	"time"

	"github.com/banky/go-edgex/l2"
	"github.com/banky/go-edgex/types"
	"github.com/samber/mo"
)

/*//////////////////////////////////////////////////////////////
                             ORDER
//////////////////////////////////////////////////////////////*/

// OrderOption is a functional option for order intents
type OrderOption func(*l2.OrderIntent)

// WithClientOrderID fixes the client order id, and with it the nonce
func WithClientOrderID(id string) OrderOption {
	return func(o *l2.OrderIntent) {
		o.ClientOrderID = mo.Some(id)
	}
}

// WithOrderExpireTime replaces the default 24 hour expiry
func WithOrderExpireTime(t time.Time) OrderOption {
	return func(o *l2.OrderIntent) {
		o.ExpireTime = mo.Some(t)
	}
}

func WithTimeInForce(tif types.TimeInForce) OrderOption {
	return func(o *l2.OrderIntent) {
		o.TimeInForce = tif
	}
}

func WithReduceOnly(reduceOnly bool) OrderOption {
	return func(o *l2.OrderIntent) {
		o.ReduceOnly = reduceOnly
	}
}

// WithMarketOrderPrice sets the signing price of a market order instead of
// deriving it from the oracle price
func WithMarketOrderPrice(price string) OrderOption {
	return func(o *l2.OrderIntent) {
		o.Price = price
	}
}

// NewLimitOrder builds a limit order intent
func NewLimitOrder(
	contractID string,
	side types.Side,
	price string,
	size string,
	opts ...OrderOption,
) l2.OrderIntent {
	o := l2.OrderIntent{
		ContractID: contractID,
		Side:       side,
		Type:       types.OrderTypeLimit,
		Price:      price,
		Size:       size,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMarketOrder builds a market order intent. The signing price is resolved
// by CreateOrder unless WithMarketOrderPrice is given.
func NewMarketOrder(
	contractID string,
	side types.Side,
	size string,
	opts ...OrderOption,
) l2.OrderIntent {
	o := l2.OrderIntent{
		ContractID: contractID,
		Side:       side,
		Type:       types.OrderTypeMarket,
		Size:       size,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

/*//////////////////////////////////////////////////////////////
                            TRANSFER
//////////////////////////////////////////////////////////////*/

// TransferOption is a functional option for transfer intents
type TransferOption func(*l2.TransferIntent)

// WithTransferReason overrides USER_TRANSFER
func WithTransferReason(reason types.TransferReason) TransferOption {
	return func(t *l2.TransferIntent) {
		t.Reason = reason
	}
}

func WithClientTransferID(id string) TransferOption {
	return func(t *l2.TransferIntent) {
		t.ClientTransferID = mo.Some(id)
	}
}

func WithTransferExpireTime(at time.Time) TransferOption {
	return func(t *l2.TransferIntent) {
		t.ExpireTime = mo.Some(at)
	}
}

// WithTransferExtra attaches the gateway's free form extra type and JSON
// payload. Neither is signed.
func WithTransferExtra(extraType, extraDataJSON string) TransferOption {
	return func(t *l2.TransferIntent) {
		t.ExtraType = mo.Some(extraType)
		t.ExtraDataJSON = mo.Some(extraDataJSON)
	}
}

/*//////////////////////////////////////////////////////////////
                           WITHDRAWAL
//////////////////////////////////////////////////////////////*/

// WithdrawalOption is a functional option for withdrawal intents
type WithdrawalOption func(*l2.WithdrawalIntent)

func WithClientWithdrawID(id string) WithdrawalOption {
	return func(w *l2.WithdrawalIntent) {
		w.ClientWithdrawID = mo.Some(id)
	}
}

func WithWithdrawalTag(tag string) WithdrawalOption {
	return func(w *l2.WithdrawalIntent) {
		w.Tag = mo.Some(tag)
	}
}

func WithWithdrawalExpireTime(at time.Time) WithdrawalOption {
	return func(w *l2.WithdrawalIntent) {
		w.ExpireTime = mo.Some(at)
	}
}

/*//////////////////////////////////////////////////////////////
                          ORDER QUERIES
//////////////////////////////////////////////////////////////*/

// CancelRequest selects the orders to cancel. The first non empty list
// wins: order ids, then client order ids, then contract ids, which cancels
// every open order on those contracts.
type CancelRequest struct {
	OrderIDs       []string
	ClientOrderIDs []string
	ContractIDs    []string
}

// OrderPageFilter narrows ActiveOrders. The zero value lists the first page
// of every open order.
type OrderPageFilter struct {
	// Size is the page size, 100 when zero
	Size       int
	OffsetData string

	CoinIDs     []string
	ContractIDs []string
	Types       []types.OrderType
	Statuses    []string

	CreatedFrom  mo.Option[time.Time]
	CreatedUntil mo.Option[time.Time]
}

// FillPageFilter narrows OrderFillTransactions. The zero value lists the
// first page of every fill.
type FillPageFilter struct {
	// Size is the page size, 100 when zero
	Size       int
	OffsetData string

	CoinIDs     []string
	ContractIDs []string
	OrderIDs    []string

	Liquidate    mo.Option[bool]
	Deleverage   mo.Option[bool]
	PositionTPSL mo.Option[bool]

	CreatedFrom  mo.Option[time.Time]
	CreatedUntil mo.Option[time.Time]
}
