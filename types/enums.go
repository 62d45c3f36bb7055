package types

import "fmt"

// Side is the direction of an order
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// IsBuy reports whether the order buys the synthetic asset
func (s Side) IsBuy() bool { return s == SideBuy }

func (s Side) Validate() error {
	switch s {
	case SideBuy, SideSell:
		return nil
	}
	return fmt.Errorf("invalid side: %q", string(s))
}

// OrderType is the execution style of an order
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

func (t OrderType) Validate() error {
	switch t {
	case OrderTypeLimit, OrderTypeMarket:
		return nil
	}
	return fmt.Errorf("invalid order type: %q", string(t))
}

// TimeInForce controls how long an order rests on the book
type TimeInForce string

const (
	TimeInForceGoodTilCancel     TimeInForce = "GOOD_TIL_CANCEL"
	TimeInForceFillOrKill        TimeInForce = "FILL_OR_KILL"
	TimeInForceImmediateOrCancel TimeInForce = "IMMEDIATE_OR_CANCEL"
	TimeInForcePostOnly          TimeInForce = "POST_ONLY"
)

// DefaultTimeInForce is IOC for market orders and GTC for everything else
func DefaultTimeInForce(t OrderType) TimeInForce {
	if t == OrderTypeMarket {
		return TimeInForceImmediateOrCancel
	}
	return TimeInForceGoodTilCancel
}

// TransferReason tags why collateral moves between accounts
type TransferReason string

const (
	TransferReasonUserTransfer  TransferReason = "USER_TRANSFER"
	TransferReasonFastWithdraw  TransferReason = "FAST_WITHDRAW"
	TransferReasonCrossDeposit  TransferReason = "CROSS_DEPOSIT"
	TransferReasonCrossWithdraw TransferReason = "CROSS_WITHDRAW"
)

func (r TransferReason) Validate() error {
	switch r {
	case TransferReasonUserTransfer,
		TransferReasonFastWithdraw,
		TransferReasonCrossDeposit,
		TransferReasonCrossWithdraw:
		return nil
	}
	return fmt.Errorf("invalid transfer reason: %q", string(r))
}
