package l2

import (
	"time"

	"github.com/banky/go-edgex/types"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// ===== Intents =====

// OrderIntent is an order in human units. For market orders Price carries
// the resolved signing price; the wire price is forced to "0".
type OrderIntent struct {
	ContractID string
	Side       types.Side
	Type       types.OrderType
	Price      string
	Size       string
	// TimeInForce defaults by order type when empty
	TimeInForce   types.TimeInForce
	ClientOrderID mo.Option[string]
	ExpireTime    mo.Option[time.Time]
	ReduceOnly    bool
}

// TransferIntent moves collateral to another account
type TransferIntent struct {
	CoinID            string
	Amount            string
	ReceiverAccountID string
	ReceiverL2Key     string
	Reason            types.TransferReason
	ExpireTime        mo.Option[time.Time]
	ExtraType         mo.Option[string]
	ExtraDataJSON     mo.Option[string]
	ClientTransferID  mo.Option[string]
}

// WithdrawalIntent withdraws a coin to an L1 address
type WithdrawalIntent struct {
	CoinID           string
	Amount           string
	EthAddress       string
	Tag              mo.Option[string]
	ExpireTime       mo.Option[time.Time]
	ClientWithdrawID mo.Option[string]
}

// ===== Signed results =====

// SignedOrder is an order intent with every protocol derived value attached
type SignedOrder struct {
	Intent        OrderIntent
	WirePrice     string
	ClientOrderID string
	Nonce         uint64
	Expiry        Expiry
	Value         decimal.Decimal
	LimitFee      decimal.Decimal
	Message       OrderMessage
	Signature     Signature
}

type SignedTransfer struct {
	Intent           TransferIntent
	ClientTransferID string
	Nonce            uint64
	Expiry           Expiry
	Message          TransferMessage
	Signature        Signature
}

type SignedWithdrawal struct {
	Intent           WithdrawalIntent
	ClientWithdrawID string
	Nonce            uint64
	Expiry           Expiry
	Message          WithdrawalMessage
	Signature        Signature
}
