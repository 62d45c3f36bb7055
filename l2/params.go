package l2

import (
	"time"

	"github.com/shopspring/decimal"
)

// Params are the protocol defaults the pipeline reads. Tests override them
// to get deterministic values.
type Params struct {
	// DefaultFeeRate applies when a contract publishes no taker fee rate
	DefaultFeeRate decimal.Decimal
	// OrderHorizon is how far in the future an order expires when the
	// caller gives no explicit expiry
	OrderHorizon time.Duration
	// Extension windows added to the wire expiry before it is signed
	OrderExtension      time.Duration
	TransferExtension   time.Duration
	WithdrawalExtension time.Duration
	// TransferDecimals is the fixed shift applied to internal transfer
	// amounts
	TransferDecimals int32
	// CoinDecimals is used when a coin publishes no decimal count
	CoinDecimals int32
}

const day = 24 * time.Hour

// DefaultParams returns the values the exchange runs with
func DefaultParams() Params {
	return Params{
		DefaultFeeRate:      decimal.RequireFromString("0.00038"),
		OrderHorizon:        day,
		OrderExtension:      9 * day,
		TransferExtension:   14 * day,
		WithdrawalExtension: 14 * day,
		TransferDecimals:    6,
		CoinDecimals:        6,
	}
}
