package l2

import (
	"math/big"
	"strconv"

	"github.com/banky/go-edgex/info"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// ContractDescriptor is the slice of contract metadata needed to encode an
// order. It is built per operation and never cached here.
type ContractDescriptor struct {
	ID                  string
	QuoteCoinID         string
	SyntheticAssetID    *big.Int
	Resolution          *big.Int
	DefaultTakerFeeRate decimal.NullDecimal
	TickSize            decimal.Decimal
}

// FeeRate returns the contract's taker fee rate, or fallback when the
// contract does not publish one
func (c ContractDescriptor) FeeRate(fallback decimal.Decimal) decimal.Decimal {
	if c.DefaultTakerFeeRate.Valid {
		return c.DefaultTakerFeeRate.Decimal
	}
	return fallback
}

// CoinDescriptor is the slice of coin metadata needed to encode transfers
// and withdrawals.
type CoinDescriptor struct {
	ID string
	// Decimals is absent when the coin does not publish a decimal count
	Decimals   mo.Option[int32]
	AssetID    *big.Int
	Resolution *big.Int
}

// OrderAssets is a contract together with its quote (collateral) coin
type OrderAssets struct {
	Contract ContractDescriptor
	Quote    CoinDescriptor
}

// ResolveContract looks contractID up in meta.
func ResolveContract(meta *info.Metadata, contractID string) (ContractDescriptor, error) {
	c, ok := meta.Contract(contractID)
	if !ok {
		return ContractDescriptor{}, &NotFoundError{Kind: "contract", ID: contractID}
	}

	d := ContractDescriptor{
		ID:               c.ContractID,
		QuoteCoinID:      c.QuoteCoinID,
		SyntheticAssetID: c.StarkExSyntheticAssetID.Big(),
		Resolution:       c.StarkExResolution.Big(),
	}

	if d.Resolution.Sign() == 0 {
		return ContractDescriptor{}, amountError("starkExResolution", c.StarkExResolution.Hex(), errZeroResolution)
	}

	if c.DefaultTakerFeeRate != "" {
		rate, err := ParseAmount("defaultTakerFeeRate", c.DefaultTakerFeeRate)
		if err != nil {
			return ContractDescriptor{}, err
		}
		d.DefaultTakerFeeRate = decimal.NewNullDecimal(rate)
	}

	if c.TickSize != "" {
		tick, err := ParseAmount("tickSize", c.TickSize)
		if err != nil {
			return ContractDescriptor{}, err
		}
		d.TickSize = tick
	}

	return d, nil
}

// ResolveCoin looks coinID up in meta's coin list.
func ResolveCoin(meta *info.Metadata, coinID string) (CoinDescriptor, error) {
	c, ok := meta.Coin(coinID)
	if !ok {
		return CoinDescriptor{}, &NotFoundError{Kind: "coin", ID: coinID}
	}
	return coinDescriptor(c)
}

// ResolveCollateralCoin returns the global collateral coin transfers are
// denominated in.
func ResolveCollateralCoin(meta *info.Metadata) (CoinDescriptor, error) {
	if meta == nil || meta.Global.StarkExCollateralCoin.CoinID == "" {
		return CoinDescriptor{}, &NotFoundError{Kind: "collateral coin", ID: "global.starkExCollateralCoin"}
	}
	return coinDescriptor(meta.Global.StarkExCollateralCoin)
}

// ResolveOrderAssets resolves a contract and the coin it is quoted in.
func ResolveOrderAssets(meta *info.Metadata, contractID string) (OrderAssets, error) {
	contract, err := ResolveContract(meta, contractID)
	if err != nil {
		return OrderAssets{}, err
	}

	quote, err := ResolveCoin(meta, contract.QuoteCoinID)
	if err != nil {
		return OrderAssets{}, err
	}
	if quote.Resolution.Sign() == 0 {
		return OrderAssets{}, amountError("starkExResolution", "0x0", errZeroResolution)
	}

	return OrderAssets{Contract: contract, Quote: quote}, nil
}

func coinDescriptor(c info.Coin) (CoinDescriptor, error) {
	d := CoinDescriptor{
		ID:         c.CoinID,
		AssetID:    c.StarkExAssetID.Big(),
		Resolution: c.StarkExResolution.Big(),
	}

	if raw := c.Decimal.String(); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 0 {
			return CoinDescriptor{}, amountError("decimal", raw, err)
		}
		d.Decimals = mo.Some(int32(n))
	}

	return d, nil
}
