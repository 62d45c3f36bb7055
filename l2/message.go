package l2

import (
	"fmt"
	"math/big"
)

// Word prefixes and padding of the packed message words
const (
	orderPrefix               = 3
	transferPrefix            = 4
	withdrawalToAddressPrefix = 7

	orderPaddingBits      = 17
	transferPaddingBits   = 81
	withdrawalPaddingBits = 49
)

// Field is one named protocol integer and the bit width it must fit in
type Field struct {
	Name  string
	Value *big.Int
	Bits  uint
}

func validateFields(fields []Field) error {
	for _, f := range fields {
		if f.Value == nil {
			return amountError(f.Name, "<nil>", errEmpty)
		}
		if f.Value.Sign() < 0 {
			return amountError(f.Name, f.Value.String(), errNegative)
		}
		if uint(f.Value.BitLen()) > f.Bits {
			return amountError(f.Name, f.Value.String(), fmt.Errorf("exceeds %d bits", f.Bits))
		}
	}
	return nil
}

// packer builds a word by shifting fields in from the right
type packer struct {
	w *big.Int
}

func newPacker(start uint64) *packer {
	return &packer{w: new(big.Int).SetUint64(start)}
}

func (p *packer) push(v *big.Int, bits uint) *packer {
	p.w.Lsh(p.w, bits).Or(p.w, v)
	return p
}

func (p *packer) pushUint(v uint64, bits uint) *packer {
	return p.push(new(big.Int).SetUint64(v), bits)
}

func (p *packer) pad(bits uint) *big.Int {
	return p.w.Lsh(p.w, bits)
}

// chain folds values left to right through h: h(h(h(a, b), c), d)
func chain(h Hasher, first *big.Int, rest ...*big.Int) (*big.Int, error) {
	acc := first
	for _, v := range rest {
		next, err := h.Hash(acc, v)
		if err != nil {
			return nil, fmt.Errorf("failed to hash message: %w", err)
		}
		acc = next
	}
	return acc, nil
}

// ===== Order =====

// OrderMessage is the quantized tuple signed for a limit order. The fee
// asset is the collateral asset.
type OrderMessage struct {
	SyntheticAssetID  *big.Int
	CollateralAssetID *big.Int
	FeeAssetID        *big.Int
	IsBuy             bool
	AmountSynthetic   *big.Int
	AmountCollateral  *big.Int
	AmountFee         *big.Int
	Nonce             uint64
	PositionID        uint64
	ExpirationHours   uint64
}

// Fields lists the message in protocol order
func (m OrderMessage) Fields() []Field {
	isBuy := big.NewInt(0)
	if m.IsBuy {
		isBuy = big.NewInt(1)
	}

	return []Field{
		{Name: "syntheticAssetId", Value: m.SyntheticAssetID, Bits: 128},
		{Name: "collateralAssetId", Value: m.CollateralAssetID, Bits: 250},
		{Name: "feeAssetId", Value: m.FeeAssetID, Bits: 250},
		{Name: "isBuy", Value: isBuy, Bits: 1},
		{Name: "amountSynthetic", Value: m.AmountSynthetic, Bits: 64},
		{Name: "amountCollateral", Value: m.AmountCollateral, Bits: 64},
		{Name: "amountFee", Value: m.AmountFee, Bits: 64},
		{Name: "nonce", Value: new(big.Int).SetUint64(m.Nonce), Bits: 32},
		{Name: "positionId", Value: new(big.Int).SetUint64(m.PositionID), Bits: 64},
		{Name: "expirationHours", Value: new(big.Int).SetUint64(m.ExpirationHours), Bits: 32},
	}
}

func (m OrderMessage) Validate() error {
	return validateFields(m.Fields())
}

// Hash packs and hashes the order. The side decides which asset is sold:
// a buy sells collateral for synthetic, a sell the reverse.
func (m OrderMessage) Hash(h Hasher) (*big.Int, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	assetSell, assetBuy := m.SyntheticAssetID, m.CollateralAssetID
	amountSell, amountBuy := m.AmountSynthetic, m.AmountCollateral
	if m.IsBuy {
		assetSell, assetBuy = m.CollateralAssetID, m.SyntheticAssetID
		amountSell, amountBuy = m.AmountCollateral, m.AmountSynthetic
	}

	w0 := newPacker(0).
		push(amountSell, 64).
		push(amountBuy, 64).
		push(m.AmountFee, 64).
		pushUint(m.Nonce, 32).
		w

	w1 := newPacker(orderPrefix).
		pushUint(m.PositionID, 64).
		pushUint(m.PositionID, 64).
		pushUint(m.PositionID, 64).
		pushUint(m.ExpirationHours, 32).
		pad(orderPaddingBits)

	return chain(h, assetSell, assetBuy, m.FeeAssetID, w0, w1)
}

// ===== Transfer =====

// TransferMessage is the tuple signed for an internal collateral transfer
type TransferMessage struct {
	AssetID            *big.Int
	FeeAssetID         *big.Int
	ReceiverPublicKey  *big.Int
	SenderPositionID   uint64
	ReceiverPositionID uint64
	FeePositionID      uint64
	Nonce              uint64
	Amount             *big.Int
	MaxAmountFee       *big.Int
	ExpirationHours    uint64
}

func (m TransferMessage) Fields() []Field {
	return []Field{
		{Name: "assetId", Value: m.AssetID, Bits: 250},
		{Name: "feeAssetId", Value: m.FeeAssetID, Bits: 250},
		{Name: "receiverPublicKey", Value: m.ReceiverPublicKey, Bits: 251},
		{Name: "senderPositionId", Value: new(big.Int).SetUint64(m.SenderPositionID), Bits: 64},
		{Name: "receiverPositionId", Value: new(big.Int).SetUint64(m.ReceiverPositionID), Bits: 64},
		{Name: "feePositionId", Value: new(big.Int).SetUint64(m.FeePositionID), Bits: 64},
		{Name: "nonce", Value: new(big.Int).SetUint64(m.Nonce), Bits: 32},
		{Name: "amount", Value: m.Amount, Bits: 64},
		{Name: "maxAmountFee", Value: m.MaxAmountFee, Bits: 64},
		{Name: "expirationHours", Value: new(big.Int).SetUint64(m.ExpirationHours), Bits: 32},
	}
}

func (m TransferMessage) Validate() error {
	return validateFields(m.Fields())
}

func (m TransferMessage) Hash(h Hasher) (*big.Int, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	w0 := newPacker(m.SenderPositionID).
		pushUint(m.ReceiverPositionID, 64).
		pushUint(m.FeePositionID, 64).
		pushUint(m.Nonce, 32).
		w

	w1 := newPacker(transferPrefix).
		push(m.Amount, 64).
		push(m.MaxAmountFee, 64).
		pushUint(m.ExpirationHours, 32).
		pad(transferPaddingBits)

	return chain(h, m.AssetID, m.FeeAssetID, m.ReceiverPublicKey, w0, w1)
}

// ===== Withdrawal =====

// WithdrawalMessage is the tuple signed for a withdrawal to an L1 address
type WithdrawalMessage struct {
	AssetID         *big.Int
	PositionID      uint64
	EthAddress      *big.Int
	Nonce           uint64
	ExpirationHours uint64
	Amount          *big.Int
}

func (m WithdrawalMessage) Fields() []Field {
	return []Field{
		{Name: "assetId", Value: m.AssetID, Bits: 250},
		{Name: "positionId", Value: new(big.Int).SetUint64(m.PositionID), Bits: 64},
		{Name: "ethAddress", Value: m.EthAddress, Bits: 160},
		{Name: "nonce", Value: new(big.Int).SetUint64(m.Nonce), Bits: 32},
		{Name: "expirationHours", Value: new(big.Int).SetUint64(m.ExpirationHours), Bits: 32},
		{Name: "amount", Value: m.Amount, Bits: 64},
	}
}

func (m WithdrawalMessage) Validate() error {
	return validateFields(m.Fields())
}

func (m WithdrawalMessage) Hash(h Hasher) (*big.Int, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	w := newPacker(withdrawalToAddressPrefix).
		pushUint(m.PositionID, 64).
		pushUint(m.Nonce, 32).
		push(m.Amount, 64).
		pushUint(m.ExpirationHours, 32).
		pad(withdrawalPaddingBits)

	return chain(h, m.AssetID, m.EthAddress, w)
}
