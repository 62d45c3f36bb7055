package l2

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/banky/go-edgex/constants"
	"github.com/banky/go-edgex/info"
	"github.com/banky/go-edgex/internal/utils"
	"github.com/banky/go-edgex/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

var (
	errIncompleteSignature = errors.New("signer returned an incomplete signature")
	errInvalidAddress      = errors.New("not a hex address")
	errZeroAddress         = errors.New("zero address")
)

// Encoder turns intents into signed protocol messages. Every stage is a
// pure computation; the only shared state is the read-only signer.
type Encoder struct {
	accountID uint64
	signer    Signer
	hasher    Hasher
	params    Params
	logger    *zap.Logger
	now       func() time.Time
}

// EncoderConfig for NewEncoder
type EncoderConfig struct {
	// AccountID is the L2 position id that signs and pays fees
	AccountID uint64
	Signer    Signer
	// Hasher defaults to PedersenHasher
	Hasher Hasher
	// Params defaults to DefaultParams()
	Params *Params
	Logger *zap.Logger
	// Clock defaults to time.Now
	Clock func() time.Time
}

// NewEncoder creates an Encoder
func NewEncoder(cfg EncoderConfig) (*Encoder, error) {
	if cfg.Signer == nil {
		return nil, fmt.Errorf("signer is required")
	}

	e := &Encoder{
		accountID: cfg.AccountID,
		signer:    cfg.Signer,
		hasher:    cfg.Hasher,
		params:    DefaultParams(),
		logger:    utils.OrNop(cfg.Logger),
		now:       cfg.Clock,
	}

	if e.hasher == nil {
		e.hasher = PedersenHasher{}
	}
	if cfg.Params != nil {
		e.params = *cfg.Params
	}
	if e.now == nil {
		e.now = time.Now
	}

	return e, nil
}

// AccountID returns the position id the encoder signs for
func (e *Encoder) AccountID() uint64 { return e.accountID }

// Params returns the protocol defaults in use
func (e *Encoder) Params() Params { return e.params }

// EncodeOrder resolves, quantizes, hashes and signs an order against meta.
func (e *Encoder) EncodeOrder(meta *info.Metadata, intent OrderIntent) (SignedOrder, error) {
	if err := intent.Side.Validate(); err != nil {
		return SignedOrder{}, err
	}
	if err := intent.Type.Validate(); err != nil {
		return SignedOrder{}, err
	}

	assets, err := ResolveOrderAssets(meta, intent.ContractID)
	if err != nil {
		return SignedOrder{}, err
	}

	price, err := ParseAmount("price", intent.Price)
	if err != nil {
		return SignedOrder{}, err
	}
	size, err := ParseAmount("size", intent.Size)
	if err != nil {
		return SignedOrder{}, err
	}

	if intent.TimeInForce == "" {
		intent.TimeInForce = types.DefaultTimeInForce(intent.Type)
	}

	value := OrderValue(price, size)
	limitFee := LimitFee(size, price, assets.Contract.FeeRate(e.params.DefaultFeeRate))

	clientID := e.clientID(intent.ClientOrderID)
	nonce := Nonce(clientID)
	expiry := OrderExpiry(e.now(), intent.ExpireTime, e.params)

	msg := OrderMessage{
		SyntheticAssetID:  assets.Contract.SyntheticAssetID,
		CollateralAssetID: assets.Quote.AssetID,
		FeeAssetID:        assets.Quote.AssetID,
		IsBuy:             intent.Side.IsBuy(),
		AmountSynthetic:   ToQuantums(size, assets.Contract.Resolution),
		AmountCollateral:  ToQuantums(value, assets.Quote.Resolution),
		AmountFee:         FeeQuantums(limitFee, assets.Quote.Resolution),
		Nonce:             nonce,
		PositionID:        e.accountID,
		ExpirationHours:   expiry.Hours,
	}

	sig, err := e.sign(msg.Hash)
	if err != nil {
		return SignedOrder{}, err
	}

	wirePrice := intent.Price
	if intent.Type == types.OrderTypeMarket {
		wirePrice = "0"
	}

	e.logger.Debug("encoded order",
		zap.String("contractId", intent.ContractID),
		zap.String("clientOrderId", clientID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("expiryHours", expiry.Hours),
	)

	return SignedOrder{
		Intent:        intent,
		WirePrice:     wirePrice,
		ClientOrderID: clientID,
		Nonce:         nonce,
		Expiry:        expiry,
		Value:         value,
		LimitFee:      limitFee,
		Message:       msg,
		Signature:     sig,
	}, nil
}

// EncodeTransfer signs an internal transfer of the global collateral coin.
func (e *Encoder) EncodeTransfer(meta *info.Metadata, intent TransferIntent) (SignedTransfer, error) {
	if _, err := ResolveCoin(meta, intent.CoinID); err != nil {
		return SignedTransfer{}, err
	}
	collateral, err := ResolveCollateralCoin(meta)
	if err != nil {
		return SignedTransfer{}, err
	}

	if intent.Reason == "" {
		intent.Reason = types.TransferReasonUserTransfer
	}
	if err := intent.Reason.Validate(); err != nil {
		return SignedTransfer{}, err
	}

	amount, err := ParseAmount("amount", intent.Amount)
	if err != nil {
		return SignedTransfer{}, err
	}

	receiverPosition, err := strconv.ParseUint(intent.ReceiverAccountID, 10, 64)
	if err != nil {
		return SignedTransfer{}, amountError("receiverAccountId", intent.ReceiverAccountID, err)
	}

	receiverKey, err := utils.HexToBig(intent.ReceiverL2Key)
	if err != nil {
		return SignedTransfer{}, amountError("receiverL2Key", intent.ReceiverL2Key, err)
	}

	clientID := e.clientID(intent.ClientTransferID)
	nonce := Nonce(clientID)
	expiry := TransferExpiry(e.now(), intent.ExpireTime, e.params)

	msg := TransferMessage{
		AssetID:            collateral.AssetID,
		FeeAssetID:         big.NewInt(0),
		ReceiverPublicKey:  receiverKey,
		SenderPositionID:   e.accountID,
		ReceiverPositionID: receiverPosition,
		FeePositionID:      e.accountID,
		Nonce:              nonce,
		Amount:             ShiftQuantums(amount, e.params.TransferDecimals),
		MaxAmountFee:       big.NewInt(0),
		ExpirationHours:    expiry.Hours,
	}

	sig, err := e.sign(msg.Hash)
	if err != nil {
		return SignedTransfer{}, err
	}

	e.logger.Debug("encoded transfer",
		zap.String("coinId", intent.CoinID),
		zap.String("clientTransferId", clientID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("expiryHours", expiry.Hours),
	)

	return SignedTransfer{
		Intent:           intent,
		ClientTransferID: clientID,
		Nonce:            nonce,
		Expiry:           expiry,
		Message:          msg,
		Signature:        sig,
	}, nil
}

// EncodeWithdrawal signs a withdrawal of coinID to an L1 address.
func (e *Encoder) EncodeWithdrawal(meta *info.Metadata, intent WithdrawalIntent) (SignedWithdrawal, error) {
	coin, err := ResolveCoin(meta, intent.CoinID)
	if err != nil {
		return SignedWithdrawal{}, err
	}

	amount, err := ParseAmount("amount", intent.Amount)
	if err != nil {
		return SignedWithdrawal{}, err
	}

	if !common.IsHexAddress(intent.EthAddress) {
		return SignedWithdrawal{}, amountError("ethAddress", intent.EthAddress, errInvalidAddress)
	}
	ethAddress := common.HexToAddress(intent.EthAddress)
	if ethAddress == constants.ZERO_ADDRESS {
		return SignedWithdrawal{}, amountError("ethAddress", intent.EthAddress, errZeroAddress)
	}
	address := new(big.Int).SetBytes(ethAddress.Bytes())

	clientID := e.clientID(intent.ClientWithdrawID)
	nonce := Nonce(clientID)
	expiry := WithdrawalExpiry(e.now(), intent.ExpireTime, e.params)

	msg := WithdrawalMessage{
		AssetID:         coin.AssetID,
		PositionID:      e.accountID,
		EthAddress:      address,
		Nonce:           nonce,
		ExpirationHours: expiry.Hours,
		Amount:          ShiftQuantums(amount, coin.Decimals.OrElse(e.params.CoinDecimals)),
	}

	sig, err := e.sign(msg.Hash)
	if err != nil {
		return SignedWithdrawal{}, err
	}

	e.logger.Debug("encoded withdrawal",
		zap.String("coinId", intent.CoinID),
		zap.String("clientWithdrawId", clientID),
		zap.Uint64("nonce", nonce),
		zap.Uint64("expiryHours", expiry.Hours),
	)

	return SignedWithdrawal{
		Intent:           intent,
		ClientWithdrawID: clientID,
		Nonce:            nonce,
		Expiry:           expiry,
		Message:          msg,
		Signature:        sig,
	}, nil
}

func (e *Encoder) clientID(given mo.Option[string]) string {
	if id, ok := given.Get(); ok && id != "" {
		return id
	}
	return NewClientID()
}

// sign hashes the message and calls the signer exactly once
func (e *Encoder) sign(hash func(Hasher) (*big.Int, error)) (Signature, error) {
	digest, err := hash(e.hasher)
	if err != nil {
		return Signature{}, err
	}

	sig, err := e.signer.Sign(digest)
	if err != nil {
		return Signature{}, &SigningError{Err: err}
	}
	if sig.R == nil || sig.S == nil {
		return Signature{}, &SigningError{Err: errIncompleteSignature}
	}

	return sig, nil
}
