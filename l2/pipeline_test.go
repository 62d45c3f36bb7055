package l2

import (
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banky/go-edgex/info"
	"github.com/banky/go-edgex/types"
	"github.com/maxatome/go-testdeep/td"
	"github.com/samber/mo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testAccountID = 542_000_001
	ethContract   = "10000002"
	solContract   = "10000003"
	collateralID  = "1000"
	btcCoinID     = "1001"
)

var testNow = time.UnixMilli(1_717_060_012_345).UTC()

func loadMetadata(t *testing.T) *info.Metadata {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "info", "cassettes", "metadata.json"))
	if err != nil {
		t.Fatalf("failed to load metadata cassette: %v", err)
	}

	var resp types.Response[info.Metadata]
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("failed to decode metadata cassette: %v", err)
	}
	return &resp.Data
}

// recordingSigner counts calls and returns a fixed signature or err
type recordingSigner struct {
	calls  int
	hashes []*big.Int
	sig    Signature
	err    error
}

func newRecordingSigner() *recordingSigner {
	return &recordingSigner{
		sig: Signature{R: big.NewInt(11), S: big.NewInt(22), V: mo.Some[uint8](1)},
	}
}

func (s *recordingSigner) Sign(hash *big.Int) (Signature, error) {
	s.calls++
	s.hashes = append(s.hashes, new(big.Int).Set(hash))
	return s.sig, s.err
}

// countingHasher wraps PedersenHasher and counts calls
type countingHasher struct {
	calls int
}

func (h *countingHasher) Hash(left, right *big.Int) (*big.Int, error) {
	h.calls++
	return PedersenHasher{}.Hash(left, right)
}

type encoderFixture struct {
	encoder *Encoder
	signer  *recordingSigner
	hasher  *countingHasher
	logs    *observer.ObservedLogs
}

func newEncoderFixture(t *testing.T) encoderFixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	f := encoderFixture{
		signer: newRecordingSigner(),
		hasher: &countingHasher{},
		logs:   logs,
	}

	enc, err := NewEncoder(EncoderConfig{
		AccountID: testAccountID,
		Signer:    f.signer,
		Hasher:    f.hasher,
		Logger:    zap.New(core),
		Clock:     func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}
	f.encoder = enc

	return f
}

func TestNewEncoderRequiresSigner(t *testing.T) {
	_, err := NewEncoder(EncoderConfig{AccountID: 1})
	td.CmpError(t, err)

	enc, err := NewEncoder(EncoderConfig{Signer: newRecordingSigner()})
	td.CmpNoError(t, err)
	td.Cmp(t, enc.Params().OrderExtension, 9*24*time.Hour)
}

func TestEncodeOrderLimit(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID:    ethContract,
		Side:          types.SideBuy,
		Type:          types.OrderTypeLimit,
		Price:         "2.5",
		Size:          "1",
		ClientOrderID: mo.Some("order-1"),
	})
	td.CmpNoError(t, err)

	td.Cmp(t, signed.WirePrice, "2.5")
	td.Cmp(t, signed.ClientOrderID, "order-1")
	td.Cmp(t, signed.Nonce, Nonce("order-1"))
	td.Cmp(t, signed.Intent.TimeInForce, types.TimeInForceGoodTilCancel)
	td.Cmp(t, signed.Value.String(), "2.5")
	td.Cmp(t, signed.LimitFee.String(), "1")

	msg := signed.Message
	td.Cmp(t, msg.AmountSynthetic.String(), "100000000")
	td.Cmp(t, msg.AmountCollateral.String(), "2500000")
	td.Cmp(t, msg.AmountFee.String(), "1000000")
	td.CmpTrue(t, msg.IsBuy)
	td.Cmp(t, msg.PositionID, uint64(testAccountID))
	td.Cmp(t, msg.Nonce, signed.Nonce)
	td.Cmp(t, msg.CollateralAssetID.String(), msg.FeeAssetID.String())
	td.Cmp(t, msg.CollateralAssetID.Text(16), "2ce625e94458d39dd0bf3b45a843544dd4a14b8169045a3a3d15aa564b936c5")
	td.Cmp(t, msg.SyntheticAssetID.Text(16), "4554482d3800000000000000000000")

	td.Cmp(t, signed.Expiry.Wire, testNow.Add(24*time.Hour))
	td.Cmp(t, signed.Expiry.Signed, testNow.Add(10*24*time.Hour))
	td.Cmp(t, msg.ExpirationHours, uint64(signed.Expiry.SignedMillis()/3_600_000))

	td.Cmp(t, f.signer.calls, 1)
	want, err := msg.Hash(PedersenHasher{})
	td.CmpNoError(t, err)
	td.Cmp(t, f.signer.hashes[0].String(), want.String())
	td.Cmp(t, signed.Signature.Wire(), f.signer.sig.Wire())
}

func TestEncodeWithDefaultsVerifiesOnStarkCurve(t *testing.T) {
	meta := loadMetadata(t)
	signer := newTestStarkSigner(t)

	enc, err := NewEncoder(EncoderConfig{
		AccountID: testAccountID,
		Signer:    signer,
		Clock:     func() time.Time { return testNow },
	})
	td.CmpNoError(t, err)

	order, err := enc.EncodeOrder(meta, OrderIntent{
		ContractID:    ethContract,
		Side:          types.SideBuy,
		Type:          types.OrderTypeLimit,
		Price:         "2.5",
		Size:          "1",
		ClientOrderID: mo.Some("order-1"),
	})
	td.CmpNoError(t, err)

	orderHash, err := order.Message.Hash(PedersenHasher{})
	td.CmpNoError(t, err)
	ok, err := signer.Verify(orderHash, order.Signature)
	td.CmpNoError(t, err)
	td.CmpTrue(t, ok)

	transfer, err := enc.EncodeTransfer(meta, TransferIntent{
		CoinID:            collateralID,
		Amount:            "5",
		ReceiverAccountID: "542000002",
		ReceiverL2Key:     signer.PublicKey(),
	})
	td.CmpNoError(t, err)

	transferHash, err := transfer.Message.Hash(PedersenHasher{})
	td.CmpNoError(t, err)
	ok, err = signer.Verify(transferHash, transfer.Signature)
	td.CmpNoError(t, err)
	td.CmpTrue(t, ok)
}

func TestEncodeOrderIsDeterministic(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	intent := OrderIntent{
		ContractID:    ethContract,
		Side:          types.SideSell,
		Type:          types.OrderTypeLimit,
		Price:         "3000.12",
		Size:          "0.37",
		ClientOrderID: mo.Some("retry-me"),
	}

	a, err := f.encoder.EncodeOrder(meta, intent)
	td.CmpNoError(t, err)
	b, err := f.encoder.EncodeOrder(meta, intent)
	td.CmpNoError(t, err)

	td.Cmp(t, f.signer.hashes[0].String(), f.signer.hashes[1].String())
	td.Cmp(t, a.Nonce, b.Nonce)
	td.CmpFalse(t, a.Message.IsBuy)
}

func TestEncodeOrderGeneratesClientID(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID: ethContract,
		Side:       types.SideBuy,
		Type:       types.OrderTypeLimit,
		Price:      "2000",
		Size:       "0.1",
	})
	td.CmpNoError(t, err)
	td.CmpNotEmpty(t, signed.ClientOrderID)
	td.Cmp(t, signed.Nonce, Nonce(signed.ClientOrderID))
}

func TestEncodeOrderMarket(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	intent := OrderIntent{
		ContractID:    ethContract,
		Side:          types.SideBuy,
		Type:          types.OrderTypeMarket,
		Price:         "29958.73",
		Size:          "0.1",
		ClientOrderID: mo.Some("market-1"),
	}

	signed, err := f.encoder.EncodeOrder(meta, intent)
	td.CmpNoError(t, err)
	td.Cmp(t, signed.WirePrice, "0")
	td.Cmp(t, signed.Intent.TimeInForce, types.TimeInForceImmediateOrCancel)
	td.Cmp(t, signed.Message.AmountCollateral.String(), "2995873000")

	// the signed amounts come from the resolved price, never the wire "0"
	zero := intent
	zero.Price = "0"
	zeroSigned, err := f.encoder.EncodeOrder(meta, zero)
	td.CmpNoError(t, err)
	td.CmpNot(t, f.signer.hashes[0].String(), f.signer.hashes[1].String())
	td.Cmp(t, zeroSigned.Message.AmountCollateral.Sign(), 0)
}

func TestEncodeOrderDefaultFeeRate(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID:    solContract,
		Side:          types.SideBuy,
		Type:          types.OrderTypeLimit,
		Price:         "100",
		Size:          "10000",
		ClientOrderID: mo.Some("sol-1"),
	})
	td.CmpNoError(t, err)

	// 10000 * 100 * 0.00038
	td.Cmp(t, signed.LimitFee.String(), "380")
	td.Cmp(t, signed.Message.AmountFee.String(), "380000000")
	td.Cmp(t, signed.Message.AmountSynthetic.String(), "100000000000")
}

func TestEncodeOrderFailsBeforeSigning(t *testing.T) {
	meta := loadMetadata(t)

	base := OrderIntent{
		ContractID: ethContract,
		Side:       types.SideBuy,
		Type:       types.OrderTypeLimit,
		Price:      "2.5",
		Size:       "1",
	}

	tests := []struct {
		name   string
		meta   *info.Metadata
		mutate func(i *OrderIntent)
		is     error
	}{
		{
			name:   "unknown contract",
			meta:   meta,
			mutate: func(i *OrderIntent) { i.ContractID = "424242" },
			is:     ErrNotFound,
		},
		{
			name:   "no metadata",
			meta:   nil,
			mutate: func(i *OrderIntent) {},
			is:     ErrNotFound,
		},
		{
			name:   "negative size",
			meta:   meta,
			mutate: func(i *OrderIntent) { i.Size = "-1" },
			is:     ErrInvalidAmount,
		},
		{
			name:   "bad price",
			meta:   meta,
			mutate: func(i *OrderIntent) { i.Price = "abc" },
			is:     ErrInvalidAmount,
		},
		{
			name:   "empty size",
			meta:   meta,
			mutate: func(i *OrderIntent) { i.Size = "" },
			is:     ErrInvalidAmount,
		},
		{
			name:   "size overflows 64 bits",
			meta:   meta,
			mutate: func(i *OrderIntent) { i.Size = "1000000000000" },
			is:     ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEncoderFixture(t)
			intent := base
			tt.mutate(&intent)

			_, err := f.encoder.EncodeOrder(tt.meta, intent)
			td.CmpErrorIs(t, err, tt.is)
			td.Cmp(t, f.signer.calls, 0)
			td.Cmp(t, f.hasher.calls, 0)
		})
	}

	t.Run("bad side", func(t *testing.T) {
		f := newEncoderFixture(t)
		intent := base
		intent.Side = "HOLD"

		_, err := f.encoder.EncodeOrder(meta, intent)
		td.CmpError(t, err)
		td.Cmp(t, f.signer.calls, 0)
	})
}

func TestEncodeOrderSignerFailure(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)
	f.signer.err = errors.New("hsm offline")

	_, err := f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID: ethContract,
		Side:       types.SideBuy,
		Type:       types.OrderTypeLimit,
		Price:      "2.5",
		Size:       "1",
	})
	td.CmpErrorIs(t, err, ErrSigning)
	td.CmpContains(t, err.Error(), "hsm offline")
	td.Cmp(t, f.signer.calls, 1)
}

func TestEncodeOrderIncompleteSignature(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)
	f.signer.sig = Signature{R: big.NewInt(1)}

	_, err := f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID: ethContract,
		Side:       types.SideBuy,
		Type:       types.OrderTypeLimit,
		Price:      "2.5",
		Size:       "1",
	})
	td.CmpErrorIs(t, err, ErrSigning)
}

func TestEncodeOrderLogsWithoutSecrets(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signer, err := KeySignerFromHex(testKeyHex)
	td.CmpNoError(t, err)
	f.encoder.signer = signer

	_, err = f.encoder.EncodeOrder(meta, OrderIntent{
		ContractID:    ethContract,
		Side:          types.SideBuy,
		Type:          types.OrderTypeLimit,
		Price:         "2.5",
		Size:          "1",
		ClientOrderID: mo.Some("log-1"),
	})
	td.CmpNoError(t, err)

	entries := f.logs.FilterMessage("encoded order").All()
	td.CmpLen(t, entries, 1)
	td.Cmp(t, entries[0].ContextMap()["clientOrderId"], "log-1")

	for _, e := range f.logs.All() {
		for _, v := range e.ContextMap() {
			s, ok := v.(string)
			if ok {
				td.CmpFalse(t, strings.Contains(s, testKeyHex))
			}
		}
	}
}

func TestEncodeTransfer(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeTransfer(meta, TransferIntent{
		CoinID:            collateralID,
		Amount:            "5.1234567",
		ReceiverAccountID: "542000002",
		ReceiverL2Key:     "0x3b3a1c9b6e5a0f0c4e6a1d2b3c4d5e6f708192a3b4c5d6e7f8091a2b3c4d5e6",
		ClientTransferID:  mo.Some("transfer-1"),
	})
	td.CmpNoError(t, err)

	td.Cmp(t, signed.Intent.Reason, types.TransferReasonUserTransfer)
	td.Cmp(t, signed.Nonce, Nonce("transfer-1"))

	msg := signed.Message
	td.Cmp(t, msg.Amount.String(), "5123456")
	td.Cmp(t, msg.AssetID.String(), meta.Global.StarkExCollateralCoin.StarkExAssetID.Big().String())
	td.Cmp(t, msg.FeeAssetID.Sign(), 0)
	td.Cmp(t, msg.MaxAmountFee.Sign(), 0)
	td.Cmp(t, msg.SenderPositionID, uint64(testAccountID))
	td.Cmp(t, msg.FeePositionID, uint64(testAccountID))
	td.Cmp(t, msg.ReceiverPositionID, uint64(542_000_002))

	td.Cmp(t, signed.Expiry.Wire, testNow)
	td.Cmp(t, signed.Expiry.Signed, testNow.Add(14*24*time.Hour))
	td.Cmp(t, f.signer.calls, 1)
}

func TestEncodeTransferFailsBeforeSigning(t *testing.T) {
	meta := loadMetadata(t)

	base := TransferIntent{
		CoinID:            collateralID,
		Amount:            "5",
		ReceiverAccountID: "542000002",
		ReceiverL2Key:     "0x1234",
	}

	tests := []struct {
		name   string
		mutate func(i *TransferIntent)
		is     error
	}{
		{name: "unknown coin", mutate: func(i *TransferIntent) { i.CoinID = "9999" }, is: ErrNotFound},
		{name: "bad amount", mutate: func(i *TransferIntent) { i.Amount = "five" }, is: ErrInvalidAmount},
		{name: "bad receiver account", mutate: func(i *TransferIntent) { i.ReceiverAccountID = "acct" }, is: ErrInvalidAmount},
		{name: "bad receiver key", mutate: func(i *TransferIntent) { i.ReceiverL2Key = "0xzz" }, is: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEncoderFixture(t)
			intent := base
			tt.mutate(&intent)

			_, err := f.encoder.EncodeTransfer(meta, intent)
			td.CmpErrorIs(t, err, tt.is)
			td.Cmp(t, f.signer.calls, 0)
			td.Cmp(t, f.hasher.calls, 0)
		})
	}

	t.Run("bad reason", func(t *testing.T) {
		f := newEncoderFixture(t)
		intent := base
		intent.Reason = "GIFT"

		_, err := f.encoder.EncodeTransfer(meta, intent)
		td.CmpError(t, err)
		td.Cmp(t, f.signer.calls, 0)
	})
}

func TestEncodeWithdrawal(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeWithdrawal(meta, WithdrawalIntent{
		CoinID:           btcCoinID,
		Amount:           "0.5",
		EthAddress:       "0x00000000219ab540356cBB839Cbe05303d7705Fa",
		ClientWithdrawID: mo.Some("withdraw-1"),
	})
	td.CmpNoError(t, err)

	msg := signed.Message
	td.Cmp(t, msg.Amount.String(), "5000000000")
	td.Cmp(t, msg.EthAddress.Text(16), "219ab540356cbb839cbe05303d7705fa")
	td.Cmp(t, msg.AssetID.Text(16), "4254432d3130000000000000000000")
	td.Cmp(t, msg.PositionID, uint64(testAccountID))
	td.Cmp(t, signed.Expiry.Signed, testNow.Add(14*24*time.Hour))
	td.Cmp(t, f.signer.calls, 1)
}

func TestEncodeWithdrawalCollateral(t *testing.T) {
	meta := loadMetadata(t)
	f := newEncoderFixture(t)

	signed, err := f.encoder.EncodeWithdrawal(meta, WithdrawalIntent{
		CoinID:     collateralID,
		Amount:     "10",
		EthAddress: "0x00000000219ab540356cBB839Cbe05303d7705Fa",
	})
	td.CmpNoError(t, err)
	td.Cmp(t, signed.Message.Amount.String(), "10000000")
}

func TestEncodeWithdrawalFailsBeforeSigning(t *testing.T) {
	meta := loadMetadata(t)

	tests := []struct {
		name   string
		intent WithdrawalIntent
		is     error
	}{
		{
			name:   "unknown coin",
			intent: WithdrawalIntent{CoinID: "31337", Amount: "1", EthAddress: "0x00000000219ab540356cBB839Cbe05303d7705Fa"},
			is:     ErrNotFound,
		},
		{
			name:   "bad address",
			intent: WithdrawalIntent{CoinID: collateralID, Amount: "1", EthAddress: "0x1234"},
			is:     ErrInvalidAmount,
		},
		{
			name:   "zero address",
			intent: WithdrawalIntent{CoinID: collateralID, Amount: "1", EthAddress: "0x0000000000000000000000000000000000000000"},
			is:     ErrInvalidAmount,
		},
		{
			name:   "negative amount",
			intent: WithdrawalIntent{CoinID: collateralID, Amount: "-3", EthAddress: "0x00000000219ab540356cBB839Cbe05303d7705Fa"},
			is:     ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEncoderFixture(t)

			_, err := f.encoder.EncodeWithdrawal(meta, tt.intent)
			td.CmpErrorIs(t, err, tt.is)
			td.Cmp(t, f.signer.calls, 0)
			td.Cmp(t, f.hasher.calls, 0)
		})
	}
}
