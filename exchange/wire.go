package exchange

import (
	"strconv"

	"github.com/banky/go-edgex/internal/utils"
	"github.com/banky/go-edgex/l2"
)

// OrderWire is the createOrder body
type OrderWire struct {
	AccountID     string `json:"accountId"`
	ContractID    string `json:"contractId"`
	Price         string `json:"price"`
	Size          string `json:"size"`
	Type          string `json:"type"`
	Side          string `json:"side"`
	TimeInForce   string `json:"timeInForce"`
	ClientOrderID string `json:"clientOrderId"`
	ExpireTime    string `json:"expireTime"`
	L2Nonce       string `json:"l2Nonce"`
	L2Signature   string `json:"l2Signature"`
	L2ExpireTime  string `json:"l2ExpireTime"`
	L2Value       string `json:"l2Value"`
	L2Size        string `json:"l2Size"`
	L2LimitFee    string `json:"l2LimitFee"`
	ReduceOnly    bool   `json:"reduceOnly"`
}

// TransferWire is the createTransferOut body
type TransferWire struct {
	AccountID         string `json:"accountId"`
	CoinID            string `json:"coinId"`
	Amount            string `json:"amount"`
	ReceiverAccountID string `json:"receiverAccountId"`
	ReceiverL2Key     string `json:"receiverL2Key"`
	ClientTransferID  string `json:"clientTransferId"`
	TransferReason    string `json:"transferReason"`
	L2Nonce           string `json:"l2Nonce"`
	L2ExpireTime      string `json:"l2ExpireTime"`
	L2Signature       string `json:"l2Signature"`
	ExtraType         string `json:"extraType,omitempty"`
	ExtraDataJSON     string `json:"extraDataJson,omitempty"`
}

// WithdrawalWire is the createNormalWithdraw body. ExpireTime carries the
// signed expiry.
type WithdrawalWire struct {
	AccountID        string `json:"accountId"`
	CoinID           string `json:"coinId"`
	Amount           string `json:"amount"`
	EthAddress       string `json:"ethAddress"`
	ClientWithdrawID string `json:"clientWithdrawId"`
	ExpireTime       string `json:"expireTime"`
	L2Signature      string `json:"l2Signature"`
	Tag              string `json:"tag,omitempty"`
}

func newOrderWire(accountID uint64, s l2.SignedOrder) OrderWire {
	return OrderWire{
		AccountID:     formatUint(accountID),
		ContractID:    s.Intent.ContractID,
		Price:         s.WirePrice,
		Size:          s.Intent.Size,
		Type:          string(s.Intent.Type),
		Side:          string(s.Intent.Side),
		TimeInForce:   string(s.Intent.TimeInForce),
		ClientOrderID: s.ClientOrderID,
		ExpireTime:    formatInt(s.Expiry.WireMillis()),
		L2Nonce:       formatUint(s.Nonce),
		L2Signature:   s.Signature.RS(),
		L2ExpireTime:  formatInt(s.Expiry.SignedMillis()),
		L2Value:       utils.FormatDecimal(s.Value),
		L2Size:        s.Intent.Size,
		L2LimitFee:    utils.FormatDecimal(s.LimitFee),
		ReduceOnly:    s.Intent.ReduceOnly,
	}
}

func newTransferWire(accountID uint64, s l2.SignedTransfer) TransferWire {
	return TransferWire{
		AccountID:         formatUint(accountID),
		CoinID:            s.Intent.CoinID,
		Amount:            s.Intent.Amount,
		ReceiverAccountID: s.Intent.ReceiverAccountID,
		ReceiverL2Key:     s.Intent.ReceiverL2Key,
		ClientTransferID:  s.ClientTransferID,
		TransferReason:    string(s.Intent.Reason),
		L2Nonce:           formatUint(s.Nonce),
		L2ExpireTime:      formatInt(s.Expiry.SignedMillis()),
		L2Signature:       s.Signature.RS(),
		ExtraType:         s.Intent.ExtraType.OrEmpty(),
		ExtraDataJSON:     s.Intent.ExtraDataJSON.OrEmpty(),
	}
}

func newWithdrawalWire(accountID uint64, s l2.SignedWithdrawal) WithdrawalWire {
	return WithdrawalWire{
		AccountID:        formatUint(accountID),
		CoinID:           s.Intent.CoinID,
		Amount:           s.Intent.Amount,
		EthAddress:       s.Intent.EthAddress,
		ClientWithdrawID: s.ClientWithdrawID,
		ExpireTime:       formatInt(s.Expiry.SignedMillis()),
		L2Signature:      s.Signature.Wire(),
		Tag:              s.Intent.Tag.OrEmpty(),
	}
}

func formatUint(n uint64) string { return strconv.FormatUint(n, 10) }

func formatInt(n int64) string { return strconv.FormatInt(n, 10) }
