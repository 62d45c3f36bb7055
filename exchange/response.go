package exchange

import (
	"context"
	"fmt"

	"github.com/banky/go-edgex/rest"
	"github.com/banky/go-edgex/types"
)

// RejectedError is returned when the gateway answers with a code other than
// SUCCESS. The signed request was transmitted exactly once.
type RejectedError = types.RejectedError

// ErrRequestRejected matches every *RejectedError
var ErrRequestRejected = types.ErrRequestRejected

// CreateOrderResult is the data of a successful createOrder call
type CreateOrderResult struct {
	OrderID string `json:"orderId"`
	// ClientOrderID is the id the order was signed with
	ClientOrderID string `json:"-"`
}

// TransferOutResult is the data of a successful createTransferOut call
type TransferOutResult struct {
	TransferOutID    string `json:"transferOutId"`
	ClientTransferID string `json:"-"`
}

// WithdrawalResult is the data of a successful createNormalWithdraw call
type WithdrawalResult struct {
	WithdrawID       string `json:"withdrawId"`
	ClientWithdrawID string `json:"-"`
}

// CancelOrderResult maps each order id to the gateway's cancel status
type CancelOrderResult struct {
	CancelResultMap map[string]string `json:"cancelResultMap"`
}

// Order is an order as listed by the gateway
type Order struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	AccountID     string `json:"accountId"`
	CoinID        string `json:"coinId"`
	ContractID    string `json:"contractId"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Size          string `json:"size"`
	ClientOrderID string `json:"clientOrderId"`
	Type          string `json:"type"`
	TimeInForce   string `json:"timeInForce"`
	ReduceOnly    bool   `json:"reduceOnly"`
	Status        string `json:"status"`
	CumFillSize   string `json:"cumFillSize"`
	CumFillValue  string `json:"cumFillValue"`
	CumFillFee    string `json:"cumFillFee"`
	ExpireTime    string `json:"expireTime"`
	CreatedTime   string `json:"createdTime"`
	UpdatedTime   string `json:"updatedTime"`
}

// ActiveOrderPage is one page of open orders
type ActiveOrderPage struct {
	DataList           []Order `json:"dataList"`
	NextPageOffsetData string  `json:"nextPageOffsetData"`
}

// MaxOrderSize is the largest size the account can open at a price
type MaxOrderSize struct {
	MaxBuySize  string `json:"maxBuySize"`
	MaxSellSize string `json:"maxSellSize"`
	Ask1Price   string `json:"ask1Price"`
	Bid1Price   string `json:"bid1Price"`
}

// OrderFill is one fill of an order
type OrderFill struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	CoinID        string `json:"coinId"`
	ContractID    string `json:"contractId"`
	OrderID       string `json:"orderId"`
	OrderSide     string `json:"orderSide"`
	FillSize      string `json:"fillSize"`
	FillValue     string `json:"fillValue"`
	FillFee       string `json:"fillFee"`
	FillPrice     string `json:"fillPrice"`
	Liquidate     bool   `json:"isLiquidate"`
	Deleverage    bool   `json:"isDeleverage"`
	PositionTPSL  bool   `json:"isPositionTpsl"`
	Direction     string `json:"direction"`
	MatchFillID   string `json:"matchFillId"`
	MatchTime     string `json:"matchTime"`
	CreatedTime   string `json:"createdTime"`
	RealizePnl    string `json:"realizePnl"`
	ClientOrderID string `json:"clientOrderId"`
	MatchSequence string `json:"matchSequenceId"`
}

// OrderFillPage is one page of fills
type OrderFillPage struct {
	DataList           []OrderFill `json:"dataList"`
	NextPageOffsetData string      `json:"nextPageOffsetData"`
}

// Account is the account record inside AccountAsset
type Account struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	EthAddress      string `json:"ethAddress"`
	L2Key           string `json:"l2Key"`
	ClientAccountID string `json:"clientAccountId"`
	Status          string `json:"status"`
}

// Collateral is the account's balance of one coin
type Collateral struct {
	CoinID string `json:"coinId"`
	Amount string `json:"amount"`
}

// Position is the open size and cost of one contract
type Position struct {
	ContractID string `json:"contractId"`
	OpenSize   string `json:"openSize"`
	OpenValue  string `json:"openValue"`
	OpenFee    string `json:"openFee"`
	FundingFee string `json:"fundingFee"`
}

// PositionAsset is the gateway's valuation of one position
type PositionAsset struct {
	ContractID               string `json:"contractId"`
	PositionValue            string `json:"positionValue"`
	MaxLeverage              string `json:"maxLeverage"`
	InitialMarginRequirement string `json:"initialMarginRequirement"`
	StarkExRiskValue         string `json:"starkExRiskValue"`
	AvgEntryPrice            string `json:"avgEntryPrice"`
	LiquidatePrice           string `json:"liquidatePrice"`
	UnrealizePnl             string `json:"unrealizePnl"`
}

// AccountAsset is the account with its collateral and positions
type AccountAsset struct {
	Account           Account         `json:"account"`
	CollateralList    []Collateral    `json:"collateralList"`
	PositionList      []Position      `json:"positionList"`
	PositionAssetList []PositionAsset `json:"positionAssetList"`
}

// AccountPositions holds the position half of AccountAsset
type AccountPositions struct {
	PositionList      []Position
	PositionAssetList []PositionAsset
}

// post sends body to path and unwraps the envelope. Transport errors are
// wrapped; a non SUCCESS code comes back as *RejectedError.
func post[T any](ctx context.Context, client rest.ClientInterface, path string, body any) (T, error) {
	var zero T

	var result types.Response[T]
	if err := client.Post(ctx, path, body, &result); err != nil {
		return zero, fmt.Errorf("failed to post to %s: %w", path, err)
	}
	if err := result.Check(path); err != nil {
		return zero, err
	}

	return result.Data, nil
}

func get[T any](ctx context.Context, client rest.ClientInterface, path string, query map[string]string) (T, error) {
	var zero T

	var result types.Response[T]
	if err := client.Get(ctx, path, query, &result); err != nil {
		return zero, fmt.Errorf("failed to get %s: %w", path, err)
	}
	if err := result.Check(path); err != nil {
		return zero, err
	}

	return result.Data, nil
}
