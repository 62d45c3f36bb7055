package info

import (
	"encoding/json"

	"github.com/banky/go-edgex/types"
)

// ===== Metadata Types =====

// Coin describes an asset the exchange settles in. StarkExAssetID and
// StarkExResolution are hex strings on the wire.
type Coin struct {
	CoinID            string       `json:"coinId"`
	CoinName          string       `json:"coinName"`
	StepSize          string       `json:"stepSize"`
	ShowStepSize      string       `json:"showStepSize"`
	IconURL           string       `json:"iconUrl"`
	StarkExAssetID    types.HexInt `json:"starkExAssetId"`
	StarkExResolution types.HexInt `json:"starkExResolution"`
	Decimal           json.Number  `json:"decimal,omitempty"`
}

// Contract describes a perpetual market
type Contract struct {
	ContractID              string       `json:"contractId"`
	ContractName            string       `json:"contractName"`
	BaseCoinID              string       `json:"baseCoinId"`
	QuoteCoinID             string       `json:"quoteCoinId"`
	TickSize                string       `json:"tickSize"`
	StepSize                string       `json:"stepSize"`
	MinOrderSize            string       `json:"minOrderSize"`
	MaxOrderSize            string       `json:"maxOrderSize"`
	DefaultMakerFeeRate     string       `json:"defaultMakerFeeRate"`
	DefaultTakerFeeRate     string       `json:"defaultTakerFeeRate"`
	EnableTrade             bool         `json:"enableTrade"`
	EnableDisplay           bool         `json:"enableDisplay"`
	StarkExSyntheticAssetID types.HexInt `json:"starkExSyntheticAssetId"`
	StarkExResolution       types.HexInt `json:"starkExResolution"`
}

// Global holds exchange wide settings
type Global struct {
	AppName               string `json:"appName"`
	AppEnv                string `json:"appEnv"`
	StarkExChainID        string `json:"starkExChainId"`
	StarkExCollateralCoin Coin   `json:"starkExCollateralCoin"`
}

// Metadata is the snapshot every signed operation is resolved against
type Metadata struct {
	Global       Global     `json:"global"`
	CoinList     []Coin     `json:"coinList"`
	ContractList []Contract `json:"contractList"`
}

// Contract returns the contract with the given id
func (m *Metadata) Contract(id string) (Contract, bool) {
	if m == nil {
		return Contract{}, false
	}
	for _, c := range m.ContractList {
		if c.ContractID == id {
			return c, true
		}
	}
	return Contract{}, false
}

// Coin returns the coin with the given id
func (m *Metadata) Coin(id string) (Coin, bool) {
	if m == nil {
		return Coin{}, false
	}
	for _, c := range m.CoinList {
		if c.CoinID == id {
			return c, true
		}
	}
	return Coin{}, false
}

// ===== Market Data Types =====

// Ticker is the 24 hour quote for a contract
type Ticker struct {
	ContractID         string `json:"contractId"`
	ContractName       string `json:"contractName"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	Trades             string `json:"trades"`
	Size               string `json:"size"`
	Value              string `json:"value"`
	High               string `json:"high"`
	Low                string `json:"low"`
	Open               string `json:"open"`
	Close              string `json:"close"`
	LastPrice          string `json:"lastPrice"`
	IndexPrice         string `json:"indexPrice"`
	OraclePrice        string `json:"oraclePrice"`
	OpenInterest       string `json:"openInterest"`
	FundingRate        string `json:"fundingRate"`
	FundingTime        string `json:"fundingTime"`
	NextFundingTime    string `json:"nextFundingTime"`
}

// ServerTime is the gateway clock in epoch milliseconds
type ServerTime struct {
	TimeMillis string `json:"timeMillis"`
}
