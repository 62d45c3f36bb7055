package ws

import (
	"encoding/json"
	"fmt"
)

// ===== Subscription Types =====

// SubscriptionType names one public quote channel
type SubscriptionType interface {
	channel() string
}

// PriceType selects which price a kline is built from
type PriceType string

const (
	PriceTypeLast   PriceType = "LAST_PRICE"
	PriceTypeMark   PriceType = "MARK_PRICE"
	PriceTypeOracle PriceType = "ORACLE_PRICE"
	PriceTypeIndex  PriceType = "INDEX_PRICE"
)

// KlineInterval is the candle width
type KlineInterval string

const (
	KlineMinute1  KlineInterval = "MINUTE_1"
	KlineMinute5  KlineInterval = "MINUTE_5"
	KlineMinute15 KlineInterval = "MINUTE_15"
	KlineMinute30 KlineInterval = "MINUTE_30"
	KlineHour1    KlineInterval = "HOUR_1"
	KlineHour2    KlineInterval = "HOUR_2"
	KlineHour4    KlineInterval = "HOUR_4"
	KlineHour6    KlineInterval = "HOUR_6"
	KlineHour8    KlineInterval = "HOUR_8"
	KlineHour12   KlineInterval = "HOUR_12"
	KlineDay1     KlineInterval = "DAY_1"
	KlineWeek1    KlineInterval = "WEEK_1"
	KlineMonth1   KlineInterval = "MONTH_1"
)

// TickerSubscription subscribes to 24 hour ticker updates
type TickerSubscription struct {
	ContractID string
}

func (s TickerSubscription) channel() string {
	return fmt.Sprintf("ticker.%s", s.ContractID)
}

// KlineSubscription subscribes to candles
type KlineSubscription struct {
	ContractID string
	PriceType  PriceType
	Interval   KlineInterval
}

func (s KlineSubscription) channel() string {
	return fmt.Sprintf("kline.%s.%s.%s", s.PriceType, s.ContractID, s.Interval)
}

// DepthSubscription subscribes to the order book. Depth is 15 or 200
type DepthSubscription struct {
	ContractID string
	Depth      int
}

func (s DepthSubscription) channel() string {
	return fmt.Sprintf("depth.%s.%d", s.ContractID, s.Depth)
}

// TradesSubscription subscribes to public trades
type TradesSubscription struct {
	ContractID string
}

func (s TradesSubscription) channel() string {
	return fmt.Sprintf("trades.%s", s.ContractID)
}

// ===== Frames =====

// frame is the outer envelope of every message on the socket
type frame struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel,omitempty"`
	Time    string          `json:"time,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	frameSubscribed  = "subscribed"
	frameUnsubbed    = "unsubscribed"
	framePing        = "ping"
	framePong        = "pong"
	frameQuoteEvent  = "quote-event"
	frameError       = "error"
)

// ===== Message Types =====

// Event is the content of a quote-event frame. DataType is "Snapshot" for
// the first message after subscribing and "Changed" afterwards.
type Event[T any] struct {
	DataType string `json:"dataType"`
	Channel  string `json:"channel"`
	Data     []T    `json:"data"`
}

// Ticker is a streamed 24 hour quote
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
}

// Kline is one candle
type Kline struct {
	KlineID     string `json:"klineId"`
	ContractID  string `json:"contractId"`
	KlineType   string `json:"klineType"`
	KlineTime   string `json:"klineTime"`
	PriceType   string `json:"priceType"`
	Trades      string `json:"trades"`
	Size        string `json:"size"`
	Value       string `json:"value"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Open        string `json:"open"`
	Close       string `json:"close"`
	MakerBuySz  string `json:"makerBuySize"`
	MakerBuyVal string `json:"makerBuyValue"`
}

// Level is one price level of the book
type Level struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Depth is a book snapshot or delta
type Depth struct {
	StartVersion string  `json:"startVersion"`
	EndVersion   string  `json:"endVersion"`
	Level        int     `json:"level"`
	ContractID   string  `json:"contractId"`
	DepthType    string  `json:"depthType"`
	Bids         []Level `json:"bids"`
	Asks         []Level `json:"asks"`
}

// Trade is one public fill
type Trade struct {
	TicketID     string `json:"ticketId"`
	Time         string `json:"time"`
	Price        string `json:"price"`
	Size         string `json:"size"`
	Value        string `json:"value"`
	TakerOrderID string `json:"takerOrderId"`
	MakerOrderID string `json:"makerOrderId"`
	TakerAccount string `json:"takerAccountId"`
	MakerAccount string `json:"makerAccountId"`
	ContractID   string `json:"contractId"`
	IsBestMatch  bool   `json:"isBestMatch"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

type TickerMessage = Event[Ticker]
type KlineMessage = Event[Kline]
type DepthMessage = Event[Depth]
type TradesMessage = Event[Trade]
