package hyperliquid

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
)

// NetworkError classifies transport-level failures: timeouts, refused
// connections, interrupted bodies. Transient; the poller retries on the
// next tick.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("hyperliquid: network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError classifies responses the exchange did answer but that cannot be
// used: non-2xx statuses, error envelopes, malformed payloads.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hyperliquid: api error during %s (status %d): %s", e.Op, e.Status, e.Body)
}

// infoRequest is the body of every POST /info call.
type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

// clearinghouseState mirrors the subset of the perpetuals account payload
// the monitor reads.
type clearinghouseState struct {
	AssetPositions []assetPosition `json:"assetPositions"`
}

type assetPosition struct {
	Position rawPosition `json:"position"`
}

// rawPosition carries quantities as decimal strings; signed szi encodes
// the side (positive long, negative short).
type rawPosition struct {
	Coin          string          `json:"coin"`
	Szi           decimal.Decimal `json:"szi"`
	EntryPx       decimal.Decimal `json:"entryPx"`
	PositionValue decimal.Decimal `json:"positionValue"`
	UnrealizedPnl decimal.Decimal `json:"unrealizedPnl"`
	Leverage      rawLeverage     `json:"leverage"`
}

type rawLeverage struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// rawFill is one entry of the userFills response, most recent first.
// side is "B" for buy and "A" for sell.
type rawFill struct {
	Coin string          `json:"coin"`
	Px   decimal.Decimal `json:"px"`
	Sz   decimal.Decimal `json:"sz"`
	Side string          `json:"side"`
	Time int64           `json:"time"`
	Fee  decimal.Decimal `json:"fee"`
	Tid  json.Number     `json:"tid"`
}
