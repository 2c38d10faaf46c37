package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an open position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// FillSide is the direction of a single executed trade.
type FillSide string

const (
	FillBuy  FillSide = "BUY"
	FillSell FillSide = "SELL"
)

// Position is one open exposure of the monitored address. An address holds
// at most one position per asset, so Asset is the unique key. Positions are
// never mutated in place; a new snapshot wholesale-replaces the old one.
type Position struct {
	Asset         string
	Side          Side
	Size          decimal.Decimal // absolute quantity, always >= 0
	EntryPrice    decimal.Decimal
	Leverage      int
	PositionValue decimal.Decimal
	UnrealizedPnL decimal.Decimal
}

// Fill is a single executed trade. Immutable once observed.
type Fill struct {
	Asset string
	Side  FillSide
	Price decimal.Decimal
	Size  decimal.Decimal
	Fee   decimal.Decimal
	Time  int64 // exchange timestamp, unix milliseconds
	TID   string
}

// ID returns the identity used for duplicate detection: the exchange trade
// id when present, otherwise a key derived from the fill's fields.
func (f Fill) ID() string {
	if f.TID != "" {
		return f.TID
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d", f.Asset, f.Side, f.Price, f.Size, f.Time)
}

// Snapshot is a point-in-time capture of the address's open positions and
// recent fills. Fills are ordered most recent first and cover only the
// exchange's bounded recent window, never the full history.
type Snapshot struct {
	Positions  map[string]Position
	Fills      []Fill
	CapturedAt time.Time
}

// SnapshotSource fetches the current on-chain state of an address. Both
// calls may be slow and may fail; implementations classify failures as
// network or API errors.
type SnapshotSource interface {
	FetchPositions(ctx context.Context, address string) ([]Position, error)
	FetchFills(ctx context.Context, address string, limit int) ([]Fill, error)
}

// Sink receives every event the poller produces. Delivery failures are the
// sink's own concern; the poller logs them and moves on without retrying,
// since the next cycle's diff stays consistent either way.
type Sink interface {
	Notify(ctx context.Context, ev Event) error
}
