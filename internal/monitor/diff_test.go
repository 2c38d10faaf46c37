package monitor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(asset string, side Side, size string) Position {
	return Position{
		Asset:      asset,
		Side:       side,
		Size:       decimal.RequireFromString(size),
		EntryPrice: decimal.RequireFromString("50000"),
		Leverage:   10,
	}
}

func snap(positions ...Position) Snapshot {
	s := Snapshot{Positions: make(map[string]Position, len(positions))}
	for _, p := range positions {
		s.Positions[p.Asset] = p
	}
	return s
}

func fill(tid, asset string, side FillSide, price, size string, ts int64) Fill {
	return Fill{
		Asset: asset,
		Side:  side,
		Price: decimal.RequireFromString(price),
		Size:  decimal.RequireFromString(size),
		Time:  ts,
		TID:   tid,
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	s := snap(pos("BTC", SideLong, "0.5"), pos("ETH", SideShort, "2"))
	s.Fills = []Fill{fill("t2", "BTC", FillBuy, "50000", "0.1", 200), fill("t1", "BTC", FillBuy, "49000", "0.4", 100)}

	assert.Empty(t, Diff(s, s))
}

func TestDiffPositionTransitions(t *testing.T) {
	t.Run("opened", func(t *testing.T) {
		events := Diff(snap(), snap(pos("BTC", SideLong, "0.5")))
		require.Len(t, events, 1)
		opened, ok := events[0].(PositionOpened)
		require.True(t, ok)
		assert.Equal(t, "BTC", opened.Position.Asset)
		assert.True(t, opened.Position.Size.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("closed keeps last known state", func(t *testing.T) {
		before := pos("BTC", SideLong, "0.5")
		events := Diff(snap(before), snap())
		require.Len(t, events, 1)
		closed, ok := events[0].(PositionClosed)
		require.True(t, ok)
		assert.Equal(t, before, closed.Position)
	})

	t.Run("size change is a modification", func(t *testing.T) {
		events := Diff(snap(pos("BTC", SideLong, "0.5")), snap(pos("BTC", SideLong, "0.8")))
		require.Len(t, events, 1)
		mod, ok := events[0].(PositionModified)
		require.True(t, ok)
		assert.True(t, mod.Old.Size.Equal(decimal.RequireFromString("0.5")))
		assert.True(t, mod.New.Size.Equal(decimal.RequireFromString("0.8")))
	})

	t.Run("side flip is a modification", func(t *testing.T) {
		events := Diff(snap(pos("BTC", SideLong, "0.5")), snap(pos("BTC", SideShort, "0.5")))
		require.Len(t, events, 1)
		_, ok := events[0].(PositionModified)
		assert.True(t, ok)
	})

	t.Run("unchanged asset stays silent", func(t *testing.T) {
		events := Diff(
			snap(pos("BTC", SideLong, "0.5"), pos("ETH", SideShort, "2")),
			snap(pos("BTC", SideLong, "0.5"), pos("ETH", SideShort, "3")),
		)
		require.Len(t, events, 1)
		mod, ok := events[0].(PositionModified)
		require.True(t, ok)
		assert.Equal(t, "ETH", mod.New.Asset)
	})
}

func TestDiffSizeTolerance(t *testing.T) {
	t.Run("delta below epsilon ignored", func(t *testing.T) {
		events := Diff(
			snap(pos("BTC", SideLong, "0.5")),
			snap(pos("BTC", SideLong, "0.5000000001")),
		)
		assert.Empty(t, events)
	})

	t.Run("delta above epsilon reported", func(t *testing.T) {
		events := Diff(
			snap(pos("BTC", SideLong, "0.5")),
			snap(pos("BTC", SideLong, "0.500001")),
		)
		assert.Len(t, events, 1)
	})
}

func TestDiffEventOrdering(t *testing.T) {
	prev := snap(pos("ETH", SideLong, "1"), pos("SOL", SideShort, "10"))
	prev.Fills = []Fill{fill("t1", "ETH", FillBuy, "3000", "1", 100)}

	cur := snap(pos("BTC", SideLong, "0.5"), pos("SOL", SideShort, "12"))
	cur.Fills = []Fill{
		fill("t3", "SOL", FillSell, "150", "2", 300),
		fill("t2", "BTC", FillBuy, "50000", "0.5", 200),
		fill("t1", "ETH", FillBuy, "3000", "1", 100),
	}

	events := Diff(prev, cur)
	require.Len(t, events, 5)

	// Position events first, assets ascending.
	assert.Equal(t, "position_opened", Kind(events[0]))
	assert.Equal(t, "BTC", Asset(events[0]))
	assert.Equal(t, "position_closed", Kind(events[1]))
	assert.Equal(t, "ETH", Asset(events[1]))
	assert.Equal(t, "position_modified", Kind(events[2]))
	assert.Equal(t, "SOL", Asset(events[2]))

	// Then fresh fills oldest first.
	trade1, ok := events[3].(NewTrade)
	require.True(t, ok)
	assert.Equal(t, "t2", trade1.Fill.TID)
	trade2, ok := events[4].(NewTrade)
	require.True(t, ok)
	assert.Equal(t, "t3", trade2.Fill.TID)
}

func TestDiffFillSetMembership(t *testing.T) {
	t.Run("overlap suppressed, fresh emitted", func(t *testing.T) {
		prev := Snapshot{Fills: []Fill{
			fill("f2", "BTC", FillBuy, "50000", "0.1", 200),
			fill("f1", "BTC", FillBuy, "49000", "0.1", 100),
		}}
		cur := Snapshot{Fills: []Fill{
			fill("f3", "BTC", FillSell, "51000", "0.1", 300),
			fill("f2", "BTC", FillBuy, "50000", "0.1", 200),
			fill("f1", "BTC", FillBuy, "49000", "0.1", 100),
		}}
		events := Diff(prev, cur)
		require.Len(t, events, 1)
		trade, ok := events[0].(NewTrade)
		require.True(t, ok)
		assert.Equal(t, "f3", trade.Fill.TID)
	})

	t.Run("disjoint windows emit everything current", func(t *testing.T) {
		prev := Snapshot{Fills: []Fill{fill("f1", "BTC", FillBuy, "49000", "0.1", 100)}}
		cur := Snapshot{Fills: []Fill{
			fill("f3", "BTC", FillSell, "51000", "0.1", 300),
			fill("f2", "BTC", FillBuy, "50000", "0.1", 200),
		}}
		events := Diff(prev, cur)
		require.Len(t, events, 2)
		assert.Equal(t, "f2", events[0].(NewTrade).Fill.TID)
		assert.Equal(t, "f3", events[1].(NewTrade).Fill.TID)
	})

	t.Run("empty current window emits nothing", func(t *testing.T) {
		prev := Snapshot{Fills: []Fill{fill("f1", "BTC", FillBuy, "49000", "0.1", 100)}}
		assert.Empty(t, Diff(prev, Snapshot{}))
	})
}

func TestFillIDFallsBackToDerivedKey(t *testing.T) {
	withTID := fill("f1", "BTC", FillBuy, "50000", "0.1", 100)
	assert.Equal(t, "f1", withTID.ID())

	noTID := fill("", "BTC", FillBuy, "50000", "0.1", 100)
	same := fill("", "BTC", FillBuy, "50000", "0.1", 100)
	other := fill("", "BTC", FillBuy, "50000", "0.1", 101)
	assert.Equal(t, noTID.ID(), same.ID())
	assert.NotEqual(t, noTID.ID(), other.ID())
}

func TestSortedPositions(t *testing.T) {
	s := snap(pos("SOL", SideLong, "10"), pos("BTC", SideLong, "0.5"), pos("ETH", SideShort, "2"))
	out := SortedPositions(s)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, []string{out[0].Asset, out[1].Asset, out[2].Asset})
}
