package monitor

import (
	"sort"

	"github.com/shopspring/decimal"
)

// sizeEpsilon absorbs floating rounding in upstream payloads: size deltas
// at or below it are treated as unchanged.
var sizeEpsilon = decimal.New(1, -9)

// Diff compares two snapshots and returns the discrete changes between
// them. It is a pure function: deterministic, side-effect free, and total.
// Position events come first in ascending asset order, then new fills
// oldest first so notifications read chronologically.
//
// Fill detection is set membership on identifiers, never offset-based:
// previous.Fills is a bounded recent window, not a complete history. If
// more fills happened between polls than the window holds, the ones that
// scrolled out are missed; Diff reports what is visible and claims nothing
// more.
func Diff(previous, current Snapshot) []ChangeEvent {
	events := diffPositions(previous, current)
	return append(events, diffFills(previous, current)...)
}

func diffPositions(previous, current Snapshot) []ChangeEvent {
	assets := make([]string, 0, len(previous.Positions)+len(current.Positions))
	seen := make(map[string]struct{}, len(previous.Positions)+len(current.Positions))
	for asset := range previous.Positions {
		assets = append(assets, asset)
		seen[asset] = struct{}{}
	}
	for asset := range current.Positions {
		if _, ok := seen[asset]; !ok {
			assets = append(assets, asset)
		}
	}
	// API order is not guaranteed stable, so impose one.
	sort.Strings(assets)

	var events []ChangeEvent
	for _, asset := range assets {
		old, wasOpen := previous.Positions[asset]
		now, isOpen := current.Positions[asset]
		switch {
		case !wasOpen && isOpen:
			events = append(events, PositionOpened{Position: now})
		case wasOpen && !isOpen:
			events = append(events, PositionClosed{Position: old})
		case positionChanged(old, now):
			events = append(events, PositionModified{Old: old, New: now})
		}
	}
	return events
}

func positionChanged(old, now Position) bool {
	if old.Side != now.Side {
		return true
	}
	return old.Size.Sub(now.Size).Abs().GreaterThan(sizeEpsilon)
}

func diffFills(previous, current Snapshot) []ChangeEvent {
	if len(current.Fills) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(previous.Fills))
	for _, f := range previous.Fills {
		known[f.ID()] = struct{}{}
	}
	fresh := make([]Fill, 0, len(current.Fills))
	for _, f := range current.Fills {
		if _, ok := known[f.ID()]; !ok {
			fresh = append(fresh, f)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	// Snapshots list fills most recent first; emit oldest first.
	events := make([]ChangeEvent, 0, len(fresh))
	for i := len(fresh) - 1; i >= 0; i-- {
		events = append(events, NewTrade{Fill: fresh[i]})
	}
	return events
}

// SortedPositions returns a snapshot's positions in ascending asset order,
// the order used for startup summaries.
func SortedPositions(s Snapshot) []Position {
	out := make([]Position, 0, len(s.Positions))
	for _, pos := range s.Positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Asset < out[j].Asset })
	return out
}
