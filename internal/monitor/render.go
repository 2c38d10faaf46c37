package monitor

import (
	"fmt"
	"time"

	"hypermon/internal/gateway/notifier"
)

// Render maps an event to the outgoing message. Every variant of the
// sealed Event set is handled here; adding a kind without a case is a
// rendering bug caught by TestRenderCoversAllKinds.
func Render(ev Event, address string, at time.Time) notifier.StructuredMessage {
	switch e := ev.(type) {
	case PositionOpened:
		return positionMessage("🟢", "Position OPENED: "+e.Position.Asset, e.Position, address, at)
	case PositionModified:
		msg := positionMessage("🔁", "Position MODIFIED: "+e.New.Asset, e.New, address, at)
		msg.Sections = append([]notifier.MessageSection{{
			Title: "Change",
			Lines: []string{fmt.Sprintf("Size %s -> %s", e.Old.Size, e.New.Size)},
		}}, msg.Sections...)
		return msg
	case PositionClosed:
		return notifier.StructuredMessage{
			Icon:  "🔵",
			Title: "Position CLOSED: " + e.Position.Asset,
			Sections: []notifier.MessageSection{{
				Title: "Last known state",
				Lines: []string{
					fmt.Sprintf("Side %s", e.Position.Side),
					fmt.Sprintf("Size %s", e.Position.Size),
					fmt.Sprintf("Entry %s", e.Position.EntryPrice),
				},
			}},
			Footer:    shortAddress(address),
			Timestamp: at,
		}
	case NewTrade:
		icon := "🟢"
		if e.Fill.Side == FillSell {
			icon = "🔴"
		}
		return notifier.StructuredMessage{
			Icon:  icon,
			Title: "NEW TRADE: " + e.Fill.Asset,
			Sections: []notifier.MessageSection{{
				Title: "Fill",
				Lines: []string{
					fmt.Sprintf("Side %s", e.Fill.Side),
					fmt.Sprintf("Price $%s", e.Fill.Price),
					fmt.Sprintf("Size %s", e.Fill.Size),
					fmt.Sprintf("Fee $%s", e.Fill.Fee),
					fmt.Sprintf("Trade ID %s", e.Fill.ID()),
					fmt.Sprintf("Executed %s", time.UnixMilli(e.Fill.Time).UTC().Format("2006-01-02 15:04:05 MST")),
				},
			}},
			Footer:    shortAddress(address),
			Timestamp: at,
		}
	case Startup:
		lines := make([]string, 0, len(e.Positions))
		for _, pos := range e.Positions {
			lines = append(lines, fmt.Sprintf("%s %s size=%s entry=%s x%d",
				pos.Asset, pos.Side, pos.Size, pos.EntryPrice, pos.Leverage))
		}
		if len(lines) == 0 {
			lines = []string{"no open positions"}
		}
		return notifier.StructuredMessage{
			Icon:  "✅",
			Title: "Monitoring started",
			Sections: []notifier.MessageSection{
				{Title: "Current holdings", Lines: lines},
				{Title: "You will be notified on", Lines: []string{
					"new positions opened",
					"positions closed",
					"position size changes",
					"new trades executed",
				}},
			},
			Footer:    e.Address,
			Timestamp: at,
		}
	case Shutdown:
		return notifier.StructuredMessage{
			Icon:      "⚠️",
			Title:     "Monitoring stopped",
			Footer:    shortAddress(e.Address),
			Timestamp: at,
		}
	case MonitorError:
		return notifier.StructuredMessage{
			Icon:  "❌",
			Title: "Monitor error",
			Sections: []notifier.MessageSection{{
				Title: "Detail",
				Lines: []string{
					"stage " + e.Stage,
					e.Err.Error(),
					"previous state kept, retrying next tick",
				},
			}},
			Footer:    shortAddress(address),
			Timestamp: at,
		}
	default:
		return notifier.StructuredMessage{
			Icon:      "🔔",
			Title:     "Monitor event: " + Kind(ev),
			Timestamp: at,
		}
	}
}

func positionMessage(icon, title string, pos Position, address string, at time.Time) notifier.StructuredMessage {
	return notifier.StructuredMessage{
		Icon:  icon,
		Title: title,
		Sections: []notifier.MessageSection{{
			Title: "Position",
			Lines: []string{
				fmt.Sprintf("Side %s", pos.Side),
				fmt.Sprintf("Size %s", pos.Size),
				fmt.Sprintf("Entry $%s", pos.EntryPrice),
				fmt.Sprintf("Leverage x%d", pos.Leverage),
				fmt.Sprintf("Value $%s", pos.PositionValue),
				fmt.Sprintf("uPnL $%s", pos.UnrealizedPnL),
			},
		}},
		Footer:    shortAddress(address),
		Timestamp: at,
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 14 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-6:]
}
