package monitor

// Event is the closed set of notifications the monitor can emit. The
// unexported marker keeps the set sealed so consumers handle every kind
// with an exhaustive type switch.
type Event interface {
	event()
}

// ChangeEvent is the subset of events produced by Diff: discrete state
// transitions detected between two snapshots.
type ChangeEvent interface {
	Event
	changeEvent()
}

// PositionOpened reports an asset key present only in the current snapshot.
type PositionOpened struct {
	Position Position
}

// PositionClosed reports an asset key present only in the previous
// snapshot. Position carries the last-known state before the close.
type PositionClosed struct {
	Position Position
}

// PositionModified reports a position whose size or side changed beyond
// the diff tolerance.
type PositionModified struct {
	Old Position
	New Position
}

// NewTrade reports a fill whose identifier was absent from the previous
// snapshot's window.
type NewTrade struct {
	Fill Fill
}

func (PositionOpened) event()   {}
func (PositionClosed) event()   {}
func (PositionModified) event() {}
func (NewTrade) event()         {}

func (PositionOpened) changeEvent()   {}
func (PositionClosed) changeEvent()   {}
func (PositionModified) changeEvent() {}
func (NewTrade) changeEvent()         {}

// Startup is emitted exactly once, when the first successful fetch seeds
// the snapshot slot. It enumerates current holdings instead of synthesizing
// opened/trade events for pre-existing state.
type Startup struct {
	Address   string
	Positions []Position // ascending asset order
}

// Shutdown is emitted best-effort when the poll loop is cancelled.
type Shutdown struct {
	Address string
}

// MonitorError reports a failed cycle. The previous snapshot survives the
// failure untouched; the next tick retries.
type MonitorError struct {
	Stage string
	Err   error
}

func (Startup) event()      {}
func (Shutdown) event()     {}
func (MonitorError) event() {}

// Kind returns a stable short name for an event, used for logging and the
// alert journal.
func Kind(ev Event) string {
	switch ev.(type) {
	case PositionOpened:
		return "position_opened"
	case PositionClosed:
		return "position_closed"
	case PositionModified:
		return "position_modified"
	case NewTrade:
		return "new_trade"
	case Startup:
		return "startup"
	case Shutdown:
		return "shutdown"
	case MonitorError:
		return "error"
	default:
		return "unknown"
	}
}

// Asset returns the asset an event refers to, or "" for lifecycle events.
func Asset(ev Event) string {
	switch e := ev.(type) {
	case PositionOpened:
		return e.Position.Asset
	case PositionClosed:
		return e.Position.Asset
	case PositionModified:
		return e.New.Asset
	case NewTrade:
		return e.Fill.Asset
	default:
		return ""
	}
}
