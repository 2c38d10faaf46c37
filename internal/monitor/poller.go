package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hypermon/internal/logger"
	"hypermon/internal/pkg/circuit"
)

// State names the phases of the poll loop.
type State int

const (
	// StateColdStart means no previous snapshot exists yet. The first
	// successful fetch seeds the slot and emits a Startup event; it never
	// produces change events for pre-existing state.
	StateColdStart State = iota
	// StateSteady is the normal fetch-diff-notify regime.
	StateSteady
	// StateShutdown is terminal; no further cycles run.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateColdStart:
		return "cold_start"
	case StateSteady:
		return "steady"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

const (
	DefaultInterval  = 300 * time.Second
	DefaultFillLimit = 100

	// After this many consecutive failed cycles, error notifications are
	// suppressed until a success (or the cooldown permits one reminder).
	// Fetching itself still retries every tick.
	errorNotifyThreshold = 3
	errorNotifyCooldown  = 30 * time.Minute

	shutdownGrace = 5 * time.Second
)

// Config carries the poller's construction-time values. The poller does no
// parsing or environment access itself.
type Config struct {
	Address   string
	Interval  time.Duration
	FillLimit int
}

// Status is a read-only view of the poller for the HTTP status API.
type Status struct {
	State         string    `json:"state"`
	Address       string    `json:"address"`
	Cycles        uint64    `json:"cycles"`
	Failures      uint64    `json:"failures"`
	OpenPositions int       `json:"open_positions"`
	LastCycleAt   time.Time `json:"last_cycle_at"`
}

// Poller owns the cycle timing, the previous-snapshot slot, and failure
// isolation between cycles. Cycles are strictly serialized: a new one never
// starts while the previous fetch/diff/notify sequence is in flight.
type Poller struct {
	cfg     Config
	source  SnapshotSource
	sink    Sink
	breaker *circuit.Breaker

	// prev is touched only by the single loop goroutine.
	prev Snapshot

	nowFn func() time.Time

	mu            sync.RWMutex
	state         State
	cycles        uint64
	failures      uint64
	openPositions int
	lastCycleAt   time.Time
}

func NewPoller(cfg Config, source SnapshotSource, sink Sink) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FillLimit <= 0 {
		cfg.FillLimit = DefaultFillLimit
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		breaker: circuit.NewBreaker("monitor.notify-error", errorNotifyThreshold, errorNotifyCooldown),
		state:   StateColdStart,
		nowFn:   time.Now,
	}
}

// Run drives the fetch-diff-notify loop until ctx is cancelled. The first
// cycle runs immediately; the interval spaces the rest. Always returns
// ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	logger.Infof("monitor: watching %s interval=%s fill_limit=%d",
		p.cfg.Address, p.cfg.Interval, p.cfg.FillLimit)
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	return p.run(ctx, ticker.C)
}

// run is Run with an injected tick source so tests drive cycles without
// real timers.
func (p *Poller) run(ctx context.Context, ticks <-chan time.Time) error {
	p.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			return ctx.Err()
		case <-ticks:
			p.RunCycle(ctx)
		}
	}
}

// RunCycle executes one fetch-diff-notify iteration. It never propagates an
// error: a failed fetch leaves the previous snapshot untouched, emits zero
// change events, and reports a best-effort MonitorError; delivery failures
// are logged and dropped.
func (p *Poller) RunCycle(ctx context.Context) {
	if p.State() == StateShutdown {
		return
	}
	current, stage, err := p.capture(ctx)
	if err != nil {
		logger.Warnf("monitor: cycle failed at %s: %v", stage, err)
		notify := p.breaker.Allow()
		p.breaker.RecordFailure()
		p.recordFailure()
		if notify {
			p.dispatch(ctx, MonitorError{Stage: stage, Err: err})
		}
		return
	}
	p.breaker.RecordSuccess()

	switch p.State() {
	case StateColdStart:
		p.prev = current
		p.setState(StateSteady)
		logger.Infof("monitor: initial state: %d positions, %d recent fills",
			len(current.Positions), len(current.Fills))
		p.dispatch(ctx, Startup{Address: p.cfg.Address, Positions: SortedPositions(current)})
	case StateSteady:
		events := Diff(p.prev, current)
		if len(events) > 0 {
			logger.Infof("monitor: %d change(s) detected", len(events))
		}
		for _, ev := range events {
			p.dispatch(ctx, ev)
		}
		p.prev = current
	}
	p.recordCycle(current)
}

func (p *Poller) capture(ctx context.Context) (Snapshot, string, error) {
	positions, err := p.source.FetchPositions(ctx, p.cfg.Address)
	if err != nil {
		return Snapshot{}, "positions", fmt.Errorf("fetch positions: %w", err)
	}
	fills, err := p.source.FetchFills(ctx, p.cfg.Address, p.cfg.FillLimit)
	if err != nil {
		return Snapshot{}, "fills", fmt.Errorf("fetch fills: %w", err)
	}
	byAsset := make(map[string]Position, len(positions))
	for _, pos := range positions {
		byAsset[pos.Asset] = pos
	}
	return Snapshot{Positions: byAsset, Fills: fills, CapturedAt: p.nowFn()}, "", nil
}

func (p *Poller) dispatch(ctx context.Context, ev Event) {
	if p.sink == nil {
		return
	}
	if err := p.sink.Notify(ctx, ev); err != nil {
		logger.Warnf("monitor: notify %s failed: %v", Kind(ev), err)
	}
}

// shutdown emits the final notification on a fresh context: the loop's own
// context is already cancelled by the time we get here.
func (p *Poller) shutdown() {
	p.setState(StateShutdown)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	p.dispatch(ctx, Shutdown{Address: p.cfg.Address})
	logger.Infof("monitor: stopped")
}

func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Poller) recordCycle(s Snapshot) {
	p.mu.Lock()
	p.cycles++
	p.openPositions = len(s.Positions)
	p.lastCycleAt = s.CapturedAt
	p.mu.Unlock()
}

func (p *Poller) recordFailure() {
	p.mu.Lock()
	p.failures++
	p.mu.Unlock()
}

// StatusSnapshot is safe to call from other goroutines (the HTTP server).
func (p *Poller) StatusSnapshot() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{
		State:         p.state.String(),
		Address:       p.cfg.Address,
		Cycles:        p.cycles,
		Failures:      p.failures,
		OpenPositions: p.openPositions,
		LastCycleAt:   p.lastCycleAt,
	}
}
