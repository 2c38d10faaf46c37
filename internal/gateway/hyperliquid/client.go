package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hypermon/internal/monitor"

	"github.com/tidwall/gjson"
)

const (
	infoPath       = "/info"
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
)

// Client talks to the Hyperliquid info API. Read-only: the monitor never
// signs or places anything.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options selects the network and tunes the transport. BaseURL overrides
// the mainnet/testnet selection, primarily for tests.
type Options struct {
	Testnet bool
	BaseURL string
	Timeout time.Duration
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = MainnetAPIURL
		if opts.Testnet {
			base = TestnetAPIURL
		}
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("hyperliquid: invalid base url %q: %w", base, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

var _ monitor.SnapshotSource = (*Client)(nil)

// FetchPositions returns the address's open perp positions. Entries with a
// zero size are settled remnants and are skipped.
func (c *Client) FetchPositions(ctx context.Context, address string) ([]monitor.Position, error) {
	var state clearinghouseState
	if err := c.post(ctx, infoRequest{Type: "clearinghouseState", User: address}, &state); err != nil {
		return nil, err
	}
	out := make([]monitor.Position, 0, len(state.AssetPositions))
	for _, ap := range state.AssetPositions {
		raw := ap.Position
		if raw.Coin == "" || raw.Szi.IsZero() {
			continue
		}
		side := monitor.SideLong
		if raw.Szi.IsNegative() {
			side = monitor.SideShort
		}
		out = append(out, monitor.Position{
			Asset:         raw.Coin,
			Side:          side,
			Size:          raw.Szi.Abs(),
			EntryPrice:    raw.EntryPx,
			Leverage:      raw.Leverage.Value,
			PositionValue: raw.PositionValue,
			UnrealizedPnL: raw.UnrealizedPnl,
		})
	}
	return out, nil
}

// FetchFills returns the address's recent fills, most recent first,
// truncated to limit. The exchange exposes only a recent window; callers
// must not treat the result as a complete history.
func (c *Client) FetchFills(ctx context.Context, address string, limit int) ([]monitor.Fill, error) {
	var raws []rawFill
	if err := c.post(ctx, infoRequest{Type: "userFills", User: address}, &raws); err != nil {
		return nil, err
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	out := make([]monitor.Fill, 0, len(raws))
	for _, raw := range raws {
		side := monitor.FillSell
		if strings.EqualFold(raw.Side, "B") {
			side = monitor.FillBuy
		}
		out = append(out, monitor.Fill{
			Asset: raw.Coin,
			Side:  side,
			Price: raw.Px,
			Size:  raw.Sz,
			Fee:   raw.Fee,
			Time:  raw.Time,
			TID:   raw.Tid.String(),
		})
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, payload infoRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hyperliquid: marshal %s request: %w", payload.Type, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+infoPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hyperliquid: build %s request: %w", payload.Type, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: payload.Type, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &NetworkError{Op: payload.Type, Err: err}
	}
	if resp.StatusCode >= 300 {
		return &APIError{Op: payload.Type, Status: resp.StatusCode, Body: trimBody(data)}
	}
	// The API can answer 200 with an error envelope instead of the
	// requested payload.
	if msg := gjson.GetBytes(data, "error"); msg.Exists() {
		return &APIError{Op: payload.Type, Status: resp.StatusCode, Body: msg.String()}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Op: payload.Type, Status: resp.StatusCode, Body: "malformed payload: " + err.Error()}
	}
	return nil
}

func trimBody(data []byte) string {
	const maxErrBody = 512
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrBody {
		s = s[:maxErrBody] + "..."
	}
	if s == "" {
		s = "(empty body)"
	}
	return s
}
