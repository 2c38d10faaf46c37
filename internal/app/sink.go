package app

import (
	"context"
	"time"

	"hypermon/internal/gateway/notifier"
	"hypermon/internal/logger"
	"hypermon/internal/monitor"
	"hypermon/internal/store/alertlog"

	"github.com/google/uuid"
)

// eventSink renders monitor events, delivers them over the configured
// channel and journals every attempt. Journal failures never block
// delivery and vice versa.
type eventSink struct {
	address string
	text    notifier.TextNotifier
	journal *alertlog.Store
	nowFn   func() time.Time
}

func newEventSink(address string, text notifier.TextNotifier, journal *alertlog.Store) *eventSink {
	return &eventSink{
		address: address,
		text:    text,
		journal: journal,
		nowFn:   time.Now,
	}
}

var _ monitor.Sink = (*eventSink)(nil)

func (s *eventSink) Notify(ctx context.Context, ev monitor.Event) error {
	now := s.nowFn().UTC()
	body := monitor.Render(ev, s.address, now).RenderMarkdown()

	sendErr := s.text.SendText(body)

	if s.journal != nil {
		rec := alertlog.Record{
			TraceID:   uuid.NewString(),
			Kind:      monitor.Kind(ev),
			Asset:     monitor.Asset(ev),
			Body:      body,
			Delivered: sendErr == nil,
			CreatedAt: now.UnixMilli(),
		}
		if err := s.journal.Append(ctx, rec); err != nil {
			logger.Warnf("alert journal append failed: %v", err)
		}
	}
	return sendErr
}
