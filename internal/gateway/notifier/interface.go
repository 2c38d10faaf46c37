package notifier

import "hypermon/internal/logger"

// TextNotifier is the minimal delivery interface. It is intentionally
// small so callers never depend on a concrete channel implementation.
type TextNotifier interface {
	SendText(text string) error
}

// Log is the fallback notifier used when no channel is configured: it
// writes the rendered message to the application log and always succeeds.
type Log struct{}

func (Log) SendText(text string) error {
	logger.Infof("notify: %s", text)
	return nil
}
