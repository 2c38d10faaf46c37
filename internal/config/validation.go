package config

import (
	"fmt"
	"strings"
)

// Ethereum-style address: 0x + 40 hex chars. Hyperliquid identifies
// accounts by their L1 address.
func isHexAddress(s string) bool {
	if len(s) != 42 || !strings.HasPrefix(s, "0x") {
		return false
	}
	for _, r := range s[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func validate(c *Config) error {
	if err := c.Monitor.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (m *MonitorConfig) validate() error {
	addr := strings.TrimSpace(m.Address)
	if addr == "" {
		return fmt.Errorf("monitor.address is required (or set HYPERLIQUID_ADDRESS)")
	}
	if !isHexAddress(addr) {
		return fmt.Errorf("monitor.address %q is not a 0x-prefixed hex address", addr)
	}
	if m.IntervalSeconds <= 0 {
		return fmt.Errorf("monitor.interval_seconds must be > 0")
	}
	if m.FillLimit <= 0 {
		return fmt.Errorf("monitor.fill_limit must be > 0")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" {
		return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
	}
	if tg.ChatID == 0 {
		return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
	}
	return nil
}
