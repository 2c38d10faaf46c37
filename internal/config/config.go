package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"hypermon/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Environment overrides, kept compatible with the original deployment:
// secrets stay out of the config file.
const (
	envAddress  = "HYPERLIQUID_ADDRESS"
	envBotToken = "TELEGRAM_BOT_TOKEN"
	envChatID   = "TELEGRAM_CHAT_ID"
)

// Load reads a YAML config file, applies defaults for every key the user
// did not set, layers environment overrides on top, and validates the
// result.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	collectSettingsKeys(v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := strings.TrimSpace(os.Getenv(envAddress)); addr != "" {
		cfg.Monitor.Address = addr
	}
	if token := strings.TrimSpace(os.Getenv(envBotToken)); token != "" {
		cfg.Notify.Telegram.BotToken = token
		cfg.Notify.Telegram.Enabled = true
	}
	if raw := strings.TrimSpace(os.Getenv(envChatID)); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		} else {
			logger.Warnf("config: ignoring invalid %s=%q", envChatID, raw)
		}
	}
}

// Watch re-loads the file on change and hands the fresh config to fn.
// Reload errors keep the running config; only log level style settings
// should be consumed from fn, the poller does not restart.
func Watch(path string, fn func(*Config)) error {
	if fn == nil {
		return fmt.Errorf("config watch requires a handler")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("watch config read failed (%s): %w", path, err)
	}
	v.OnConfigChange(func(evt fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			logger.Errorf("config reload failed (%s): %v", evt.Name, err)
			return
		}
		cfg, err := decode(v)
		if err != nil {
			logger.Errorf("config reload rejected (%s): %v", evt.Name, err)
			return
		}
		applyEnvOverrides(cfg)
		logger.Infof("config reloaded from %s", evt.Name)
		fn(cfg)
	})
	v.WatchConfig()
	return nil
}

// keySet tracks which flattened config keys the user explicitly set, so
// defaults never clobber an intentional zero value.
type keySet map[string]struct{}

func (k keySet) mark(key string) {
	k[key] = struct{}{}
}

func (k keySet) isSet(key string) bool {
	_, ok := k[strings.ToLower(key)]
	return ok
}

func collectSettingsKeys(settings map[string]any, dest keySet) {
	if dest == nil || len(settings) == 0 {
		return
	}
	flattenConfigKeys("", settings, dest)
}

func flattenConfigKeys(prefix string, node any, dest keySet) {
	switch val := node.(type) {
	case map[string]any:
		for k, v := range val {
			next := strings.ToLower(strings.TrimSpace(k))
			if next == "" {
				continue
			}
			if prefix != "" {
				next = prefix + "." + next
			}
			flattenConfigKeys(next, v, dest)
		}
	default:
		if prefix != "" {
			dest.mark(prefix)
		}
	}
}
