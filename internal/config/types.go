package config

// Config is the top-level configuration carrier. Field tags use "toml"
// because the mapstructure decoder is pointed at that tag name even though
// config files are YAML; key names stay identical either way.
type Config struct {
	App     AppConfig     `toml:"app"`
	Monitor MonitorConfig `toml:"monitor"`
	Notify  NotifyConfig  `toml:"notify"`
	Journal JournalConfig `toml:"journal"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"` // empty disables the status server
	LogPath  string `toml:"log_path"`  // empty logs to stdout only
}

// MonitorConfig describes the watched address and the poll cadence.
type MonitorConfig struct {
	Address         string `toml:"address"`
	Testnet         bool   `toml:"testnet"`
	IntervalSeconds int    `toml:"interval_seconds"`
	FillLimit       int    `toml:"fill_limit"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	APIURL          string `toml:"api_url"` // override, primarily for tests
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
}

// JournalConfig controls the on-disk alert journal. The journal is an
// audit log only; the monitor never reads it back, so a restart always
// cold-starts.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}
