package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Watch     WatchConfig     `mapstructure:"watch"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Stops     StopsConfig     `mapstructure:"stops"`
	Ops       OpsConfig       `mapstructure:"ops"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

// WatchConfig describes the area to poll and the loop timing.
type WatchConfig struct {
	Lat             float64       `mapstructure:"lat"`
	Lng             float64       `mapstructure:"lng"`
	RadiusMeters    int           `mapstructure:"radius_meters"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxRuntime      time.Duration `mapstructure:"max_runtime"`
	ThresholdMeters float64       `mapstructure:"threshold_meters"`
}

type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StopsConfig carries the raw bus stop list; parsing happens in the
// domain layer.
type StopsConfig struct {
	Spec string `mapstructure:"spec"`
}

type OpsConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	Port         int  `mapstructure:"port"`
	ReadTimeout  int  `mapstructure:"read_timeout"`
	WriteTimeout int  `mapstructure:"write_timeout"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. A .env
// file in the working directory is applied first; variables already set
// in the environment win.
func Load(service string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("watch.poll_interval", 10*time.Second)
	v.SetDefault("watch.max_runtime", time.Duration(0))
	v.SetDefault("watch.threshold_meters", 200.0)
	v.SetDefault("upstream.base_url", "https://api.stagecoach-technology.net/vehicle-tracking/v1/vehicles")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.timeout", 10*time.Second)
	v.SetDefault("stops.spec", "")
	v.SetDefault("ops.enabled", true)
	v.SetDefault("ops.port", 8080)
	v.SetDefault("ops.read_timeout", 10)
	v.SetDefault("ops.write_timeout", 10)
	v.SetDefault("nats.url", "")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: BUSWATCH_WATCH_LAT → watch.lat
	v.SetEnvPrefix("BUSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flat legacy names are honored alongside the prefixed forms.
	_ = v.BindEnv("watch.lat", "BUSWATCH_WATCH_LAT", "LAT")
	_ = v.BindEnv("watch.lng", "BUSWATCH_WATCH_LNG", "LNG")
	_ = v.BindEnv("watch.radius_meters", "BUSWATCH_WATCH_RADIUS_METERS", "RADIUS")
	_ = v.BindEnv("telegram.bot_token", "BUSWATCH_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "BUSWATCH_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("stops.spec", "BUSWATCH_STOPS_SPEC", "BUS_STOPS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(v); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and
// sane. Required fields carry no defaults, so presence is checked
// against the viper instance rather than against zero values: 0 is a
// legitimate coordinate.
func (c *Config) Validate(v *viper.Viper) error {
	var errs []string

	if !v.IsSet("watch.lat") {
		errs = append(errs, "watch.lat is required (env LAT)")
	}
	if !v.IsSet("watch.lng") {
		errs = append(errs, "watch.lng is required (env LNG)")
	}
	switch {
	case !v.IsSet("watch.radius_meters"):
		errs = append(errs, "watch.radius_meters is required (env RADIUS)")
	case c.Watch.RadiusMeters <= 0:
		errs = append(errs, fmt.Sprintf("watch.radius_meters must be positive, got %d", c.Watch.RadiusMeters))
	}
	if c.Telegram.BotToken == "" {
		errs = append(errs, "telegram.bot_token is required (env TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		errs = append(errs, "telegram.chat_id is required (env TELEGRAM_CHAT_ID)")
	}
	if c.Watch.PollInterval <= 0 {
		errs = append(errs, "watch.poll_interval must be positive")
	}
	if c.Watch.MaxRuntime < 0 {
		errs = append(errs, "watch.max_runtime must not be negative")
	}
	if c.Watch.ThresholdMeters <= 0 {
		errs = append(errs, "watch.threshold_meters must be positive")
	}
	if c.Ops.Enabled && (c.Ops.Port <= 0 || c.Ops.Port > 65535) {
		errs = append(errs, fmt.Sprintf("ops.port must be 1-65535, got %d", c.Ops.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
