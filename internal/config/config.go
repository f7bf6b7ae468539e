package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/scan"
)

const EnvPrefix = "FITTING_ROOM"

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// empty DSN keeps sessions, sequences and stats in memory
	DatabaseDSN   string
	RunMigrations bool

	// empty URL publishes to the in-process bus
	RabbitMQURL string

	SessionTTL    time.Duration
	PurgeInterval time.Duration
	RedirectDelay time.Duration
	Scan          scan.Config

	CORSAllowOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8084")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("database_dsn", "")
	v.SetDefault("run_migrations", true)
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("purge_interval", "1m")
	v.SetDefault("redirect_delay", "5s")
	v.SetDefault("scan_tick", "50ms")
	v.SetDefault("scan_step", 5)
	v.SetDefault("scan_settle", "500ms")
	v.SetDefault("cors_allow_origins", "*")
}

// Load reads defaults, the optional YAML file at path and FITTING_ROOM_*
// environment variables, in increasing precedence. DATABASE_DSN and
// RABBITMQ_URL are honoured as fallbacks.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	_ = v.BindEnv("database_dsn", EnvPrefix+"_DATABASE_DSN", "DATABASE_DSN")
	_ = v.BindEnv("rabbitmq_url", EnvPrefix+"_RABBITMQ_URL", "RABBITMQ_URL")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		HTTPAddr:         v.GetString("http_addr"),
		ShutdownTimeout:  v.GetDuration("shutdown_timeout"),
		DatabaseDSN:      v.GetString("database_dsn"),
		RunMigrations:    v.GetBool("run_migrations"),
		RabbitMQURL:      v.GetString("rabbitmq_url"),
		SessionTTL:       v.GetDuration("session_ttl"),
		PurgeInterval:    v.GetDuration("purge_interval"),
		RedirectDelay:    v.GetDuration("redirect_delay"),
		CORSAllowOrigins: splitCSV(v.GetString("cors_allow_origins")),
		Scan: scan.Config{
			Tick:   v.GetDuration("scan_tick"),
			Step:   v.GetInt("scan_step"),
			Settle: v.GetDuration("scan_settle"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http_addr is required"))
	}
	for name, d := range map[string]time.Duration{
		"shutdown_timeout": c.ShutdownTimeout,
		"session_ttl":      c.SessionTTL,
		"purge_interval":   c.PurgeInterval,
		"redirect_delay":   c.RedirectDelay,
		"scan_tick":        c.Scan.Tick,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Scan.Settle < 0 {
		errs = append(errs, errors.New("scan_settle must not be negative"))
	}
	if c.Scan.Step <= 0 || c.Scan.Step > 100 {
		errs = append(errs, fmt.Errorf("scan_step must be in 1..100, got %d", c.Scan.Step))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
