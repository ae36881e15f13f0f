// Package coursebot parses bot command configuration and composes the runtime.
package coursebot

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/coursebot/internal/platform/cmd"
	"github.com/louisbranch/coursebot/internal/platform/config"
	platformgrpc "github.com/louisbranch/coursebot/internal/platform/grpc"
	"github.com/louisbranch/coursebot/internal/platform/timeouts"
	server "github.com/louisbranch/coursebot/internal/services/coursebot/app"
	"github.com/louisbranch/coursebot/internal/services/coursebot/router"
)

// Config holds coursebot command configuration.
//
// BOT_TOKEN and PUBLIC_BASE_URL keep the names the payment service
// deployment already sets.
type Config struct {
	BotToken           string `env:"BOT_TOKEN"`
	PublicBaseURL      string `env:"PUBLIC_BASE_URL"                envDefault:"https://web-production-fafa.up.railway.app"`
	Locale             string `env:"COURSEBOT_LOCALE"               envDefault:"ru-RU"`
	HealthAddr         string `env:"COURSEBOT_HEALTH_ADDR"          envDefault:":8090"`
	JournalPath        string `env:"COURSEBOT_JOURNAL_DB_PATH"`
	ProxyURL           string `env:"COURSEBOT_TELEGRAM_PROXY"`
	Workers            int    `env:"COURSEBOT_WORKERS"              envDefault:"4"`
	PollTimeoutSeconds int    `env:"COURSEBOT_POLL_TIMEOUT_SECONDS" envDefault:"60"`

	// Probe checks the health endpoint of a running bot instead of starting one.
	Probe bool
}

// ParseConfig parses environment and flags into a Config and validates it.
// Errors are configuration faults; callers must not start the bot.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", cfg.PublicBaseURL, "payment service public origin")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "chat copy locale")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.JournalPath, "journal-db", cfg.JournalPath, "handoff journal SQLite path (empty disables)")
	fs.StringVar(&cfg.ProxyURL, "telegram-proxy", cfg.ProxyURL, "proxy URL for Bot API calls")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent update handlers")
	fs.IntVar(&cfg.PollTimeoutSeconds, "poll-timeout", cfg.PollTimeoutSeconds, "long poll timeout in seconds")
	fs.BoolVar(&cfg.Probe, "probe", false, "check the health endpoint and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	if cfg.Probe {
		if err := config.RequireString("COURSEBOT_HEALTH_ADDR", cfg.HealthAddr); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}
	if err := config.RequireString("BOT_TOKEN", cfg.BotToken); err != nil {
		return Config{}, err
	}
	if _, err := router.ParseBaseURL(cfg.PublicBaseURL); err != nil {
		return Config{}, fmt.Errorf("PUBLIC_BASE_URL: %w", err)
	}
	if cfg.Workers <= 0 {
		return Config{}, fmt.Errorf("COURSEBOT_WORKERS must be positive, got %d", cfg.Workers)
	}
	if cfg.PollTimeoutSeconds <= 0 {
		return Config{}, fmt.Errorf("COURSEBOT_POLL_TIMEOUT_SECONDS must be positive, got %d", cfg.PollTimeoutSeconds)
	}
	return cfg, nil
}

// Run starts the bot, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		return platformgrpc.Probe(ctx, cfg.HealthAddr, server.HealthService, timeouts.HealthProbe)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCourseBot, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			BotToken:      cfg.BotToken,
			PublicBaseURL: cfg.PublicBaseURL,
			Locale:        cfg.Locale,
			HealthAddr:    cfg.HealthAddr,
			JournalPath:   cfg.JournalPath,
			ProxyURL:      cfg.ProxyURL,
			Workers:       cfg.Workers,
			PollTimeout:   time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		}); err != nil {
			return fmt.Errorf("serve coursebot: %w", err)
		}
		return nil
	})
}
