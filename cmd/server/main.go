package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/amirasaad/custodia/infra/cache"
	"github.com/amirasaad/custodia/infra/database"
	"github.com/amirasaad/custodia/infra/identity"
	"github.com/amirasaad/custodia/infra/repository"
	"github.com/amirasaad/custodia/infra/settlement"
	pkgcache "github.com/amirasaad/custodia/pkg/cache"
	"github.com/amirasaad/custodia/pkg/config"
	"github.com/amirasaad/custodia/pkg/provider"
	"github.com/amirasaad/custodia/pkg/service/auth"
	"github.com/amirasaad/custodia/pkg/service/query"
	"github.com/amirasaad/custodia/pkg/service/registration"
	"github.com/amirasaad/custodia/pkg/service/transfer"
	"github.com/amirasaad/custodia/webapi"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		charmlog.Fatal(err)
	}
}

func run() error {
	logger := setupLogger(&config.Log{Level: "info", Format: "text"})

	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	logger = setupLogger(&cfg.Log)

	db, err := database.Connect(cfg.DB.Url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	uow := repository.NewUoW(db)

	var listings pkgcache.AccountListingCache
	switch cfg.Cache.Backend {
	case "redis":
		listings, err = cache.NewRedisCache(cfg.Cache.RedisUrl, "custodia:", logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	default:
		listings = cache.NewMemoryCache()
	}

	var directory provider.IdentityDirectory
	switch cfg.Identity.Provider {
	case "http":
		directory = identity.NewHTTPDirectory(
			cfg.Identity.ApiUrl,
			cfg.Identity.ApiKey,
			cfg.Identity.Timeout,
			logger,
		)
	default:
		directory = identity.NewMemoryDirectory()
	}

	rail := settlement.NewSimulator(cfg.Settlement.Latency, cfg.Settlement.Outcome, logger)

	svcs := webapi.Services{
		Registration: registration.New(uow, directory, logger),
		Auth:         auth.New(uow, directory, cfg.Jwt, logger),
		Transfer:     transfer.New(uow, rail, listings, cfg.Settlement.Timeout, logger),
		Query:        query.New(uow, listings, cfg.Cache.TTL, logger),
	}
	app := webapi.NewApp(svcs, cfg.Jwt, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"address", addr,
		"identity", cfg.Identity.Provider,
		"cache", cfg.Cache.Backend,
		"settlementOutcome", cfg.Settlement.Outcome,
	)
	return app.Listen(addr)
}

func setupLogger(cfg *config.Log) *slog.Logger {
	styles := charmlog.DefaultStyles()
	infoTxtColor := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warnTxtColor := lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	errorTxtColor := lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}

	styles.Levels[charmlog.ErrorLevel] = lipgloss.NewStyle().
		SetString("❌").
		Bold(true).
		Padding(0, 1).
		Foreground(errorTxtColor)
	styles.Levels[charmlog.InfoLevel] = lipgloss.NewStyle().
		SetString("ℹ️").
		Bold(true).
		Padding(0, 1).
		Foreground(infoTxtColor)
	styles.Levels[charmlog.WarnLevel] = lipgloss.NewStyle().
		SetString("⚠️").
		Bold(true).
		Padding(0, 1).
		Foreground(warnTxtColor)
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(errorTxtColor)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)

	level, err := charmlog.ParseLevel(cfg.Level)
	if err != nil {
		level = charmlog.InfoLevel
	}
	formatter := charmlog.TextFormatter
	if cfg.Format == "json" {
		formatter = charmlog.JSONFormatter
	}

	handler := charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
		Formatter:       formatter,
	})
	handler.SetStyles(styles)

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
