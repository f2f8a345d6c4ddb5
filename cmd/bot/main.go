package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/pflag"

	"github.com/MrFolium/KeeperShop-dBot/internal/app"
	"github.com/MrFolium/KeeperShop-dBot/internal/clock"
	"github.com/MrFolium/KeeperShop-dBot/internal/config"
	"github.com/MrFolium/KeeperShop-dBot/internal/storage/jsonfile"
	transportdiscord "github.com/MrFolium/KeeperShop-dBot/internal/transport/discord"
	"github.com/MrFolium/KeeperShop-dBot/internal/transport/ops"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := pflag.String("config", "config.yaml", "path to the YAML config file")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(logger, *configPath); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	unlock, err := acquireLock(filepath.Join(cfg.DataDir, "bot.lock"))
	if err != nil {
		return fmt.Errorf("another bot instance is already running: %w", err)
	}
	defer unlock()

	store := jsonfile.NewStore(cfg.DataDir)
	catalogRepo, err := jsonfile.NewCatalogRepository(store)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	cartRepo, err := jsonfile.NewCartRepository(store)
	if err != nil {
		return fmt.Errorf("open carts: %w", err)
	}
	ledgerRepo, err := jsonfile.NewLedgerRepository(store)
	if err != nil {
		return fmt.Errorf("open exchange ledger: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	gateway := transportdiscord.NewGateway(session, cfg, logger)
	publisher := app.NewPublisher(catalogRepo, gateway, cfg.ShopChannelID, cfg.CartChannelID, cfg.AdminChannelID, logger)
	catalogSvc := app.NewCatalogService(catalogRepo, gateway, publisher, logger)
	cartSvc := app.NewCartService(cartRepo)
	orderSvc := app.NewOrderService(cartSvc, gateway, clock.NewSystem(), logger)
	exchangeSvc := app.NewExchangeService(ledgerRepo, gateway, gateway, clock.NewSystem(),
		app.WithArchiveDelay(cfg.ArchiveDelay),
		app.WithExchangeLogger(logger),
	)

	bot := transportdiscord.NewBot(session, cfg, gateway, catalogSvc, cartSvc, orderSvc, exchangeSvc, publisher, logger)
	if err := bot.Start(); err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	logger.Info("bot started", "guild", cfg.GuildID)

	opsServer := ops.NewServer(cfg.OpsAddr, logger)
	opsErr := make(chan error, 1)
	go func() {
		opsErr <- opsServer.ListenAndServe()
	}()
	logger.Info("ops server listening", "addr", cfg.OpsAddr)

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-opsErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("ops server shutdown", "error", err)
	}
	if err := bot.Close(); err != nil {
		logger.Error("close session", "error", err)
	}
	logger.Info("bot stopped")
	return nil
}

// acquireLock takes an exclusive flock on the lock file so a second
// bot process refuses to start against the same data directory.
func acquireLock(path string) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		return nil, err
	}
	return func() {
		syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		file.Close()
	}, nil
}
