package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/marketsync/internal/config"
	"github.com/iudanet/marketsync/internal/server/handlers"
	"github.com/iudanet/marketsync/internal/server/router"
	"github.com/iudanet/marketsync/internal/server/snapshot"
	"github.com/iudanet/marketsync/internal/server/storage/sqlite"
	"github.com/iudanet/marketsync/internal/server/token"
	"github.com/iudanet/marketsync/internal/server/worker"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "marketsync-server",
	Short: "MarketSync - облачный сервис синхронизации каталога",
	RunE:  runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Выпустить JWT токен для агента точки продаж",
	RunE:  runToken,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать информацию о версии",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("MarketSync Server\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Build Date: %s\n", BuildDate)
		fmt.Printf("Git Commit: %s\n", GitCommit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "marketsync.yaml", "путь к файлу конфигурации")
	tokenCmd.Flags().String("agent-id", "", "идентификатор агента (обязателен)")
	_ = tokenCmd.MarkFlagRequired("agent-id")
	rootCmd.AddCommand(tokenCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", configPath)

	// Хранилище: миграции и WAL выполняются при открытии
	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("storage close error", "error", cerr)
		}
	}()
	logger.Info("storage initialized", "path", cfg.Database.Path)

	tokenCfg := token.Config{
		Secret: []byte(cfg.Auth.Secret),
		TTL:    time.Duration(cfg.Auth.TokenTTL),
	}

	syncHandler := handlers.NewSyncHandler(logger, store,
		cfg.Sync.DefaultPullLimit, cfg.Sync.MaxPullLimit)
	healthHandler := handlers.NewHealthHandler(logger, store, Version)

	mux := router.New(logger, router.Config{
		TokenConfig: tokenCfg,
		RateLimit:   cfg.Sync.RateLimit,
		RateWindow:  time.Duration(cfg.Sync.RateWindow),
	}, syncHandler, healthHandler)

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeout),
		WriteTimeout: time.Duration(cfg.WriteTimeout),
	}

	// Фоновый воркер снапшотов
	uploader, err := snapshot.NewUploader(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to init snapshot uploader: %w", err)
	}

	var wg sync.WaitGroup
	snapshotWorker := worker.NewSnapshotWorker(logger, store, uploader,
		cfg.Snapshot.Dir, time.Duration(cfg.Snapshot.Interval))
	wg.Add(1)
	go func() {
		defer wg.Done()
		snapshotWorker.Run(ctx)
	}()

	go func() {
		logger.Info("server starting", "address", cfg.Listen)
		// ErrServerClosed — штатное завершение через Shutdown
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), time.Duration(cfg.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("shutdown complete")
	return nil
}

// runToken выпускает долгоживущий токен агента и печатает его в stdout
func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	agentID, err := cmd.Flags().GetString("agent-id")
	if err != nil {
		return err
	}

	tokenString, err := token.Generate(token.Config{
		Secret: []byte(cfg.Auth.Secret),
		TTL:    time.Duration(cfg.Auth.TokenTTL),
	}, agentID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Println(tokenString)
	return nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
