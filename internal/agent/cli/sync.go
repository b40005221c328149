package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	httpClient "github.com/iudanet/marketsync/internal/agent/api"
	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	agentsync "github.com/iudanet/marketsync/internal/agent/sync"
	"github.com/iudanet/marketsync/internal/config"
)

// newSyncService собирает сервис синхронизации из конфигурации.
// boltdb.Storage реализует все три интерфейса хранилища агента.
func newSyncService(cfg *config.AgentConfig, store *boltdb.Storage, logger *slog.Logger) agentsync.Service {
	apiClient := httpClient.NewClient(
		cfg.ServerURL,
		cfg.Token,
		cfg.Sync.RetryAttempts,
		time.Duration(cfg.Sync.RetryDelay),
	)
	return agentsync.NewService(apiClient, store, store, store, cfg.Sync.PullLimit, logger)
}

// RunSync выполняет один цикл синхронизации с облаком
func RunSync(ctx context.Context, cfg *config.AgentConfig, store *boltdb.Storage) error {
	fmt.Println("=== Synchronization ===")
	fmt.Println()
	fmt.Printf("Syncing with %s...\n", cfg.ServerURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	service := newSyncService(cfg, store, logger)

	result, err := service.Sync(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Synchronization completed successfully!")
	fmt.Println()
	fmt.Printf("Applied from cloud: %d changes\n", result.CloudChangesApplied)
	fmt.Printf("Pushed to cloud:    %d changes\n", result.LocalChangesPushed)
	if result.Conflicts > 0 {
		fmt.Printf("New conflicts:      %d\n", result.Conflicts)
		fmt.Println()
		fmt.Println("Run 'marketsync-agent conflicts' to inspect and resolve them.")
	}

	return nil
}
