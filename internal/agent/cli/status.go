package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/models"
)

// RunStatus выводит состояние локальной реплики
func RunStatus(ctx context.Context, store *boltdb.Storage) error {
	agentID, err := store.AgentID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get agent id: %w", err)
	}

	cursor, err := store.GetPullCursor(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pull cursor: %w", err)
	}

	latest, err := store.LatestRevision(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest revision: %w", err)
	}

	dirty, err := store.ListDirty(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending changes: %w", err)
	}

	conflicts, err := store.ListConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}

	fmt.Println("=== Agent Status ===")
	fmt.Println()
	fmt.Printf("Agent ID:         %s\n", agentID)
	fmt.Printf("Pull cursor:      %d\n", cursor)
	fmt.Printf("Local revision:   %d\n", latest)
	fmt.Printf("Pending changes:  %d\n", len(dirty))
	fmt.Printf("Open conflicts:   %d\n", len(conflicts))

	for _, kind := range models.Kinds() {
		entities, err := store.ListEntities(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to list %s entities: %w", kind, err)
		}
		fmt.Printf("%-17s %d\n", fmt.Sprintf("%s count:", kind), len(entities))
	}

	if len(conflicts) > 0 {
		fmt.Println()
		fmt.Println("Run 'marketsync-agent conflicts' to inspect unresolved conflicts.")
	}

	return nil
}
