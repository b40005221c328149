package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
)

// RunGet выводит детали одной сущности, включая tombstone
func RunGet(ctx context.Context, args []string, store *boltdb.Storage) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: marketsync-agent get <product|category> <id>")
	}

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	entity, err := store.GetEntity(ctx, kind, args[1])
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}

	return renderTemplate("detail", detailTemplate(kind), entity)
}
