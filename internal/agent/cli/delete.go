package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/revision"
)

// RunDelete логически удаляет сущность: запись превращается в tombstone
// и уходит в облако при следующем sync
func RunDelete(ctx context.Context, args []string, store *boltdb.Storage) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: marketsync-agent delete <product|category> <id>")
	}

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	entity, err := store.GetEntity(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity.Deleted() {
		fmt.Printf("%s %s is already deleted\n", kind, id)
		return nil
	}

	now := time.Now().UTC()
	entity.DeletedAt = &now

	clock, err := newClock(ctx, store)
	if err != nil {
		return err
	}
	revision.Stamp(clock, entity)

	if err := store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("failed to save tombstone: %w", err)
	}

	fmt.Printf("Deleted %s %s (provisional rev %d)\n", kind, id, entity.Rev)

	return nil
}
