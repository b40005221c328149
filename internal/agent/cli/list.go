package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/models"
)

// RunList выводит живые сущности указанного типа
func RunList(ctx context.Context, args []string, store *boltdb.Storage) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entity kind. Usage: marketsync-agent list <product|category>")
	}

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	entities, err := store.ListEntities(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	if len(entities) == 0 {
		fmt.Printf("No %s entities found.\n", kind)
		return nil
	}

	fmt.Printf("Found %d %s entities:\n", len(entities), kind)
	fmt.Println()

	for i, e := range entities {
		fmt.Printf("%d. %s\n", i+1, e.Name)
		fmt.Printf("   ID:       %s\n", e.ID)
		if kind == models.KindProduct {
			fmt.Printf("   Price:    %d cents\n", e.PriceCents)
			if e.CategoryID != "" {
				fmt.Printf("   Category: %s\n", e.CategoryID)
			}
		} else if e.ParentID != "" {
			fmt.Printf("   Parent:   %s\n", e.ParentID)
		}
		fmt.Printf("   Revision: %d", e.Rev)
		if e.UpdatedBy == models.OriginLocal {
			fmt.Print(" (not yet pushed)")
		}
		fmt.Println()
		fmt.Println()
	}

	return nil
}
