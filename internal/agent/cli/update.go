package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/revision"
	"github.com/iudanet/marketsync/internal/validation"
)

// RunUpdate изменяет доменные поля существующей сущности.
// Tombstone переиспользовать нельзя: удаленную запись пересоздают add-ом.
func RunUpdate(ctx context.Context, args []string, store *boltdb.Storage) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: marketsync-agent update <product|category> <id> [flags]")
	}

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	name := fs.String("name", "", "New entity name")
	description := fs.String("description", "", "New entity description")
	priceCents := fs.Int64("price-cents", -1, "New product price in cents")
	categoryID := fs.String("category", "", "New product category id")
	parentID := fs.String("parent", "", "New parent category id")
	inactive := fs.Bool("inactive", false, "Mark entity as inactive")
	if err := fs.Parse(args[2:]); err != nil {
		return err
	}

	entity, err := store.GetEntity(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to get entity: %w", err)
	}
	if entity.Deleted() {
		return fmt.Errorf("%s %s is deleted", kind, id)
	}

	if *name != "" {
		entity.Name = *name
	}
	if *description != "" {
		entity.Description = *description
	}
	if *priceCents >= 0 {
		entity.PriceCents = *priceCents
	}
	if *categoryID != "" {
		entity.CategoryID = *categoryID
	}
	if *parentID != "" {
		entity.ParentID = *parentID
	}
	entity.Active = !*inactive

	clock, err := newClock(ctx, store)
	if err != nil {
		return err
	}
	revision.Stamp(clock, entity)

	if err := validation.ValidateEntity(entity.ToAPI()); err != nil {
		return fmt.Errorf("invalid entity: %w", err)
	}

	if err := store.SaveEntity(ctx, entity); err != nil {
		return fmt.Errorf("failed to save entity: %w", err)
	}

	fmt.Printf("Updated %s %s (provisional rev %d)\n", kind, id, entity.Rev)

	return nil
}
