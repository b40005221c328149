package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/internal/revision"
	"github.com/iudanet/marketsync/internal/validation"
)

// RunAdd создает новую сущность в локальной реплике. Запись получает
// условную ревизию и попадет в облако при следующем sync.
func RunAdd(ctx context.Context, args []string, store *boltdb.Storage) error {
	if len(args) == 0 {
		return fmt.Errorf("missing entity kind. Usage: marketsync-agent add <product|category> [flags]")
	}

	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "Entity name (required)")
	description := fs.String("description", "", "Entity description")
	priceCents := fs.Int64("price-cents", 0, "Product price in cents")
	categoryID := fs.String("category", "", "Product category id")
	parentID := fs.String("parent", "", "Parent category id")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	entity := &models.Entity{
		ID:          uuid.NewString(),
		Kind:        kind,
		Name:        *name,
		Description: *description,
		PriceCents:  *priceCents,
		CategoryID:  *categoryID,
		ParentID:    *parentID,
		Active:      true,
	}

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

	fmt.Printf("Created %s %s (provisional rev %d)\n", kind, entity.ID, entity.Rev)
	fmt.Println("Run 'marketsync-agent sync' to push the change to the cloud.")

	return nil
}
