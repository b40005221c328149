package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/revision"
)

// RunConflicts выводит конфликты, ожидающие ручного разрешения
func RunConflicts(ctx context.Context, store *boltdb.Storage) error {
	conflicts, err := store.ListConflicts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}

	if len(conflicts) == 0 {
		fmt.Println("No unresolved conflicts.")
		return nil
	}

	fmt.Printf("Found %d unresolved conflict(s):\n", len(conflicts))
	for _, c := range conflicts {
		if err := renderTemplate("conflict", conflictTemplate, c); err != nil {
			return err
		}
	}

	fmt.Println()
	fmt.Println("Use 'marketsync-agent resolve <kind> <id> --theirs|--ours' to resolve.")

	return nil
}

// RunResolve разрешает конфликт одной записи:
//
//	--theirs  принять облачную версию, отбросив локальные правки
//	--ours    перештамповать локальную версию свежей ревизией, чтобы
//	          следующий push выиграл у сохраненной облачной копии
func RunResolve(ctx context.Context, args []string, store *boltdb.Storage) error {
	var kindArg, id string
	var theirs, ours bool

	// Флаги и позиционные аргументы могут идти в любом порядке
	positional := make([]string, 0, 2)
	for _, arg := range args {
		switch arg {
		case "--theirs":
			theirs = true
		case "--ours":
			ours = true
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) < 2 {
		return fmt.Errorf("usage: marketsync-agent resolve <product|category> <id> --theirs|--ours")
	}
	kindArg, id = positional[0], positional[1]

	if theirs == ours {
		return fmt.Errorf("specify exactly one of --theirs or --ours")
	}

	kind, err := parseKind(kindArg)
	if err != nil {
		return err
	}

	conflict, err := store.GetConflict(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to get conflict: %w", err)
	}

	if theirs {
		// Облачная версия уже авторитетна, принимаем её как есть
		if err := store.SaveEntity(ctx, conflict.Remote); err != nil {
			return fmt.Errorf("failed to accept cloud version: %w", err)
		}
	} else {
		// Локальная версия перештамповывается поверх облачной ревизии:
		// часы обязаны видеть ревизию облачной копии, иначе следующий
		// push снова проиграет по устареванию
		clock, err := newClock(ctx, store)
		if err != nil {
			return err
		}
		clock.Observe(conflict.Remote.Rev)

		local := conflict.Local.Clone()
		revision.Stamp(clock, local)

		if err := store.SaveEntity(ctx, local); err != nil {
			return fmt.Errorf("failed to restamp local version: %w", err)
		}
	}

	if err := store.DeleteConflict(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to close conflict: %w", err)
	}

	if theirs {
		fmt.Printf("Resolved %s/%s: cloud version accepted\n", kind, id)
	} else {
		fmt.Printf("Resolved %s/%s: local version will win on next sync\n", kind, id)
	}

	return nil
}
