// Package cli реализует команды локального агента каталога.
package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/marketsync/internal/agent/storage/boltdb"
	"github.com/iudanet/marketsync/internal/revision"
)

const usageTemplate = `
MarketSync Agent

Usage:
  marketsync-agent [OPTIONS] COMMAND

Options:
  --version        Show version information
  --config PATH    Path to config file (default: marketsync-agent.yaml)

Commands:
  sync                               Run one synchronization cycle
  serve                              Start local API listener and periodic sync
  status                             Show agent state
  list <product|category>            List catalog entities
  get <product|category> <id>        Show entity details
  add <product|category> [flags]     Create an entity locally
  update <product|category> <id>     Update an entity locally
  delete <product|category> <id>     Delete an entity locally
  conflicts                          List unresolved sync conflicts
  resolve <product|category> <id>    Resolve a conflict (--theirs or --ours)

Environment:
  MARKETSYNC_AGENT_TOKEN   Access token for the cloud sync API

Examples:
  marketsync-agent add product --name "Mug" --price-cents 1299 --category cat-1
  marketsync-agent resolve product 7c3a... --theirs
  marketsync-agent serve
`

// PrintUsage выводит справку по командам
func PrintUsage() {
	fmt.Print(usageTemplate)
}

// newClock создает часы локальных ревизий, засеянные максимумом
// ревизий реплики. Каждая команда работает в отдельном процессе,
// поэтому часы пересоздаются на каждый запуск.
func newClock(ctx context.Context, store *boltdb.Storage) (*revision.Clock, error) {
	latest, err := store.LatestRevision(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest revision: %w", err)
	}
	return revision.NewClock(latest), nil
}
