package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/marketsync/internal/models"
	"github.com/iudanet/marketsync/internal/server/storage"
)

const entityColumns = `kind, id, name, description, price_cents,
	       category_id, parent_id, active, rev,
	       updated_at, updated_by, checksum, deleted_at`

// GetEntity retrieves a single entity by kind and id, tombstones included.
// Returns ErrEntityNotFound if entity doesn't exist
func (s *Storage) GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE kind = ? AND id = ?
	`

	entity, err := scanEntity(s.db.QueryRowContext(ctx, query, string(kind), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return entity, nil
}

// ListChangedSince retrieves up to limit entities with rev > sinceRev,
// ordered by rev ascending. Tombstones are included.
func (s *Storage) ListChangedSince(ctx context.Context, sinceRev int64, limit int) ([]*models.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE rev > ?
		ORDER BY rev ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, sinceRev, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed entities: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = cerr
		}
	}()

	return scanEntities(rows)
}

// ListByKind retrieves all non-deleted entities of the given kind
func (s *Storage) ListByKind(ctx context.Context, kind models.EntityKind) ([]*models.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE kind = ? AND deleted_at IS NULL
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities by kind: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = cerr
		}
	}()

	return scanEntities(rows)
}

// LatestRevision returns the highest revision ever assigned.
// Returns 0 for an empty catalog
func (s *Storage) LatestRevision(ctx context.Context) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `SELECT rev FROM revision_seq WHERE id = 1`).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("failed to read revision sequence: %w", err)
	}
	return rev, nil
}

// ApplyRecord атомарно применяет одно изменение: читает текущую версию,
// передает её в decide, и если decide вернул сущность — выделяет новую
// ревизию из глобального счетчика и сохраняет результат
func (s *Storage) ApplyRecord(ctx context.Context, kind models.EntityKind, id string, decide storage.DecideFunc) (*models.Entity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op после commit

	// Читаем текущую версию в рамках той же транзакции
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE kind = ? AND id = ?
	`
	stored, err := scanEntity(tx.QueryRowContext(ctx, query, string(kind), id))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read stored entity: %w", err)
	}

	result, err := decide(stored)
	if err != nil {
		return nil, err
	}
	if result == nil {
		// decide отказался от записи, транзакция откатывается
		return nil, nil
	}

	// Выделяем следующую глобальную ревизию
	rev, err := nextRevision(ctx, tx)
	if err != nil {
		return nil, err
	}
	result.Rev = rev

	var deletedAt sql.NullInt64
	if result.DeletedAt != nil {
		deletedAt = sql.NullInt64{Int64: result.DeletedAt.Unix(), Valid: true}
	}

	upsert := `
		INSERT INTO entities (
			kind, id, name, description, price_cents,
			category_id, parent_id, active, rev,
			updated_at, updated_by, checksum, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			price_cents = excluded.price_cents,
			category_id = excluded.category_id,
			parent_id = excluded.parent_id,
			active = excluded.active,
			rev = excluded.rev,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by,
			checksum = excluded.checksum,
			deleted_at = excluded.deleted_at
	`

	_, err = tx.ExecContext(ctx, upsert,
		string(result.Kind),
		result.ID,
		result.Name,
		result.Description,
		result.PriceCents,
		result.CategoryID,
		result.ParentID,
		boolToInt(result.Active),
		result.Rev,
		result.UpdatedAt.Unix(),
		string(result.UpdatedBy),
		result.Checksum,
		deletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert entity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// nextRevision инкрементирует глобальный счетчик и возвращает новое значение.
// Вызывается только внутри транзакции
func nextRevision(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE revision_seq SET rev = rev + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("failed to advance revision sequence: %w", err)
	}

	var rev int64
	if err := tx.QueryRowContext(ctx, `SELECT rev FROM revision_seq WHERE id = 1`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("failed to read advanced revision: %w", err)
	}
	return rev, nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanning helpers
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntity is a helper to scan a single entity row
func scanEntity(row rowScanner) (*models.Entity, error) {
	entity := &models.Entity{}
	var kind, updatedBy string
	var active int
	var updatedAt int64
	var deletedAt sql.NullInt64

	err := row.Scan(
		&kind,
		&entity.ID,
		&entity.Name,
		&entity.Description,
		&entity.PriceCents,
		&entity.CategoryID,
		&entity.ParentID,
		&active,
		&entity.Rev,
		&updatedAt,
		&updatedBy,
		&entity.Checksum,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	entity.Kind = models.EntityKind(kind)
	entity.UpdatedBy = models.Origin(updatedBy)
	entity.Active = intToBool(active)
	entity.UpdatedAt = unixToTime(updatedAt)
	if deletedAt.Valid {
		t := unixToTime(deletedAt.Int64)
		entity.DeletedAt = &t
	}

	return entity, nil
}

// scanEntities is a helper function to scan multiple entities from rows
func scanEntities(rows *sql.Rows) ([]*models.Entity, error) {
	var entities []*models.Entity

	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entities, nil
}

// Helper functions for bool/int conversion
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intToBool(i int) bool {
	return i != 0
}

func unixToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}
