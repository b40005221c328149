package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/internal/models"
)

func conflictKey(kind models.EntityKind, id string) []byte {
	return []byte(string(kind) + "/" + id)
}

// SaveConflict stores a conflict record
func (s *Storage) SaveConflict(ctx context.Context, conflict *models.Conflict) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(conflict)
	if err != nil {
		return fmt.Errorf("failed to marshal conflict: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return fmt.Errorf("conflicts bucket not found")
		}

		if err := bucket.Put([]byte(conflict.Key()), data); err != nil {
			return fmt.Errorf("failed to save conflict: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetConflict retrieves a conflict by kind and id
func (s *Storage) GetConflict(ctx context.Context, kind models.EntityKind, id string) (*models.Conflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var conflict *models.Conflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return storage.ErrConflictNotFound
		}

		data := bucket.Get(conflictKey(kind, id))
		if data == nil {
			return storage.ErrConflictNotFound
		}

		conflict = &models.Conflict{}
		if err := json.Unmarshal(data, conflict); err != nil {
			return fmt.Errorf("failed to unmarshal conflict: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return conflict, nil
}

// ListConflicts returns all open conflicts
func (s *Storage) ListConflicts(ctx context.Context) ([]*models.Conflict, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var conflicts []*models.Conflict

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var conflict models.Conflict
			if err := json.Unmarshal(v, &conflict); err != nil {
				return fmt.Errorf("failed to unmarshal conflict: %w", err)
			}
			conflicts = append(conflicts, &conflict)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}

	return conflicts, nil
}

// DeleteConflict removes a resolved conflict
func (s *Storage) DeleteConflict(ctx context.Context, kind models.EntityKind, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketConflicts)
		if bucket == nil {
			return storage.ErrConflictNotFound
		}

		key := conflictKey(kind, id)
		if bucket.Get(key) == nil {
			return storage.ErrConflictNotFound
		}

		if err := bucket.Delete(key); err != nil {
			return fmt.Errorf("failed to delete conflict: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}
