package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/marketsync/internal/agent/storage"
	"github.com/iudanet/marketsync/internal/models"
)

// SaveEntity stores or overwrites an entity in the local replica
func (s *Storage) SaveEntity(ctx context.Context, entity *models.Entity) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	bucketName, err := bucketForKind(entity.Kind)
	if err != nil {
		return err
	}

	// Сериализуем в JSON
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		if err := bucket.Put([]byte(entity.ID), data); err != nil {
			return fmt.Errorf("failed to save entity: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// GetEntity retrieves an entity by kind and id, tombstones included
func (s *Storage) GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Entity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	bucketName, err := bucketForKind(kind)
	if err != nil {
		return nil, err
	}

	var entity *models.Entity

	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return storage.ErrEntityNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrEntityNotFound
		}

		entity = &models.Entity{}
		if err := json.Unmarshal(data, entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entity, nil
}

// ListEntities returns all non-deleted entities of the given kind
func (s *Storage) ListEntities(ctx context.Context, kind models.EntityKind) ([]*models.Entity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	bucketName, err := bucketForKind(kind)
	if err != nil {
		return nil, err
	}

	var entities []*models.Entity

	err = s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var entity models.Entity
			if err := json.Unmarshal(v, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}

			// Tombstones скрыты от обычных чтений
			if !entity.Deleted() {
				entities = append(entities, &entity)
			}

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, nil
}

// ListDirty returns entities with unconfirmed local changes,
// excluding entities with an open conflict
func (s *Storage) ListDirty(ctx context.Context) ([]*models.Entity, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var entities []*models.Entity

	err := s.db.View(func(tx *bbolt.Tx) error {
		conflicts := tx.Bucket(bucketConflicts)

		for _, kind := range models.Kinds() {
			bucketName, err := bucketForKind(kind)
			if err != nil {
				return err
			}

			bucket := tx.Bucket(bucketName)
			if bucket == nil {
				continue
			}

			err = bucket.ForEach(func(k, v []byte) error {
				var entity models.Entity
				if err := json.Unmarshal(v, &entity); err != nil {
					return fmt.Errorf("failed to unmarshal entity: %w", err)
				}

				if entity.UpdatedBy != models.OriginLocal {
					return nil
				}

				// Конфликтная сущность в карантине: в push не попадает,
				// пока конфликт не разрешен вручную
				if conflicts != nil {
					key := string(entity.Kind) + "/" + entity.ID
					if conflicts.Get([]byte(key)) != nil {
						return nil
					}
				}

				entities = append(entities, &entity)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list dirty entities: %w", err)
	}

	return entities, nil
}

// LatestRevision returns the maximum revision in the local replica
func (s *Storage) LatestRevision(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var maxRev int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, kind := range models.Kinds() {
			bucketName, err := bucketForKind(kind)
			if err != nil {
				return err
			}

			bucket := tx.Bucket(bucketName)
			if bucket == nil {
				continue
			}

			err = bucket.ForEach(func(k, v []byte) error {
				var entity models.Entity
				if err := json.Unmarshal(v, &entity); err != nil {
					return fmt.Errorf("failed to unmarshal entity: %w", err)
				}

				if entity.Rev > maxRev {
					maxRev = entity.Rev
				}

				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get latest revision: %w", err)
	}

	return maxRev, nil
}
