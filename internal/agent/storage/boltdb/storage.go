// Package boltdb реализует локальное хранилище агента поверх BoltDB.
// Каждому типу сущности соответствует свой bucket, плюс служебные
// buckets для метаданных синхронизации и конфликтов.
package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/marketsync/internal/models"
)

var (
	// BoltDB bucket names
	bucketProducts   = []byte("products")
	bucketCategories = []byte("categories")
	bucketMetadata   = []byte("metadata")
	bucketConflicts  = []byte("conflicts")
)

// Storage represents BoltDB storage implementation for the agent
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketProducts, bucketCategories, bucketMetadata, bucketConflicts}
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// bucketForKind возвращает имя bucket для типа сущности
func bucketForKind(kind models.EntityKind) ([]byte, error) {
	switch kind {
	case models.KindProduct:
		return bucketProducts, nil
	case models.KindCategory:
		return bucketCategories, nil
	}
	return nil, fmt.Errorf("unknown entity kind: %s", kind)
}
