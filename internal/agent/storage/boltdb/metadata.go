package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
)

const (
	keyPullCursor = "pull_cursor"
	keyAgentID    = "agent_id"
)

// SavePullCursor saves the revision up to which the agent has
// fully consumed the cloud change stream
func (s *Storage) SavePullCursor(ctx context.Context, rev int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Конвертируем int64 в bytes
		revBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(revBytes, uint64(rev))

		if err := bucket.Put([]byte(keyPullCursor), revBytes); err != nil {
			return fmt.Errorf("failed to save pull cursor: %w", err)
		}

		return nil
	})
}

// GetPullCursor retrieves the pull cursor.
// Returns 0 if no sync has been performed yet
func (s *Storage) GetPullCursor(ctx context.Context) (int64, error) {
	var rev int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		revBytes := bucket.Get([]byte(keyPullCursor))
		if revBytes == nil {
			// Курсор не найден - первая синхронизация
			rev = 0
			return nil
		}

		rev = int64(binary.BigEndian.Uint64(revBytes))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get pull cursor: %w", err)
	}

	return rev, nil
}

// AgentID returns the stable agent identifier,
// generating and persisting a ULID on first call
func (s *Storage) AgentID(ctx context.Context) (string, error) {
	var agentID string

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		if existing := bucket.Get([]byte(keyAgentID)); existing != nil {
			agentID = string(existing)
			return nil
		}

		// Первый запуск: генерируем и сохраняем идентификатор
		agentID = ulid.Make().String()
		if err := bucket.Put([]byte(keyAgentID), []byte(agentID)); err != nil {
			return fmt.Errorf("failed to save agent id: %w", err)
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to get agent id: %w", err)
	}

	return agentID, nil
}
