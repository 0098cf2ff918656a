package store

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lojasmm/shopchat/internal/entry"
)

var entriesBucket = []byte("entries")

const maxConversationEntries = 50

type Store interface {
	SaveEntry(conversationID string, e entry.ConversationEntry) error
	GetEntries(conversationID string) ([]entry.ConversationEntry, error)
	ClearEntries(conversationID string) error
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating entries bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SaveEntry appends e to the conversation history. An entry whose identifier
// is already stored replaces the earlier one in place. Only the newest
// maxConversationEntries are kept.
func (s *BoltStore) SaveEntry(conversationID string, e entry.ConversationEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(entriesBucket)

		var entries []entry.ConversationEntry
		if v := b.Get([]byte(conversationID)); v != nil {
			if err := json.Unmarshal(v, &entries); err != nil {
				return fmt.Errorf("decoding entries for %s: %w", conversationID, err)
			}
		}

		replaced := false
		if e.Identifier != "" {
			for i := range entries {
				if entries[i].Identifier == e.Identifier {
					entries[i] = e
					replaced = true
					break
				}
			}
		}
		if !replaced {
			entries = append(entries, e)
		}
		if len(entries) > maxConversationEntries {
			entries = entries[len(entries)-maxConversationEntries:]
		}

		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return b.Put([]byte(conversationID), data)
	})
}

func (s *BoltStore) GetEntries(conversationID string) ([]entry.ConversationEntry, error) {
	var entries []entry.ConversationEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(entriesBucket).Get([]byte(conversationID))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &entries)
	})
	return entries, err
}

func (s *BoltStore) ClearEntries(conversationID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Delete([]byte(conversationID))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
