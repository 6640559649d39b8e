package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/sift/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketCollections = []byte("collections")
	bucketMeta        = []byte("meta")
)

// collectionMeta is stored alongside each collection for freshness display
type collectionMeta struct {
	Count     int   `json:"count"`
	UpdatedAt int64 `json:"updated_at"`
}

// CatalogStore implements domain.CatalogStore using BoltDB.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens the catalog database under dir. An empty dir keeps everything
// in memory.
func Open(dir string) (*CatalogStore, error) {
	if dir == "" {
		return &CatalogStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "sift.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketCollections, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CatalogStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CatalogStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *CatalogStore) delete(bucket []byte, key string) error {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Collections ===

// GetItems returns the items of collection in stored order
func (s *CatalogStore) GetItems(collection string) ([]domain.Item, bool) {
	var items []domain.Item
	ok := s.get(bucketCollections, collection, &items)
	return items, ok
}

// SaveItems replaces the contents of collection
func (s *CatalogStore) SaveItems(collection string, items []domain.Item) error {
	if collection == "" {
		return fmt.Errorf("collection name is required")
	}
	if items == nil {
		items = []domain.Item{}
	}
	if err := s.set(bucketCollections, collection, items); err != nil {
		return err
	}
	return s.set(bucketMeta, collection, collectionMeta{
		Count:     len(items),
		UpdatedAt: time.Now().Unix(),
	})
}

// UpdatedAt returns when collection was last saved
func (s *CatalogStore) UpdatedAt(collection string) (time.Time, bool) {
	var meta collectionMeta
	if !s.get(bucketMeta, collection, &meta) {
		return time.Time{}, false
	}
	return time.Unix(meta.UpdatedAt, 0), true
}

// Collections returns the names of all stored collections, sorted
func (s *CatalogStore) Collections() ([]string, error) {
	seen := make(map[string]bool)

	s.mu.RLock()
	prefix := string(bucketCollections) + ":"
	for k := range s.cache {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			seen[k[len(prefix):]] = true
		}
	}
	s.mu.RUnlock()

	if s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketCollections)
			if b == nil {
				return nil
			}
			return b.ForEach(func(k, _ []byte) error {
				seen[string(k)] = true
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes collection and its metadata
func (s *CatalogStore) Delete(collection string) error {
	if err := s.delete(bucketCollections, collection); err != nil {
		return err
	}
	return s.delete(bucketMeta, collection)
}

var _ domain.CatalogStore = (*CatalogStore)(nil)
