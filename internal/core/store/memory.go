package store

import (
	"context"
	"sync"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"
)

// MemoryStore keeps documents in process, in insertion order
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	notifier    *notifier
}

type memCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		collections: make(map[string]*memCollection),
	}
	s.notifier = newNotifier(s.List)
	return s
}

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]interface{})}
		s.collections[name] = c
	}
	return c
}

// List returns every document of collection
func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		data, err := cloneFields(c.docs[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	return docs, nil
}

// Get returns one document
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return Document{}, common.ErrNotFound
	}
	data, ok := c.docs[id]
	if !ok {
		return Document{}, common.ErrNotFound
	}
	clone, err := cloneFields(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Data: clone}, nil
}

// Create stores data under a generated id
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	fields, err := cloneFields(data)
	if err != nil {
		return "", err
	}
	id := common.GenerateUUID()

	s.mu.Lock()
	c := s.collection(collection)
	c.order = append(c.order, id)
	c.docs[id] = fields
	s.mu.Unlock()

	s.notifier.notify(ctx, collection)
	return id, nil
}

// Update merges data into an existing document
func (s *MemoryStore) Update(ctx context.Context, collection, id string, data map[string]interface{}) error {
	fields, err := cloneFields(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	c := s.collection(collection)
	existing, ok := c.docs[id]
	if !ok {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	c.docs[id] = mergeFields(existing, fields)
	s.mu.Unlock()

	s.notifier.notify(ctx, collection)
	return nil
}

// Merge upserts data under id
func (s *MemoryStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	fields, err := cloneFields(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	c := s.collection(collection)
	if existing, ok := c.docs[id]; ok {
		c.docs[id] = mergeFields(existing, fields)
	} else {
		c.order = append(c.order, id)
		c.docs[id] = fields
	}
	s.mu.Unlock()

	s.notifier.notify(ctx, collection)
	return nil
}

// Delete removes a document
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	c := s.collection(collection)
	if _, ok := c.docs[id]; !ok {
		s.mu.Unlock()
		return common.ErrNotFound
	}
	delete(c.docs, id)
	for i, docID := range c.order {
		if docID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notifier.notify(ctx, collection)
	return nil
}

// Subscribe starts a live query over collection
func (s *MemoryStore) Subscribe(ctx context.Context, collection string, fn Listener) (Unsubscribe, error) {
	return s.notifier.subscribe(ctx, collection, fn)
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close drops all listeners
func (s *MemoryStore) Close() error {
	s.notifier.clear()
	return nil
}
