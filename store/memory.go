// File: /store/memory.go
package store

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore used for development and
// tests. It honors the same single-document semantics as the SQL
// adapter, including the absence of cross-document atomicity.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*Document),
	}
}

func (m *MemoryStore) CreateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == AutoID {
		id = uuid.New().String()
	}

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]*Document)
		m.collections[collection] = docs
	}

	if _, exists := docs[id]; exists {
		return nil, ErrConflict
	}

	now := time.Now().UTC()
	doc := &Document{
		Collection: collection,
		ID:         id,
		Fields:     cloneFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	docs[id] = doc

	return copyDocument(doc), nil
}

func (m *MemoryStore) GetDocument(ctx context.Context, collection, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(doc), nil
}

func (m *MemoryStore) ListDocuments(ctx context.Context, collection string, filters Filters) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Document
	for _, doc := range m.collections[collection] {
		if matches(doc, filters) {
			out = append(out, copyDocument(doc))
		}
	}

	// Map iteration order is random; keep listings stable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (m *MemoryStore) UpdateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	for k, v := range cloneFields(fields) {
		doc.Fields[k] = v
	}
	doc.UpdatedAt = time.Now().UTC()

	return copyDocument(doc), nil
}

func matches(doc *Document, filters Filters) bool {
	for k, want := range filters {
		if !reflect.DeepEqual(doc.Fields[k], want) {
			return false
		}
	}
	return true
}

func copyDocument(doc *Document) *Document {
	out := *doc
	out.Fields = cloneFields(doc.Fields)
	return &out
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if s, ok := v.([]string); ok {
			out[k] = append([]string{}, s...)
			continue
		}
		out[k] = v
	}
	return out
}
