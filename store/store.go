// File: /store/store.go
package store

import (
	"context"
	"errors"
	"time"
)

// AutoID asks the store to generate the document id.
const AutoID = ""

var (
	// ErrNotFound is returned when no document exists for an id.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when creating a document whose id is taken.
	ErrConflict = errors.New("document already exists")
)

// Document is one untyped record in a named collection. Callers map it
// to a typed model at the boundary instead of passing raw fields around.
type Document struct {
	Collection string                 `json:"collection"`
	ID         string                 `json:"id"`
	Fields     map[string]interface{} `json:"fields"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Filters are equality predicates applied by ListDocuments.
type Filters map[string]interface{}

// DocumentStore is the persistence contract for all application data.
// The contract has no transactions: every call is a single-document
// operation and multi-document flows get no atomicity from the store.
type DocumentStore interface {
	// CreateDocument inserts a document. Pass AutoID to have the store
	// generate the id. Returns ErrConflict if the id is already taken.
	CreateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error)

	// GetDocument returns one document or ErrNotFound.
	GetDocument(ctx context.Context, collection, id string) (*Document, error)

	// ListDocuments returns every document in the collection matching
	// all filters. An empty result is not an error.
	ListDocuments(ctx context.Context, collection string, filters Filters) ([]*Document, error)

	// UpdateDocument merges partial fields into an existing document and
	// stamps UpdatedAt. Returns ErrNotFound if the document is missing.
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*Document, error)
}

// Collection names owned by this application.
const (
	CollectionProfiles       = "profiles"
	CollectionFriendRequests = "friend_requests"
	CollectionAccounts       = "accounts"
)
