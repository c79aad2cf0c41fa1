// File: /database/store.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"serenity-api/store"
)

// documentRow is the single table backing the document store. Every
// operation below touches exactly one row in one statement; the
// adapter deliberately never opens a transaction, matching the
// contract the rest of the application is written against.
type documentRow struct {
	ID         uint      `gorm:"primaryKey"`
	Collection string    `gorm:"not null;size:64;uniqueIndex:idx_documents_collection_doc,priority:1"`
	DocID      string    `gorm:"not null;size:191;uniqueIndex:idx_documents_collection_doc,priority:2"`
	Fields     string    `gorm:"not null;type:json"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (documentRow) TableName() string {
	return "documents"
}

// Store implements store.DocumentStore on MySQL through GORM.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*store.Document, error) {
	if id == store.AutoID {
		id = uuid.New().String()
	}

	var existing documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND doc_id = ?", collection, id).First(&existing).Error
	if err == nil {
		return nil, store.ErrConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("documents lookup: %w", err)
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("documents encode: %w", err)
	}

	now := time.Now().UTC()
	row := documentRow{
		Collection: collection,
		DocID:      id,
		Fields:     string(encoded),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("documents create: %w", err)
	}

	return rowToDocument(&row)
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*store.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("documents get: %w", err)
	}

	return rowToDocument(&row)
}

func (s *Store) ListDocuments(ctx context.Context, collection string, filters store.Filters) ([]*store.Document, error) {
	query := s.db.WithContext(ctx).Where("collection = ?", collection)
	for field, value := range filters {
		query = query.Where("JSON_UNQUOTE(JSON_EXTRACT(fields, ?)) = ?", "$."+field, fmt.Sprint(value))
	}

	var rows []documentRow
	if err := query.Order("created_at ASC, doc_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("documents list: %w", err)
	}

	docs := make([]*store.Document, 0, len(rows))
	for i := range rows {
		doc, err := rowToDocument(&rows[i])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *Store) UpdateDocument(ctx context.Context, collection, id string, fields map[string]interface{}) (*store.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).Where("collection = ? AND doc_id = ?", collection, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("documents get: %w", err)
	}

	merged := make(map[string]interface{})
	if err := json.Unmarshal([]byte(row.Fields), &merged); err != nil {
		return nil, fmt.Errorf("documents decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		merged[k] = v
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("documents encode: %w", err)
	}

	row.Fields = string(encoded)
	row.UpdatedAt = time.Now().UTC()

	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("documents update: %w", err)
	}

	return rowToDocument(&row)
}

func rowToDocument(row *documentRow) (*store.Document, error) {
	fields := make(map[string]interface{})
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return nil, fmt.Errorf("documents decode %s/%s: %w", row.Collection, row.DocID, err)
	}

	return &store.Document{
		Collection: row.Collection,
		ID:         row.DocID,
		Fields:     fields,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
