package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
	apperrors "github.com/allisson/keyvault-emulator/internal/errors"
)

// MemoryDocumentRepository keeps single-version documents keyed by name.
type MemoryDocumentRepository[T any] struct {
	mu   sync.RWMutex
	docs map[string]*T
}

// NewMemoryDocumentRepository creates an empty document repository.
func NewMemoryDocumentRepository[T any]() *MemoryDocumentRepository[T] {
	return &MemoryDocumentRepository[T]{docs: make(map[string]*T)}
}

// Get returns a copy of the document stored under name.
func (m *MemoryDocumentRepository[T]) Get(_ context.Context, name string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[name]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return copyDocument(doc)
}

// Put stores a copy of doc under name, replacing any previous document.
func (m *MemoryDocumentRepository[T]) Put(_ context.Context, name string, doc *T) error {
	copied, err := copyDocument(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[name] = copied
	return nil
}

// Delete removes the document stored under name.
func (m *MemoryDocumentRepository[T]) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[name]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(m.docs, name)
	return nil
}

// List returns copies of every document ordered by name.
func (m *MemoryDocumentRepository[T]) List(_ context.Context) ([]*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*T, 0, len(names))
	for _, name := range names {
		doc, err := copyDocument(m.docs[name])
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func copyDocument[T any](doc *T) (*T, error) {
	copied, err := copystructure.Copy(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to copy document: %w", err)
	}
	return copied.(*T), nil
}

// SQLDocumentRepository persists documents of one kind in the vault_documents table.
// The upsert statement is the only part that differs between PostgreSQL and MySQL.
type SQLDocumentRepository[T any] struct {
	db          *sql.DB
	kind        string
	placeholder func(n int) string
	upsert      string
}

// Get returns the document stored under name.
func (s *SQLDocumentRepository[T]) Get(ctx context.Context, name string) (*T, error) {
	querier := database.GetTx(ctx, s.db)

	query := fmt.Sprintf(
		`SELECT body FROM vault_documents WHERE kind = %s AND name = %s`,
		s.placeholder(1),
		s.placeholder(2),
	)

	var body []byte
	if err := querier.QueryRowContext(ctx, query, s.kind, name).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get document")
	}

	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode document")
	}
	return &doc, nil
}

// Put inserts or replaces the document stored under name.
func (s *SQLDocumentRepository[T]) Put(ctx context.Context, name string, doc *T) error {
	querier := database.GetTx(ctx, s.db)

	body, err := json.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode document")
	}

	if _, err := querier.ExecContext(ctx, s.upsert, s.kind, name, body, time.Now().UTC()); err != nil {
		return apperrors.Wrap(err, "failed to store document")
	}
	return nil
}

// Delete removes the document stored under name.
func (s *SQLDocumentRepository[T]) Delete(ctx context.Context, name string) error {
	querier := database.GetTx(ctx, s.db)

	query := fmt.Sprintf(
		`DELETE FROM vault_documents WHERE kind = %s AND name = %s`,
		s.placeholder(1),
		s.placeholder(2),
	)

	result, err := querier.ExecContext(ctx, query, s.kind, name)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete document")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// List returns every document of the kind ordered by name.
func (s *SQLDocumentRepository[T]) List(ctx context.Context) ([]*T, error) {
	querier := database.GetTx(ctx, s.db)

	query := fmt.Sprintf(`SELECT body FROM vault_documents WHERE kind = %s ORDER BY name`, s.placeholder(1))

	rows, err := querier.QueryContext(ctx, query, s.kind)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list documents")
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*T
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan document")
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, apperrors.Wrap(err, "failed to decode document")
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate documents")
	}
	return docs, nil
}

// NewPostgreSQLDocumentRepository creates a PostgreSQL document repository for kind.
func NewPostgreSQLDocumentRepository[T any](db *sql.DB, kind string) *SQLDocumentRepository[T] {
	return &SQLDocumentRepository[T]{
		db:          db,
		kind:        kind,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		upsert: `INSERT INTO vault_documents (kind, name, body, updated_at) VALUES ($1, $2, $3, $4)
				 ON CONFLICT (kind, name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	}
}

// NewMySQLDocumentRepository creates a MySQL document repository for kind.
func NewMySQLDocumentRepository[T any](db *sql.DB, kind string) *SQLDocumentRepository[T] {
	return &SQLDocumentRepository[T]{
		db:          db,
		kind:        kind,
		placeholder: func(int) string { return "?" },
		upsert: `INSERT INTO vault_documents (kind, name, body, updated_at) VALUES (?, ?, ?, ?)
				 ON DUPLICATE KEY UPDATE body = VALUES(body), updated_at = VALUES(updated_at)`,
	}
}
