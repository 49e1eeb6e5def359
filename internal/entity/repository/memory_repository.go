// Package repository implements persistence for versioned vault entities and for the
// single-version documents (certificate policies, issuers, contacts) that hang off them.
//
// Three backends are provided: an in-memory map (the default for the emulator),
// PostgreSQL and MySQL. The SQL backends store payloads as JSON and take part in
// transactions through database.GetTx().
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

// MemoryRepository keeps entity versions in process memory.
type MemoryRepository[T any] struct {
	mu       sync.RWMutex
	versions map[string][]*domain.Record[T]
	sequence int64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{versions: make(map[string][]*domain.Record[T])}
}

// ListByName returns copies of every version of name ordered by sequence.
func (m *MemoryRepository[T]) ListByName(_ context.Context, name string) ([]*domain.Record[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.versions[name]
	out := make([]*domain.Record[T], 0, len(stored))
	for _, r := range stored {
		out = append(out, copyRecord(r))
	}
	return out, nil
}

// GetByNameAndVersion returns a copy of one version.
func (m *MemoryRepository[T]) GetByNameAndVersion(
	_ context.Context,
	name, version string,
) (*domain.Record[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.versions[name] {
		if r.Version == version {
			return copyRecord(r), nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

// Insert appends a version and assigns the next sequence number to record.
func (m *MemoryRepository[T]) Insert(_ context.Context, record *domain.Record[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.versions[record.Name] {
		if r.Version == record.Version {
			return domain.ErrVersionExists
		}
	}

	m.sequence++
	record.Sequence = m.sequence
	m.versions[record.Name] = append(m.versions[record.Name], copyRecord(record))
	return nil
}

// Update replaces the attributes and tags of an existing version.
func (m *MemoryRepository[T]) Update(_ context.Context, record *domain.Record[T]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.versions[record.Name] {
		if r.Version == record.Version {
			r.Attributes = record.Attributes
			r.Tags = record.Tags.Clone()
			return nil
		}
	}
	return domain.ErrEntityNotFound
}

// MarkDeleted flags every version of name as deleted.
func (m *MemoryRepository[T]) MarkDeleted(
	_ context.Context,
	name string,
	deletedDate, scheduledPurgeDate int64,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.versions[name] {
		r.Deleted = true
		r.DeletedDate = deletedDate
		r.ScheduledPurgeDate = scheduledPurgeDate
	}
	return nil
}

// ClearDeleted clears the deleted flag on every version of name.
func (m *MemoryRepository[T]) ClearDeleted(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.versions[name] {
		r.Deleted = false
		r.DeletedDate = 0
		r.ScheduledPurgeDate = 0
	}
	return nil
}

// DeleteByName drops every version of name.
func (m *MemoryRepository[T]) DeleteByName(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.versions, name)
	return nil
}

// DeleteVersion drops a single version.
func (m *MemoryRepository[T]) DeleteVersion(_ context.Context, name, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.versions[name]
	for i, r := range stored {
		if r.Version == version {
			stored = append(stored[:i:i], stored[i+1:]...)
			break
		}
	}
	if len(stored) == 0 {
		delete(m.versions, name)
		return nil
	}
	m.versions[name] = stored
	return nil
}

// ListNames returns the names whose versions match the deleted state, ordered by the
// sequence of their first version.
func (m *MemoryRepository[T]) ListNames(_ context.Context, deleted bool) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type entry struct {
		name  string
		first int64
	}
	entries := make([]entry, 0, len(m.versions))
	for name, versions := range m.versions {
		if len(versions) == 0 {
			continue
		}
		matches := false
		for _, r := range versions {
			if r.Deleted == deleted {
				matches = true
				break
			}
		}
		if matches {
			entries = append(entries, entry{name: name, first: versions[0].Sequence})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].first < entries[j].first })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

// copyRecord copies the mutable parts of a record. Payloads are immutable and shared.
func copyRecord[T any](r *domain.Record[T]) *domain.Record[T] {
	c := *r
	c.Tags = r.Tags.Clone()
	if r.Attributes.NotBefore != nil {
		c.Attributes.NotBefore = domain.Int64Ptr(*r.Attributes.NotBefore)
	}
	if r.Attributes.Expires != nil {
		c.Attributes.Expires = domain.Int64Ptr(*r.Attributes.Expires)
	}
	return &c
}
