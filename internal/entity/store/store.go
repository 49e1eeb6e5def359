// Package store implements the versioned entity store shared by secrets, keys and
// certificates.
//
// A Store[T] keeps every version of every name through a Repository[T]. Reads resolve
// the current version (the newest non-deleted one); writes that touch a whole name
// (create, delete, recover, purge, restore) run under a per-name lock and inside a
// transaction, so two operations on the same name never interleave while operations
// on different names never wait for each other.
//
// Records handed out by the store are deep copies. Callers may mutate them freely
// without affecting stored state.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchellh/copystructure"

	"github.com/allisson/keyvault-emulator/internal/database"
	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

// Page size bounds for list operations.
const (
	DefaultPageSize = 25
	MaxPageSize     = 25
)

type options struct {
	recoverableDays int
	clock           func() time.Time
	ids             domain.IDBuilder
}

// Option configures a Store.
type Option func(*options)

// WithRecoverableDays sets how long deleted entities stay recoverable.
func WithRecoverableDays(days int) Option {
	return func(o *options) {
		o.recoverableDays = days
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithIDBuilder sets the builder used to render record identifiers.
func WithIDBuilder(ids domain.IDBuilder) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// Store is the versioned entity store for one entity kind.
type Store[T any] struct {
	kind      domain.Kind
	repo      Repository[T]
	txManager database.TxManager
	codec     CursorCodec
	locks     *keyedMutex
	opts      options
}

// New creates a Store for kind backed by repo.
func New[T any](
	kind domain.Kind,
	repo Repository[T],
	txManager database.TxManager,
	codec CursorCodec,
	opts ...Option,
) *Store[T] {
	o := options{
		recoverableDays: domain.DefaultRecoverableDays,
		clock:           time.Now,
		ids:             domain.NewIDBuilder("https://localhost:8443"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T]{
		kind:      kind,
		repo:      repo,
		txManager: txManager,
		codec:     codec,
		locks:     newKeyedMutex(),
		opts:      o,
	}
}

// Kind returns the entity kind served by the store.
func (s *Store[T]) Kind() domain.Kind {
	return s.kind
}

// IDs returns the identifier builder used for records of this store.
func (s *Store[T]) IDs() domain.IDBuilder {
	return s.opts.ids
}

// Create stores payload as a new current version of name under a fresh version token.
// Guards run against the current version while the name is locked.
func (s *Store[T]) Create(
	ctx context.Context,
	name string,
	payload T,
	attrs *domain.AttributesPatch,
	tags domain.Tags,
	guards ...domain.Guard[T],
) (*domain.Record[T], error) {
	return s.CreateVersion(ctx, name, domain.NewVersion(), payload, attrs, tags, guards...)
}

// CreateVersion is Create with a caller-chosen version token. It fails with a
// conflict when name is deleted but not purged or the version is already taken.
func (s *Store[T]) CreateVersion(
	ctx context.Context,
	name, version string,
	payload T,
	attrs *domain.AttributesPatch,
	tags domain.Tags,
	guards ...domain.Guard[T],
) (*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if err := domain.ValidateVersion(version); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	now := s.opts.clock()
	record, err := s.clone(&domain.Record[T]{
		Name:       name,
		Version:    version,
		Attributes: domain.NewAttributes(now, attrs, s.opts.recoverableDays),
		Tags:       tags.Clone(),
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return err
		}
		for _, v := range versions {
			if v.Deleted {
				return domain.ErrEntityDeleted
			}
			if v.Version == version {
				return domain.ErrVersionExists
			}
		}
		current := latest(versions, false)
		for _, guard := range guards {
			if err := guard(current); err != nil {
				return err
			}
		}
		return s.repo.Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return s.clone(record)
}

// Get returns the current version of name.
func (s *Store[T]) Get(ctx context.Context, name string) (*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}

	current := latest(versions, false)
	if current == nil {
		return nil, domain.ErrEntityNotFound
	}

	return s.clone(current)
}

// GetVersion returns an exact version, current or not. Versions of a deleted name
// are not visible.
func (s *Store[T]) GetVersion(ctx context.Context, name, version string) (*domain.Record[T], error) {
	if version == "" {
		return s.Get(ctx, name)
	}
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	record, err := s.repo.GetByNameAndVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if record.Deleted {
		return nil, domain.ErrEntityNotFound
	}

	return s.clone(record)
}

// Update applies patch to the attributes and tags of one version. An empty version
// targets the current one. The payload is never touched.
func (s *Store[T]) Update(
	ctx context.Context,
	name, version string,
	patch domain.Patch,
) (*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	var record *domain.Record[T]
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if version == "" {
			versions, err := s.repo.ListByName(ctx, name)
			if err != nil {
				return err
			}
			record = latest(versions, false)
		} else {
			record, err = s.repo.GetByNameAndVersion(ctx, name, version)
			if err != nil {
				return err
			}
		}
		if record == nil || record.Deleted {
			return domain.ErrEntityNotFound
		}

		if patch.Attributes != nil {
			record.Attributes.Apply(*patch.Attributes)
		}
		if patch.Tags != nil {
			record.Tags = patch.Tags.Clone()
		}
		record.Attributes.Updated = s.opts.clock().Unix()

		return s.repo.Update(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return s.clone(record)
}

// ListCurrent pages over distinct active names, returning the current version of each.
// Names are ordered by first insertion.
func (s *Store[T]) ListCurrent(ctx context.Context, cursor string, take int) (*domain.Page[T], error) {
	return s.listNames(ctx, false, cursor, take)
}

// ListDeleted pages over deleted, not yet purged names.
func (s *Store[T]) ListDeleted(ctx context.Context, cursor string, take int) (*domain.Page[T], error) {
	return s.listNames(ctx, true, cursor, take)
}

// ListVersions pages over the non-deleted versions of name from oldest to newest.
func (s *Store[T]) ListVersions(
	ctx context.Context,
	name, cursor string,
	take int,
) (*domain.Page[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}

	active := make([]*domain.Record[T], 0, len(versions))
	for _, v := range versions {
		if !v.Deleted {
			active = append(active, v)
		}
	}

	start, end, next := s.window(len(active), cursor, take)
	page := &domain.Page[T]{Items: make([]*domain.Record[T], 0, end-start), NextCursor: next}
	for _, v := range active[start:end] {
		record, err := s.clone(v)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, record)
	}

	return page, nil
}

// Delete soft-deletes every version of name.
func (s *Store[T]) Delete(ctx context.Context, name string) (*domain.DeletedRecord[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	var current *domain.Record[T]
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return err
		}
		current = latest(versions, false)
		if current == nil {
			return domain.ErrEntityNotFound
		}

		days := current.Attributes.RecoverableDays
		if days <= 0 {
			days = s.opts.recoverableDays
		}
		now := s.opts.clock()
		current.Deleted = true
		current.DeletedDate = now.Unix()
		current.ScheduledPurgeDate = now.AddDate(0, 0, days).Unix()

		return s.repo.MarkDeleted(ctx, name, current.DeletedDate, current.ScheduledPurgeDate)
	})
	if err != nil {
		return nil, err
	}

	return s.deletedRecord(current)
}

// GetDeleted returns the deleted view of name.
func (s *Store[T]) GetDeleted(ctx context.Context, name string) (*domain.DeletedRecord[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if !allDeleted(versions) {
		return nil, domain.ErrDeletedEntityNotFound
	}

	return s.deletedRecord(latest(versions, true))
}

// Recover clears the deleted flag on every version of name and returns the
// restored current version.
func (s *Store[T]) Recover(ctx context.Context, name string) (*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	var current *domain.Record[T]
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return err
		}
		if !allDeleted(versions) {
			return domain.ErrDeletedEntityNotFound
		}
		if err := s.repo.ClearDeleted(ctx, name); err != nil {
			return err
		}

		current = latest(versions, true)
		current.Deleted = false
		current.DeletedDate = 0
		current.ScheduledPurgeDate = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.clone(current)
}

// Purge permanently removes a deleted name. The name may be reused afterwards.
func (s *Store[T]) Purge(ctx context.Context, name string) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	return s.txManager.WithTx(ctx, func(ctx context.Context) error {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return err
		}
		if !allDeleted(versions) {
			return domain.ErrDeletedEntityNotFound
		}
		return s.repo.DeleteByName(ctx, name)
	})
}

// Remove physically removes one version regardless of its state. It backs
// compensating rollbacks and is not part of the client-facing lifecycle.
func (s *Store[T]) Remove(ctx context.Context, name, version string) error {
	unlock := s.locks.Lock(name)
	defer unlock()

	return s.repo.DeleteVersion(ctx, name, version)
}

// Versions returns every version of an active name, oldest first. Backups use it to
// capture the whole history of a name.
func (s *Store[T]) Versions(ctx context.Context, name string) ([]*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if latest(versions, false) == nil {
		return nil, domain.ErrEntityNotFound
	}

	out := make([]*domain.Record[T], 0, len(versions))
	for _, v := range versions {
		if v.Deleted {
			continue
		}
		record, err := s.clone(v)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Restore inserts records as the complete history of a name that must not exist in
// any state. Records keep their versions, attributes and payloads; deletion markers
// are cleared. It returns the current version after the restore.
func (s *Store[T]) Restore(
	ctx context.Context,
	name string,
	records []*domain.Record[T],
) (*domain.Record[T], error) {
	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrEntityNotFound
	}

	unlock := s.locks.Lock(name)
	defer unlock()

	inserted := make([]*domain.Record[T], 0, len(records))
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return err
		}
		if len(versions) > 0 {
			return domain.ErrEntityExists
		}

		now := s.opts.clock().Unix()
		for _, r := range records {
			if err := domain.ValidateVersion(r.Version); err != nil {
				return err
			}
			record, err := s.clone(r)
			if err != nil {
				return err
			}
			record.Name = name
			record.Deleted = false
			record.DeletedDate = 0
			record.ScheduledPurgeDate = 0
			record.Attributes.Updated = now
			if err := s.repo.Insert(ctx, record); err != nil {
				return err
			}
			inserted = append(inserted, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.clone(latest(inserted, false))
}

func (s *Store[T]) listNames(
	ctx context.Context,
	deleted bool,
	cursor string,
	take int,
) (*domain.Page[T], error) {
	names, err := s.repo.ListNames(ctx, deleted)
	if err != nil {
		return nil, err
	}

	start, end, next := s.window(len(names), cursor, take)
	page := &domain.Page[T]{Items: make([]*domain.Record[T], 0, end-start), NextCursor: next}
	for _, name := range names[start:end] {
		versions, err := s.repo.ListByName(ctx, name)
		if err != nil {
			return nil, err
		}
		current := latest(versions, deleted)
		if current == nil {
			continue
		}
		record, err := s.clone(current)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, record)
	}

	return page, nil
}

// window resolves the cursor into a [start, end) slice of total items and the
// cursor of the following page, empty when the slice reaches the end.
func (s *Store[T]) window(total int, cursor string, take int) (int, int, string) {
	if take <= 0 || take > MaxPageSize {
		take = DefaultPageSize
	}

	start := s.codec.Decode(cursor)
	if start > total {
		start = total
	}
	end := min(start+take, total)

	next := ""
	if end < total {
		next = s.codec.Encode(end)
	}
	return start, end, next
}

func (s *Store[T]) deletedRecord(record *domain.Record[T]) (*domain.DeletedRecord[T], error) {
	out, err := s.clone(record)
	if err != nil {
		return nil, err
	}
	return &domain.DeletedRecord[T]{
		Record:             out,
		RecoveryID:         s.opts.ids.RecoveryID(s.kind, out.Name),
		DeletedDate:        out.DeletedDate,
		ScheduledPurgeDate: out.ScheduledPurgeDate,
	}, nil
}

func (s *Store[T]) clone(record *domain.Record[T]) (*domain.Record[T], error) {
	copied, err := copystructure.Copy(record)
	if err != nil {
		return nil, fmt.Errorf("failed to copy %s record: %w", s.kind, err)
	}
	out := copied.(*domain.Record[T])
	out.ID = s.opts.ids.ID(s.kind, out.Name, out.Version)
	return out, nil
}

// latest returns the newest version in the requested deleted state, or nil.
func latest[T any](versions []*domain.Record[T], deleted bool) *domain.Record[T] {
	var current *domain.Record[T]
	for _, v := range versions {
		if v.Deleted != deleted {
			continue
		}
		if current == nil || v.NewerThan(current) {
			current = v
		}
	}
	return current
}

func allDeleted[T any](versions []*domain.Record[T]) bool {
	if len(versions) == 0 {
		return false
	}
	for _, v := range versions {
		if !v.Deleted {
			return false
		}
	}
	return true
}
