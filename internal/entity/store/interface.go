package store

import (
	"context"

	"github.com/allisson/keyvault-emulator/internal/entity/domain"
)

// Repository is the persistence collaborator behind a Store. Implementations only
// provide keyed primitives; the Store owns lifecycle rules and locking.
type Repository[T any] interface {
	// ListByName returns every version of name, deleted or not, ordered by sequence.
	ListByName(ctx context.Context, name string) ([]*domain.Record[T], error)

	// GetByNameAndVersion returns one version or domain.ErrEntityNotFound.
	GetByNameAndVersion(ctx context.Context, name, version string) (*domain.Record[T], error)

	// Insert stores a new version and assigns its Sequence.
	Insert(ctx context.Context, record *domain.Record[T]) error

	// Update overwrites the mutable fields (attributes, tags) of an existing version.
	Update(ctx context.Context, record *domain.Record[T]) error

	// MarkDeleted flags every version of name as deleted.
	MarkDeleted(ctx context.Context, name string, deletedDate, scheduledPurgeDate int64) error

	// ClearDeleted clears the deleted flag on every version of name.
	ClearDeleted(ctx context.Context, name string) error

	// DeleteByName physically removes every version of name.
	DeleteByName(ctx context.Context, name string) error

	// DeleteVersion physically removes a single version.
	DeleteVersion(ctx context.Context, name, version string) error

	// ListNames returns the distinct names whose versions are in the requested deleted
	// state, ordered by the sequence of each name's first version.
	ListNames(ctx context.Context, deleted bool) ([]string, error)
}

// CursorCodec turns list offsets into opaque continuation tokens.
type CursorCodec interface {
	Encode(skip int) string
	Decode(token string) int
}
