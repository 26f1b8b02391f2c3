package repository

import (
	"context"

	"docgate/internal/model"
)

// UpdateFunc receives the stored record and returns its replacement.
// Returning an error aborts the update and leaves the record unchanged.
type UpdateFunc func(current model.Document) (model.Document, error)

// DeleteCheck receives the stored record before removal.
// Returning an error aborts the delete.
type DeleteCheck func(current model.Document) error

// DocumentRepository defines data access for documents. No business logic here:
// authorization is supplied by the caller through the callbacks, which run while
// the record is locked so check and write can't interleave with another writer.
type DocumentRepository interface {
	// Insert stores a new document. It returns ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, doc model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns every document in insertion (creation) order.
	List(ctx context.Context) ([]model.Document, error)

	// Update replaces the document with the value returned by fn.
	// It returns ErrNotFound if there is no such document.
	Update(ctx context.Context, id string, fn UpdateFunc) (*model.Document, error)

	// Delete removes the document once check approves it.
	// It returns ErrNotFound if there is no such document.
	Delete(ctx context.Context, id string, check DeleteCheck) error

	// PingContext reports whether the backing store is reachable.
	PingContext(ctx context.Context) error
}
