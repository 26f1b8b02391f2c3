package memory

import (
	"context"
	"sync"

	"docgate/internal/model"
	"docgate/internal/repository"
)

// DocumentMemory is an in-process implementation of repository.DocumentRepository.
// Readers share a read lock; every mutation holds the write lock for its whole
// read-check-write cycle. Records are copied on the way in and out.
type DocumentMemory struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]model.Document
}

// NewDocumentMemory creates an empty store.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{byID: make(map[string]model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// Insert stores doc unless its id is already taken.
func (r *DocumentMemory) Insert(ctx context.Context, doc model.Document) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[doc.ID]; exists {
		return nil, repository.ErrDuplicateID
	}
	stored := doc.Clone()
	r.byID[doc.ID] = stored
	r.order = append(r.order, doc.ID)

	out := stored.Clone()
	return &out, nil
}

// FindByID returns a copy of the document with the given id.
func (r *DocumentMemory) FindByID(ctx context.Context, id string) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := d.Clone()
	return &out, nil
}

// List returns copies of all documents in insertion order.
func (r *DocumentMemory) List(ctx context.Context) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Document, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, r.byID[id].Clone())
	}
	return items, nil
}

// Update applies fn to the stored document under the write lock.
func (r *DocumentMemory) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}
	next.ID = id
	stored := next.Clone()
	r.byID[id] = stored

	out := stored.Clone()
	return &out, nil
}

// Delete removes the document after check approves it, under the write lock.
func (r *DocumentMemory) Delete(ctx context.Context, id string, check repository.DeleteCheck) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if check != nil {
		if err := check(current.Clone()); err != nil {
			return err
		}
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// PingContext always succeeds; the store lives in process memory.
func (r *DocumentMemory) PingContext(ctx context.Context) error {
	return ctx.Err()
}
