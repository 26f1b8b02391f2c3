package mocks

import (
	"context"

	"docgate/internal/model"
	"docgate/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) Insert(ctx context.Context, doc model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

// Update runs fn against the document returned by the "Update" expectation's
// first value, mirroring how a real store hands over the locked record.
func (m *MockDocumentRepository) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*model.Document, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if err := args.Error(1); err != nil {
		return nil, err
	}
	next, err := fn(*args.Get(0).(*model.Document))
	if err != nil {
		return nil, err
	}
	return &next, nil
}

// Delete runs check against the document returned by the "Delete" expectation
// when one is provided.
func (m *MockDocumentRepository) Delete(ctx context.Context, id string, check repository.DeleteCheck) error {
	args := m.Called(ctx, id, check)
	if err := args.Error(1); err != nil {
		return err
	}
	if cur, ok := args.Get(0).(*model.Document); ok && cur != nil && check != nil {
		return check(*cur)
	}
	return nil
}

func (m *MockDocumentRepository) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
