package mocks

import (
	"context"

	"docgate/internal/model"
	"docgate/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) List(ctx context.Context, who model.Identity) ([]model.Document, error) {
	args := m.Called(ctx, who)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, who model.Identity, query string) ([]model.Document, error) {
	args := m.Called(ctx, who, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, who model.Identity, id string) (*model.Document, error) {
	args := m.Called(ctx, who, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, who model.Identity, in model.DocumentInput) (*model.Document, error) {
	args := m.Called(ctx, who, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, who model.Identity, id string, in model.DocumentInput) (*model.Document, error) {
	args := m.Called(ctx, who, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, who model.Identity, id string) error {
	args := m.Called(ctx, who, id)
	return args.Error(0)
}

func (m *MockDocumentService) Stats(ctx context.Context, who model.Identity) (*model.DocumentStats, error) {
	args := m.Called(ctx, who)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentStats), args.Error(1)
}
