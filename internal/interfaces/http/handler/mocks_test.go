package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stocksync/backend/internal/domain/integration"
	"github.com/stocksync/backend/internal/domain/stock"
)

// MockCatalogPlatform is a mock implementation of integration.CatalogPlatform
type MockCatalogPlatform struct {
	mock.Mock
}

func (m *MockCatalogPlatform) PlatformCode() integration.PlatformCode {
	args := m.Called()
	return args.Get(0).(integration.PlatformCode)
}

func (m *MockCatalogPlatform) FetchProductsBySKU(ctx context.Context, skus []string) ([]integration.RemoteProduct, error) {
	args := m.Called(ctx, skus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.RemoteProduct), args.Error(1)
}

func (m *MockCatalogPlatform) FetchOrders(ctx context.Context, cursor integration.Cursor, limit int) (*integration.OrderPage, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.OrderPage), args.Error(1)
}

func (m *MockCatalogPlatform) FetchOrder(ctx context.Context, remoteID string) (*integration.Order, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Order), args.Error(1)
}

func (m *MockCatalogPlatform) UpdateProduct(ctx context.Context, update integration.ProductUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockCatalogPlatform) ApplyUpdates(ctx context.Context, updates []integration.ProductUpdate) (*integration.UpdateResult, error) {
	args := m.Called(ctx, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.UpdateResult), args.Error(1)
}

func (m *MockCatalogPlatform) CancelOrder(ctx context.Context, remoteID string) error {
	args := m.Called(ctx, remoteID)
	return args.Error(0)
}

// MockSyncHistoryRepository is a mock implementation of stock.SyncHistoryRepository
type MockSyncHistoryRepository struct {
	mock.Mock
}

func (m *MockSyncHistoryRepository) RecordSync(ctx context.Context, summary *stock.SyncSummary, details []stock.SyncDetail) error {
	args := m.Called(ctx, summary, details)
	return args.Error(0)
}

func (m *MockSyncHistoryRepository) LatestSummary(ctx context.Context, siteUser string) (*stock.SyncSummary, error) {
	args := m.Called(ctx, siteUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.SyncSummary), args.Error(1)
}

func (m *MockSyncHistoryRepository) Details(ctx context.Context, summaryID uuid.UUID) ([]stock.SyncDetail, error) {
	args := m.Called(ctx, summaryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.SyncDetail), args.Error(1)
}

// MockWorkflowStepStore is a mock implementation of WorkflowStepStore
type MockWorkflowStepStore struct {
	mock.Mock
}

func (m *MockWorkflowStepStore) Steps(ctx context.Context) ([]stock.WorkflowStep, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.WorkflowStep), args.Error(1)
}

func (m *MockWorkflowStepStore) SetEnabled(ctx context.Context, key string, enabled bool) error {
	args := m.Called(ctx, key, enabled)
	return args.Error(0)
}

// MockWebsiteRepository is a mock implementation of integration.WebsiteRepository
type MockWebsiteRepository struct {
	mock.Mock
}

func (m *MockWebsiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Website, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Website), args.Error(1)
}

func (m *MockWebsiteRepository) FindBySiteUser(ctx context.Context, siteUser string) ([]integration.Website, error) {
	args := m.Called(ctx, siteUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Website), args.Error(1)
}
