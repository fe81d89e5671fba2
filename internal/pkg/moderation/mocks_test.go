package moderation

import (
	"context"
	"io"
	"time"

	"github.com/medihub/medihub/app/models"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notice Notice) error {
	args := m.Called(ctx, notice)
	return args.Error(0)
}

type MockDetailCache struct {
	mock.Mock
}

func (m *MockDetailCache) Get(ctx context.Context, reportID uint) (*ReportDetail, error) {
	args := m.Called(ctx, reportID)
	detail, _ := args.Get(0).(*ReportDetail)
	return detail, args.Error(1)
}

func (m *MockDetailCache) ReportGeneration(ctx context.Context, reportID uint) (int64, error) {
	args := m.Called(ctx, reportID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDetailCache) TargetGeneration(ctx context.Context, targetType models.TargetType, targetID uint) (int64, error) {
	args := m.Called(ctx, targetType, targetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDetailCache) Set(ctx context.Context, detail *ReportDetail, stamp CacheStamp) error {
	args := m.Called(ctx, detail, stamp)
	return args.Error(0)
}

func (m *MockDetailCache) InvalidateReport(ctx context.Context, reportID uint) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *MockDetailCache) InvalidateTarget(ctx context.Context, targetType models.TargetType, targetID uint) error {
	args := m.Called(ctx, targetType, targetID)
	return args.Error(0)
}

type MockEvidenceStore struct {
	mock.Mock
}

func (m *MockEvidenceStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockEvidenceStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockEvidenceStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
