package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/service/access"
)

var _ segmentService = &segmentServiceMock{}

type segmentServiceMock struct {
	ListSegmentsFunc  func(ctx context.Context) (domain.SearchResult[access.Record], error)
	GetSegmentFunc    func(ctx context.Context, id uuid.UUID) (access.Record, error)
	CreateSegmentFunc func(ctx context.Context, input domain.SegmentPatch) (access.Record, error)
	UpdateSegmentFunc func(ctx context.Context, id uuid.UUID, patch domain.SegmentPatch) (access.Record, error)
	RemoveSegmentFunc func(ctx context.Context, id uuid.UUID) (bool, error)

	mu    sync.RWMutex
	calls struct {
		CreateSegment []domain.SegmentPatch
		UpdateSegment []struct {
			ID    uuid.UUID
			Patch domain.SegmentPatch
		}
	}
}

func (m *segmentServiceMock) ListSegments(ctx context.Context) (domain.SearchResult[access.Record], error) {
	if m.ListSegmentsFunc == nil {
		panic("segmentServiceMock.ListSegmentsFunc: method is nil but segmentService.ListSegments was just called")
	}
	return m.ListSegmentsFunc(ctx)
}

func (m *segmentServiceMock) GetSegment(ctx context.Context, id uuid.UUID) (access.Record, error) {
	if m.GetSegmentFunc == nil {
		panic("segmentServiceMock.GetSegmentFunc: method is nil but segmentService.GetSegment was just called")
	}
	return m.GetSegmentFunc(ctx, id)
}

func (m *segmentServiceMock) CreateSegment(ctx context.Context, input domain.SegmentPatch) (access.Record, error) {
	if m.CreateSegmentFunc == nil {
		panic("segmentServiceMock.CreateSegmentFunc: method is nil but segmentService.CreateSegment was just called")
	}
	m.mu.Lock()
	m.calls.CreateSegment = append(m.calls.CreateSegment, input)
	m.mu.Unlock()
	return m.CreateSegmentFunc(ctx, input)
}

func (m *segmentServiceMock) UpdateSegment(ctx context.Context, id uuid.UUID, patch domain.SegmentPatch) (access.Record, error) {
	if m.UpdateSegmentFunc == nil {
		panic("segmentServiceMock.UpdateSegmentFunc: method is nil but segmentService.UpdateSegment was just called")
	}
	m.mu.Lock()
	m.calls.UpdateSegment = append(m.calls.UpdateSegment, struct {
		ID    uuid.UUID
		Patch domain.SegmentPatch
	}{id, patch})
	m.mu.Unlock()
	return m.UpdateSegmentFunc(ctx, id, patch)
}

func (m *segmentServiceMock) RemoveSegment(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.RemoveSegmentFunc == nil {
		panic("segmentServiceMock.RemoveSegmentFunc: method is nil but segmentService.RemoveSegment was just called")
	}
	return m.RemoveSegmentFunc(ctx, id)
}

func (m *segmentServiceMock) CreateSegmentCalls() []domain.SegmentPatch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls.CreateSegment
}

func (m *segmentServiceMock) UpdateSegmentCalls() []struct {
	ID    uuid.UUID
	Patch domain.SegmentPatch
} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls.UpdateSegment
}
