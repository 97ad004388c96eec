package access

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/featureflags-backend/internal/domain"
	"github.com/heartmarshall/featureflags-backend/internal/policy"
)

var (
	_ Store[doc, docInput] = &storeMock[doc, docInput]{}
	_ resolver             = &resolverMock{}
	_ emitter              = &emitterMock{}
	_ txManager            = &txManagerMock{}
)

type storeMock[T, P any] struct {
	FindAllFunc        func(ctx context.Context) ([]T, error)
	FindOneFunc        func(ctx context.Context, id uuid.UUID) (T, error)
	InsertFunc         func(ctx context.Context, input P) (T, error)
	MergeAndUpdateFunc func(ctx context.Context, id uuid.UUID, patch P) (T, error)
	SoftDeleteFunc     func(ctx context.Context, id uuid.UUID) error

	mu    sync.RWMutex
	calls struct {
		FindAll        int
		FindOne        []uuid.UUID
		Insert         []P
		MergeAndUpdate []struct {
			ID    uuid.UUID
			Patch P
		}
		SoftDelete []uuid.UUID
	}
}

func (m *storeMock[T, P]) FindAll(ctx context.Context) ([]T, error) {
	if m.FindAllFunc == nil {
		panic("storeMock.FindAllFunc: method is nil but Store.FindAll was just called")
	}
	m.mu.Lock()
	m.calls.FindAll++
	m.mu.Unlock()
	return m.FindAllFunc(ctx)
}

func (m *storeMock[T, P]) FindOne(ctx context.Context, id uuid.UUID) (T, error) {
	if m.FindOneFunc == nil {
		panic("storeMock.FindOneFunc: method is nil but Store.FindOne was just called")
	}
	m.mu.Lock()
	m.calls.FindOne = append(m.calls.FindOne, id)
	m.mu.Unlock()
	return m.FindOneFunc(ctx, id)
}

func (m *storeMock[T, P]) Insert(ctx context.Context, input P) (T, error) {
	if m.InsertFunc == nil {
		panic("storeMock.InsertFunc: method is nil but Store.Insert was just called")
	}
	m.mu.Lock()
	m.calls.Insert = append(m.calls.Insert, input)
	m.mu.Unlock()
	return m.InsertFunc(ctx, input)
}

func (m *storeMock[T, P]) MergeAndUpdate(ctx context.Context, id uuid.UUID, patch P) (T, error) {
	if m.MergeAndUpdateFunc == nil {
		panic("storeMock.MergeAndUpdateFunc: method is nil but Store.MergeAndUpdate was just called")
	}
	m.mu.Lock()
	m.calls.MergeAndUpdate = append(m.calls.MergeAndUpdate, struct {
		ID    uuid.UUID
		Patch P
	}{id, patch})
	m.mu.Unlock()
	return m.MergeAndUpdateFunc(ctx, id, patch)
}

func (m *storeMock[T, P]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if m.SoftDeleteFunc == nil {
		panic("storeMock.SoftDeleteFunc: method is nil but Store.SoftDelete was just called")
	}
	m.mu.Lock()
	m.calls.SoftDelete = append(m.calls.SoftDelete, id)
	m.mu.Unlock()
	return m.SoftDeleteFunc(ctx, id)
}

// MutationCalls returns the number of Insert, MergeAndUpdate and SoftDelete calls.
func (m *storeMock[T, P]) MutationCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls.Insert) + len(m.calls.MergeAndUpdate) + len(m.calls.SoftDelete)
}

// ReadCalls returns the number of FindAll and FindOne calls.
func (m *storeMock[T, P]) ReadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls.FindAll + len(m.calls.FindOne)
}

func (m *storeMock[T, P]) InsertCalls() []P {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls.Insert
}

func (m *storeMock[T, P]) MergeAndUpdateCalls() []struct {
	ID    uuid.UUID
	Patch P
} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls.MergeAndUpdate
}

type resolverMock struct {
	ResolveFunc func(ctx context.Context, actor domain.Actor, isOwnerOrMember bool, action domain.ActivityType, resource string) (policy.Decision, error)

	mu    sync.RWMutex
	calls []struct {
		Actor           domain.Actor
		IsOwnerOrMember bool
		Action          domain.ActivityType
		Resource        string
	}
}

func (m *resolverMock) Resolve(ctx context.Context, actor domain.Actor, isOwnerOrMember bool, action domain.ActivityType, resource string) (policy.Decision, error) {
	if m.ResolveFunc == nil {
		panic("resolverMock.ResolveFunc: method is nil but resolver.Resolve was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, struct {
		Actor           domain.Actor
		IsOwnerOrMember bool
		Action          domain.ActivityType
		Resource        string
	}{actor, isOwnerOrMember, action, resource})
	m.mu.Unlock()
	return m.ResolveFunc(ctx, actor, isOwnerOrMember, action, resource)
}

func (m *resolverMock) ResolveCalls() []struct {
	Actor           domain.Actor
	IsOwnerOrMember bool
	Action          domain.ActivityType
	Resource        string
} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

type emitterMock struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (m *emitterMock) Emit(eventType domain.ActivityType, event domain.ActivityEvent) {
	event.Type = eventType
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

func (m *emitterMock) Events() []domain.ActivityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	mu    sync.Mutex
	count int
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	m.mu.Lock()
	m.count++
	m.mu.Unlock()
	return m.RunInTxFunc(ctx, fn)
}

func (m *txManagerMock) RunInTxCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
