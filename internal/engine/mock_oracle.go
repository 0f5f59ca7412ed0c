package engine

import (
	"context"
	"sync"

	"github.com/comexar/despacho/internal/oracle"
)

// MockOracle is a configurable Estimator and Selector for tests.
type MockOracle struct {
	EstimateFunc func(ctx context.Context, req oracle.EstimateRequest) (oracle.EstimateResponse, error)
	SelectFunc   func(ctx context.Context, req oracle.SelectRequest) (oracle.SelectResponse, error)

	mu            sync.Mutex
	estimateCalls []oracle.EstimateRequest
	selectCalls   []oracle.SelectRequest
}

// EstimateCode records the call and delegates to EstimateFunc.
func (m *MockOracle) EstimateCode(ctx context.Context, req oracle.EstimateRequest) (oracle.EstimateResponse, error) {
	m.mu.Lock()
	m.estimateCalls = append(m.estimateCalls, req)
	m.mu.Unlock()

	if m.EstimateFunc != nil {
		return m.EstimateFunc(ctx, req)
	}
	return oracle.EstimateResponse{}, nil
}

// SelectOption records the call and delegates to SelectFunc.
func (m *MockOracle) SelectOption(ctx context.Context, req oracle.SelectRequest) (oracle.SelectResponse, error) {
	m.mu.Lock()
	m.selectCalls = append(m.selectCalls, req)
	m.mu.Unlock()

	if m.SelectFunc != nil {
		return m.SelectFunc(ctx, req)
	}
	return oracle.SelectResponse{}, nil
}

// EstimateCalls returns a copy of the recorded estimate requests.
func (m *MockOracle) EstimateCalls() []oracle.EstimateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]oracle.EstimateRequest(nil), m.estimateCalls...)
}

// SelectCalls returns a copy of the recorded selection requests.
func (m *MockOracle) SelectCalls() []oracle.SelectRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]oracle.SelectRequest(nil), m.selectCalls...)
}
