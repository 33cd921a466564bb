package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
)

// --- Mock implementations ---

type mockStore struct {
	mu     sync.Mutex
	creds  map[string]model.Credential
	putErr error
	getErr error
	puts   int
}

func newMockStore() *mockStore {
	return &mockStore{creds: make(map[string]model.Credential)}
}

func (m *mockStore) Put(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.creds[cred.Service] = cred
	return nil
}

func (m *mockStore) Get(_ context.Context, service string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	cred, ok := m.creds[service]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *mockStore) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []string
	for k := range m.creds {
		out = append(out, k)
	}
	return out, nil
}

type mockRunner struct {
	mu     sync.Mutex
	counts model.MeasurementCounts
	err    error
	runs   int
	shots  int
}

func (m *mockRunner) Name() string { return "mock" }

func (m *mockRunner) Run(_ context.Context, _ model.Circuit, shots int) (model.MeasurementCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.shots = shots
	return m.counts, m.err
}

func (m *mockRunner) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}
