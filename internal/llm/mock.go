package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockReply is one scripted answer of a MockProvider.
type MockReply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockCall is a request seen by a MockProvider.
type MockCall struct {
	Purpose string
	Request Request
}

// MockProvider replays scripted replies. Replies queued for a purpose
// (see Script) are used first, then the shared queue. Content is checked
// against the request schema like a real provider would. An exhausted
// script reports ErrProviderUnavailable.
type MockProvider struct {
	mu        sync.Mutex
	shared    []MockReply
	byPurpose map[string][]MockReply
	calls     []MockCall
}

// NewMockProvider creates a MockProvider answering from replies in order.
func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{shared: replies, byPurpose: map[string][]MockReply{}}
}

// Script queues replies for calls tagged with purpose.
func (m *MockProvider) Script(purpose string, replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPurpose[purpose] = append(m.byPurpose[purpose], replies...)
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Purpose: purpose, Request: req})
	reply, ok := m.next(purpose)
	m.mu.Unlock()

	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	return finish(req, reply.Content, reply.Usage, "mock", StopEnd)
}

func (m *MockProvider) next(purpose string) (MockReply, bool) {
	if q := m.byPurpose[purpose]; len(q) > 0 {
		m.byPurpose[purpose] = q[1:]
		return q[0], true
	}
	if len(m.shared) > 0 {
		r := m.shared[0]
		m.shared = m.shared[1:]
		return r, true
	}
	return MockReply{}, false
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Vendor() string { return ProviderMock }

// Calls returns a copy of the requests seen so far.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
