package pdfsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
)

// Mock is an in-process renderer for tests and local runs without Gotenberg. It records what it renders.
type Mock struct {
	mu         sync.Mutex
	sessionErr error
	renderErr  error
	opened     int
	closed     int
	rendered   [][]byte
}

var _ report.Renderer = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{}
}

// Fail makes the next sessions fail to open (sessionErr) or to render (renderErr).
func (m *Mock) Fail(sessionErr, renderErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionErr = sessionErr
	m.renderErr = renderErr
}

func (m *Mock) NewSession(ctx context.Context) (report.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessionErr != nil {
		return nil, m.sessionErr
	}
	m.opened++
	return &mockSession{m: m}, nil
}

// OpenSessions counts sessions not closed yet.
func (m *Mock) OpenSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened - m.closed
}

// Sessions counts every session opened so far.
func (m *Mock) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Rendered returns a copy of every markup rendered so far.
func (m *Mock) Rendered() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.rendered))
	copy(out, m.rendered)
	return out
}

type mockSession struct {
	m      *Mock
	closed bool
}

func (s *mockSession) Render(ctx context.Context, html []byte) ([]byte, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.closed {
		return nil, errSessionClosed
	}
	if s.m.renderErr != nil {
		return nil, s.m.renderErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.m.rendered = append(s.m.rendered, html)
	return []byte(fmt.Sprintf("%%PDF-1.4\n%% mock %d bytes of html\n%%%%EOF\n", len(html))), nil
}

func (s *mockSession) Close() error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.closed = true
	s.m.closed++
	return nil
}
