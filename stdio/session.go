package stdio

import (
	"sync"

	"github.com/ggoodman/mcp-toolkit-go/sessions"
)

type session struct {
	id     string
	userID string

	mu              sync.RWMutex
	protocolVersion string
	client          sessions.ClientInfo
}

func (s *session) SessionID() string { return s.id }
func (s *session) UserID() string    { return s.userID }

func (s *session) ProtocolVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocolVersion
}

func (s *session) ClientInfo() sessions.ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

func (s *session) negotiated(version string, client sessions.ClientInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolVersion = version
	s.client = client
}

var _ sessions.Session = (*session)(nil)
