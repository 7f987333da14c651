package domain

import (
	"sync"
	"time"
)

type StreamManager struct {
	mu        sync.RWMutex
	sessions  map[string]*StreamSession
	stats     StreamStats
	startTime time.Time
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		sessions:  make(map[string]*StreamSession),
		startTime: time.Now(),
	}
}

func (sm *StreamManager) Register(session *StreamSession) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[session.ID]; exists {
		return
	}
	sm.sessions[session.ID] = session
	sm.stats.ActiveSessions = len(sm.sessions)
	sm.stats.TotalSessions++
}

func (sm *StreamManager) Unregister(sessionID string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return false
	}
	delete(sm.sessions, sessionID)
	sm.stats.ActiveSessions = len(sm.sessions)
	return true
}

func (sm *StreamManager) GetSession(sessionID string) (*StreamSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	return session, exists
}

func (sm *StreamManager) ActiveSessions() []*StreamSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sessions := make([]*StreamSession, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (sm *StreamManager) SessionsForUser(name string) []*StreamSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var sessions []*StreamSession
	for _, session := range sm.sessions {
		if session.Name == name {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// CloseAll closes every registered session and returns how many it closed.
// Sessions unregister themselves once their Run loop returns.
func (sm *StreamManager) CloseAll() int {
	closed := 0
	for _, session := range sm.ActiveSessions() {
		if session.Close() {
			closed++
		}
	}
	return closed
}

func (sm *StreamManager) GetStats() StreamStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	stats := sm.stats
	stats.Uptime = time.Since(sm.startTime).Round(time.Second).String()
	return stats
}
