package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/botc-tools/overlay-ebs/internal/grimoire"
)

// Memory is the dev/test store: maps behind one mutex.
type Memory struct {
	mu        sync.RWMutex
	keys      map[string]string // channelID -> secret key
	channels  map[string]string // secret key -> channelID
	grimoires map[string]json.RawMessage
	sessions  map[string]grimoire.Session
}

func NewMemory() *Memory {
	return &Memory{
		keys:      make(map[string]string),
		channels:  make(map[string]string),
		grimoires: make(map[string]json.RawMessage),
		sessions:  make(map[string]grimoire.Session),
	}
}

func (m *Memory) PutSecretKey(_ context.Context, channelID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.keys[channelID]; ok {
		delete(m.channels, old)
	}
	m.keys[channelID] = key
	m.channels[key] = channelID
	return nil
}

func (m *Memory) SecretKey(_ context.Context, channelID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.keys[channelID]
	return key, ok, nil
}

func (m *Memory) ChannelForKey(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channelID, ok := m.channels[key]
	return channelID, ok, nil
}

func (m *Memory) PutGrimoire(_ context.Context, channelID string, snapshot json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grimoires[channelID] = append(json.RawMessage(nil), snapshot...)
	return nil
}

func (m *Memory) Grimoire(_ context.Context, channelID string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.grimoires[channelID]
	return snap, ok, nil
}

func (m *Memory) PutSession(_ context.Context, channelID string, sess grimoire.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[channelID] = sess
	return nil
}

func (m *Memory) Session(_ context.Context, channelID string) (grimoire.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[channelID]
	return sess, ok, nil
}
