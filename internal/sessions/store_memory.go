package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. A map-level lock guards membership
// while each session carries its own lock, so appends to different
// sessions never contend.
type MemoryStore struct {
	now func() time.Time
	ttl time.Duration

	mu       sync.RWMutex
	sessions map[string]*memorySession
}

type memorySession struct {
	mu      sync.Mutex
	deleted bool
	data    Session
}

// NewMemoryStore creates an empty in-memory session store. Sessions
// older than ttl are evicted on access; a ttl of zero disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
	}
}

// Put creates or wholesale-replaces the session.
func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	copied := cloneSession(s)
	if copied.Conversation == nil {
		copied.Conversation = []ConversationEntry{}
	}

	m.mu.Lock()
	prev := m.sessions[s.ID]
	m.sessions[s.ID] = &memorySession{data: *copied}
	m.mu.Unlock()

	// In-flight appends against the replaced state must fail rather than
	// land invisibly.
	if prev != nil {
		prev.mu.Lock()
		prev.deleted = true
		prev.mu.Unlock()
	}
	return nil
}

// Get returns a snapshot of the session.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	entry := m.sessions[id]
	m.mu.RUnlock()
	if entry == nil {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		return nil, ErrNotFound
	}
	if m.expired(&entry.data) {
		entry.deleted = true
		entry.mu.Unlock()
		m.evict(id, entry)
		return nil, ErrNotFound
	}
	snapshot := cloneSession(&entry.data)
	entry.mu.Unlock()
	return snapshot, nil
}

// AppendConversation assigns the next sequence number and appends the
// exchange under the session lock.
func (m *MemoryStore) AppendConversation(ctx context.Context, id, question, answer string) (ConversationEntry, error) {
	if err := ctx.Err(); err != nil {
		return ConversationEntry{}, err
	}

	m.mu.RLock()
	entry := m.sessions[id]
	m.mu.RUnlock()
	if entry == nil {
		return ConversationEntry{}, ErrNotFound
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		// Reset won the race; the session must not be resurrected.
		return ConversationEntry{}, ErrNotFound
	}
	if m.expired(&entry.data) {
		entry.deleted = true
		entry.mu.Unlock()
		m.evict(id, entry)
		return ConversationEntry{}, ErrNotFound
	}

	ce := ConversationEntry{
		Sequence: len(entry.data.Conversation) + 1,
		Question: question,
		Answer:   answer,
		AskedAt:  m.now(),
	}
	entry.data.Conversation = append(entry.data.Conversation, ce)
	entry.mu.Unlock()
	return ce, nil
}

// Reset removes the session. Removal is total: entries racing in through
// AppendConversation observe the deleted flag and fail.
func (m *MemoryStore) Reset(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	entry := m.sessions[id]
	if entry == nil {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	entry.mu.Lock()
	wasGone := entry.deleted || m.expired(&entry.data)
	entry.deleted = true
	entry.mu.Unlock()
	if wasGone {
		return ErrNotFound
	}
	return nil
}

// expired reports whether the session has outlived the store's TTL.
// Sessions without a creation time never expire.
func (m *MemoryStore) expired(s *Session) bool {
	if m.ttl <= 0 || s.CreatedAt.IsZero() {
		return false
	}
	return m.now().Sub(s.CreatedAt) > m.ttl
}

// evict removes an expired entry from the map, unless a newer session
// has already taken its ID.
func (m *MemoryStore) evict(id string, entry *memorySession) {
	m.mu.Lock()
	if m.sessions[id] == entry {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
}

func cloneSession(s *Session) *Session {
	copied := *s
	copied.Conversation = append([]ConversationEntry(nil), s.Conversation...)
	copied.Analysis.KeyPoints = append([]string(nil), s.Analysis.KeyPoints...)
	copied.Analysis.Deadlines = append([]Deadline(nil), s.Analysis.Deadlines...)
	copied.Analysis.Obligations = append([]string(nil), s.Analysis.Obligations...)
	copied.Analysis.Risks = append([]string(nil), s.Analysis.Risks...)
	copied.Analysis.NextSteps = append([]string(nil), s.Analysis.NextSteps...)
	copied.Analysis.Checklist = append([]string(nil), s.Analysis.Checklist...)
	return &copied
}

var _ Store = (*MemoryStore)(nil)
