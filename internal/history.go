package internal

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SanitizeMessages turns loosely typed session data into messages. Input
// that is not a list yields an empty history. Entries that are not maps
// become assistant messages.
func SanitizeMessages(raw any) []Message {
	switch v := raw.(type) {
	case []Message:
		return append([]Message{}, v...)
	case nil:
		return []Message{}
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []Message{}
	}

	out := make([]Message, 0, rv.Len())
	for i := range rv.Len() {
		out = append(out, sanitizeMessage(rv.Index(i).Interface()))
	}
	return out
}

func sanitizeMessage(entry any) Message {
	switch m := entry.(type) {
	case Message:
		return m
	case map[string]any:
		return Message{
			Role:    roleOf(m["role"]),
			Content: contentOf(m["content"]),
		}
	case map[string]string:
		role, ok := m["role"]
		if !ok {
			role = RoleAssistant
		}
		return Message{Role: role, Content: m["content"]}
	default:
		return Message{Role: RoleAssistant, Content: contentOf(entry)}
	}
}

func roleOf(v any) string {
	if v == nil {
		return RoleAssistant
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func contentOf(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	default:
		return fmt.Sprint(c)
	}
}

const (
	DefaultMaxSessions = 1000
	DefaultSessionTTL  = 24 * time.Hour
)

// SessionStore keeps chat histories in memory, keyed by session id. Only
// ids issued by NewID are tracked. Sessions idle longer than the TTL are
// dropped, and when the store is full the least recently used one goes.
type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

type session struct {
	messages []Message
	lastSeen time.Time
}

type SessionOption func(*SessionStore)

// WithMaxSessions caps the number of live sessions. Values below 1 are ignored.
func WithMaxSessions(n int) SessionOption {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets how long an idle session is kept. Values below 1 are ignored.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func withClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions:    make(map[string]*session),
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID issues and registers a fresh session.
func (s *SessionStore) NewID() string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	for len(s.sessions) >= s.maxSessions {
		s.evictOldest()
	}
	s.sessions[id] = &session{lastSeen: now}
	return id
}

// Touch reports whether id is a live session and refreshes its idle timer.
func (s *SessionStore) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if ok {
		sess.lastSeen = s.now()
	}
	return ok
}

// Len returns the number of tracked sessions, expired ones included until
// the next eviction.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// History returns a copy of the session's messages.
func (s *SessionStore) History(id string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.live(id)
	if !ok {
		return []Message{}
	}
	return append([]Message{}, sess.messages...)
}

// Append adds messages to a live session. Unknown ids are ignored.
func (s *SessionStore) Append(id string, msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return
	}
	sess.messages = append(sess.messages, msgs...)
	sess.lastSeen = s.now()
}

// Clear empties the session's history. The id stays valid.
func (s *SessionStore) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.live(id); ok {
		sess.messages = nil
	}
}

// live must be called with mu held.
func (s *SessionStore) live(id string) (*session, bool) {
	sess, ok := s.sessions[id]
	if !ok || s.now().Sub(sess.lastSeen) > s.ttl {
		return nil, false
	}
	return sess, true
}

func (s *SessionStore) evictExpired(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *SessionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	delete(s.sessions, oldestID)
}
