package internal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMessages(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []Message
	}{
		{"nil", nil, []Message{}},
		{"not a list", "hello", []Message{}},
		{"map is not a list", map[string]any{"role": "user"}, []Message{}},
		{
			name: "well formed",
			in: []any{
				map[string]any{"role": "user", "content": "What is fever?"},
				map[string]any{"role": "assistant", "content": "A symptom."},
			},
			want: []Message{
				{Role: RoleUser, Content: "What is fever?"},
				{Role: RoleAssistant, Content: "A symptom."},
			},
		},
		{
			name: "missing fields",
			in:   []any{map[string]any{}},
			want: []Message{{Role: RoleAssistant, Content: ""}},
		},
		{
			name: "non string content",
			in:   []any{map[string]any{"role": "user", "content": 42}},
			want: []Message{{Role: RoleUser, Content: "42"}},
		},
		{
			name: "non map entries",
			in:   []any{"plain text", 7},
			want: []Message{
				{Role: RoleAssistant, Content: "plain text"},
				{Role: RoleAssistant, Content: "7"},
			},
		},
		{
			name: "string maps",
			in:   []map[string]string{{"content": "hi"}},
			want: []Message{{Role: RoleAssistant, Content: "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeMessages(tt.in))
		})
	}
}

func TestSessionStore(t *testing.T) {
	s := NewSessionStore()
	id := s.NewID()
	assert.NotEqual(t, id, s.NewID())

	assert.Empty(t, s.History(id))

	s.Append(id, Message{Role: RoleUser, Content: "q"}, Message{Role: RoleAssistant, Content: "a"})
	history := s.History(id)
	assert.Len(t, history, 2)

	history[0].Content = "mutated"
	assert.Equal(t, "q", s.History(id)[0].Content)

	s.Clear(id)
	assert.Empty(t, s.History(id))
}

func TestSessionStoreConcurrent(t *testing.T) {
	s := NewSessionStore()
	id := s.NewID()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(id, Message{Role: RoleUser, Content: fmt.Sprint(i)})
			_ = s.History(id)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.History(id), 50)
}

func TestSessionStoreIgnoresUnknownIDs(t *testing.T) {
	s := NewSessionStore()

	s.Append("forged", Message{Role: RoleUser, Content: "q"})
	assert.False(t, s.Touch("forged"))
	assert.Empty(t, s.History("forged"))
	assert.Equal(t, 0, s.Len())
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStore(WithSessionTTL(time.Hour), withClock(func() time.Time { return now }))

	id := s.NewID()
	s.Append(id, Message{Role: RoleUser, Content: "q"})

	now = now.Add(30 * time.Minute)
	assert.True(t, s.Touch(id))

	now = now.Add(61 * time.Minute)
	assert.False(t, s.Touch(id))
	assert.Empty(t, s.History(id))

	s.NewID()
	assert.Equal(t, 1, s.Len(), "expired session evicted on the next issue")
}

func TestSessionStoreCapsSessions(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessionStore(WithMaxSessions(2), withClock(func() time.Time { return now }))

	first := s.NewID()
	now = now.Add(time.Second)
	second := s.NewID()
	now = now.Add(time.Second)
	third := s.NewID()

	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Touch(first))
	assert.True(t, s.Touch(second))
	assert.True(t, s.Touch(third))
}
