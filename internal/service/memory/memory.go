package memory

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/sandevgo/medrag/internal/core"
)

const (
	DefaultWindow = 10
	shardCount    = 32
)

// Store keeps a bounded, chronological log of turns per session.
// Sessions are spread over a fixed set of shards; every shard has its own
// mutex, so appends to one session are serialized while unrelated sessions
// rarely contend.
type Store struct {
	window int
	shards [shardCount]shard
}

type shard struct {
	mu   sync.Mutex
	logs map[string]*ring
}

func NewStore(window int) *Store {
	if window < 1 {
		window = DefaultWindow
	}
	s := &Store{window: window}
	for i := range s.shards {
		s.shards[i].logs = make(map[string]*ring)
	}
	return s
}

func (s *Store) Window() int {
	return s.window
}

// GetOrCreate returns a copy of the session log, creating an empty one if needed.
func (s *Store) GetOrCreate(sessionID string) []core.Turn {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r, ok := sh.logs[sessionID]
	if !ok {
		r = newRing(s.window)
		sh.logs[sessionID] = r
	}
	return r.snapshot()
}

// Append records a turn, evicting the oldest one once the window is full.
func (s *Store) Append(sessionID string, role core.Role, text string) error {
	if sessionID == "" {
		return fmt.Errorf("append turn: empty session id")
	}
	if role != core.RoleUser && role != core.RoleAssistant {
		return fmt.Errorf("append turn: unsupported role %q", role)
	}

	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	r, ok := sh.logs[sessionID]
	if !ok {
		r = newRing(s.window)
		sh.logs[sessionID] = r
	}
	r.push(core.Turn{Role: role, Text: text})
	return nil
}

// Clear drops the session log. Unknown sessions are ignored.
func (s *Store) Clear(sessionID string) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.logs, sessionID)
}

// Sessions returns the number of live session logs.
func (s *Store) Sessions() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		total += len(sh.logs)
		sh.mu.Unlock()
	}
	return total
}

func (s *Store) shardFor(sessionID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &s.shards[h.Sum32()%shardCount]
}
