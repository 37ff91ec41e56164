package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/tutorit/core"
)

// Collection names a session-scoped ordered sequence.
type Collection string

const (
	// CollectionDocuments holds registered *core.Document values.
	CollectionDocuments Collection = "documents"
	// CollectionMessages holds core.ChatMessage values.
	CollectionMessages Collection = "messages"
	// CollectionIEPs holds *core.Artifact values of KindIEP.
	CollectionIEPs Collection = "ieps"
	// CollectionLessonPlans holds *core.Artifact values of KindLessonPlan.
	CollectionLessonPlans Collection = "lesson_plans"
	// CollectionQueryLog holds *core.QueryRecord values, append-only.
	CollectionQueryLog Collection = "query_log"
)

var allCollections = []Collection{
	CollectionDocuments,
	CollectionMessages,
	CollectionIEPs,
	CollectionLessonPlans,
	CollectionQueryLog,
}

// Health is the set of session health flags.
type Health struct {
	IndexReady     bool
	GeneratorReady bool
	ChainReady     bool
}

// HealthUpdate merges flag changes into the current health state.
// Nil fields are left unchanged.
type HealthUpdate struct {
	IndexReady     *bool
	GeneratorReady *bool
	ChainReady     *bool
}

// Store is the single source of truth for all per-session collections and
// health flags. It is created empty with all flags false, and is safe for
// concurrent use; all mutation happens under a single writer lock.
type Store struct {
	mu          sync.RWMutex
	collections map[Collection][]any
	health      Health
	logger      *slog.Logger
}

// NewStore creates an empty session store.
func NewStore() *Store {
	collections := make(map[Collection][]any, len(allCollections))
	for _, c := range allCollections {
		collections[c] = nil
	}
	return &Store{
		collections: collections,
		logger:      slog.Default().With("component", "session"),
	}
}

// Get returns a copy of the named collection.
// An unknown collection key is a programming error (core.ErrState).
func (s *Store) Get(c Collection) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.collections[c]
	if !ok {
		return nil, fmt.Errorf("%w: unknown collection %q", core.ErrState, c)
	}
	out := make([]any, len(items))
	copy(out, items)
	return out, nil
}

// Set atomically replaces the named collection.
func (s *Store) Set(c Collection, items []any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[c]; !ok {
		return fmt.Errorf("%w: unknown collection %q", core.ErrState, c)
	}
	replacement := make([]any, len(items))
	copy(replacement, items)
	s.collections[c] = replacement
	return nil
}

// Append atomically appends an item to the named collection.
func (s *Store) Append(c Collection, item any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[c]; !ok {
		return fmt.Errorf("%w: unknown collection %q", core.ErrState, c)
	}
	s.collections[c] = append(s.collections[c], item)
	return nil
}

// Len returns the length of the named collection.
func (s *Store) Len(c Collection) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.collections[c]
	if !ok {
		return 0, fmt.Errorf("%w: unknown collection %q", core.ErrState, c)
	}
	return len(items), nil
}

// UpdateHealth merges the given flag changes into the health state.
func (s *Store) UpdateHealth(update HealthUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.IndexReady != nil {
		s.health.IndexReady = *update.IndexReady
	}
	if update.GeneratorReady != nil {
		s.health.GeneratorReady = *update.GeneratorReady
	}
	if update.ChainReady != nil {
		s.health.ChainReady = *update.ChainReady
	}
}

// Health returns a snapshot of the health flags.
func (s *Store) Health() Health {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.health
}

// ClearDocuments cascades a document clear: documents, IEP artifacts, and
// lesson plan artifacts are removed and the index-ready flag is reset.
// Chat messages and the query log are unaffected.
func (s *Store) ClearDocuments() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[CollectionDocuments] = nil
	s.collections[CollectionIEPs] = nil
	s.collections[CollectionLessonPlans] = nil
	s.health.IndexReady = false

	s.logger.Debug("cleared documents and artifacts")
}

// ClearMessages empties the chat history.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[CollectionMessages] = nil
}

// Reset wipes every collection and resets all health flags.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range allCollections {
		s.collections[c] = nil
	}
	s.health = Health{}

	s.logger.Debug("session reset")
}
