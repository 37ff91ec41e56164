package session

import (
	"fmt"

	"github.com/poiesic/tutorit/core"
)

// Typed accessors over the generic collections. These are the interfaces
// the rest of the system uses; the generic Get/Set/Append operations stay
// available for callers that address collections by name.

// Documents returns the registered documents in registration order.
func (s *Store) Documents() []*core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect[*core.Document](s.collections[CollectionDocuments])
}

// AppendDocument registers a document.
func (s *Store) AppendDocument(doc *core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[CollectionDocuments] = append(s.collections[CollectionDocuments], doc)
}

// DocumentByID returns the document with the given id, or nil.
func (s *Store) DocumentByID(id string) *core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.collections[CollectionDocuments] {
		if doc, ok := item.(*core.Document); ok && doc.ID == id {
			return doc
		}
	}
	return nil
}

// RemoveDocument deletes the document with the given id from the registry.
// Returns false if no such document exists. Used to roll a document back
// out of the registry when its index insertion fails.
func (s *Store) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.collections[CollectionDocuments]
	for i, item := range items {
		if doc, ok := item.(*core.Document); ok && doc.ID == id {
			s.collections[CollectionDocuments] = append(items[:i:i], items[i+1:]...)
			return true
		}
	}
	return false
}

// AppendArtifact stores a generated artifact in the collection matching
// its kind.
func (s *Store) AppendArtifact(artifact *core.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch artifact.Kind {
	case core.KindIEP:
		s.collections[CollectionIEPs] = append(s.collections[CollectionIEPs], artifact)
	case core.KindLessonPlan:
		s.collections[CollectionLessonPlans] = append(s.collections[CollectionLessonPlans], artifact)
	default:
		return fmt.Errorf("%w: unknown artifact kind %d", core.ErrState, artifact.Kind)
	}
	return nil
}

// IEPs returns all IEP artifacts in creation order.
func (s *Store) IEPs() []*core.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect[*core.Artifact](s.collections[CollectionIEPs])
}

// LessonPlans returns all lesson plan artifacts in creation order.
func (s *Store) LessonPlans() []*core.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect[*core.Artifact](s.collections[CollectionLessonPlans])
}

// ArtifactByID returns the artifact with the given id from either
// artifact collection, or nil.
func (s *Store) ArtifactByID(id string) *core.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range []Collection{CollectionIEPs, CollectionLessonPlans} {
		for _, item := range s.collections[c] {
			if artifact, ok := item.(*core.Artifact); ok && artifact.ID == id {
				return artifact
			}
		}
	}
	return nil
}

// Messages returns the chat history in order.
func (s *Store) Messages() []core.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect[core.ChatMessage](s.collections[CollectionMessages])
}

// AppendMessage appends a chat message.
func (s *Store) AppendMessage(msg core.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[CollectionMessages] = append(s.collections[CollectionMessages], msg)
}

// QueryLog returns the append-only query log in execution order.
func (s *Store) QueryLog() []*core.QueryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return collect[*core.QueryRecord](s.collections[CollectionQueryLog])
}

// AppendQueryRecord appends a query record to the log.
func (s *Store) AppendQueryRecord(record *core.QueryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[CollectionQueryLog] = append(s.collections[CollectionQueryLog], record)
}

func collect[T any](items []any) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if v, ok := item.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
