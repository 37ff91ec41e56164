package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ChunkID is a deterministic identifier for an indexed chunk of text.
// It is derived from the chunk content, so identical content always
// produces the same ChunkID.
type ChunkID uint64

// ChunkIDFromContent generates a deterministic ChunkID from text content
// using BLAKE2b hashing.
func ChunkIDFromContent(text string) ChunkID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ChunkID(binary.LittleEndian.Uint64(sum))
}

// NewID mints a unique identifier for a document or artifact.
// Identifiers are independent of registry position and remain stable
// across later removals.
func NewID() string {
	return uuid.NewString()
}

// DocumentMetadata describes the origin of a document.
// Extra holds arbitrary extension fields that may be added after creation.
type DocumentMetadata struct {
	Source       string // Original filename
	DocumentType string // Logical type derived from the extension (text, pdf, ...)
	UploadTime   time.Time
	Size         int // Content length in bytes
	Extra        map[string]string
}

// Document is a registered, immutable unit of user-supplied content.
// Content never changes after creation; metadata may gain Extra fields.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// ArtifactKind identifies the type of a generated artifact.
type ArtifactKind int

const (
	// KindIEP is an Individualized Education Program artifact.
	KindIEP ArtifactKind = iota + 1
	// KindLessonPlan is a lesson plan artifact.
	KindLessonPlan
)

// String returns the canonical name of the artifact kind.
func (k ArtifactKind) String() string {
	switch k {
	case KindIEP:
		return "iep"
	case KindLessonPlan:
		return "lesson_plan"
	default:
		return "unknown"
	}
}

// Timeframe selects between a daily and a weekly lesson plan schedule.
type Timeframe string

const (
	TimeframeDaily  Timeframe = "Daily"
	TimeframeWeekly Timeframe = "Weekly"
)

// Weekdays lists the valid schedule days for a weekly lesson plan.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// LessonPlanParams is the structured input for lesson plan generation.
// SourceIEPID must reference an IEP artifact present in the registry at
// generation time.
type LessonPlanParams struct {
	Subject        string
	GradeLevel     string
	Timeframe      Timeframe
	Duration       string // Free-form, e.g. "45 minutes per session"
	Days           []string
	Goals          []string
	Materials      []string
	Accommodations []string
	SourceIEPID    string
}

// Artifact is an immutable generated output (IEP or lesson plan).
// IEP artifacts reference the document they were generated from;
// lesson plan artifacts reference the IEP they integrate plus the
// structured parameters used to produce them.
type Artifact struct {
	ID        string
	Kind      ArtifactKind
	Content   string
	Timestamp time.Time

	// Set for KindIEP.
	SourceDocumentID string
	SourceName       string

	// Set for KindLessonPlan.
	SourceIEPID string
	Params      *LessonPlanParams
}

// RetrievedChunk is a chunk returned from a vector index query,
// carrying enough metadata to attribute an answer to its origin.
type RetrievedChunk struct {
	ChunkID    ChunkID
	DocumentID string
	Source     string
	Text       string
	Offset     int // Byte offset of the chunk within the document content
	Score      float32
}

// QueryRecord logs a single retrieval-augmented query execution.
// Records are append-only and never mutated.
type QueryRecord struct {
	Query     string
	Sources   []RetrievedChunk
	Result    string
	Elapsed   time.Duration
	Timestamp time.Time
}

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single entry in a session's chat history.
type ChatMessage struct {
	Role      MessageRole
	Content   string
	Sources   []RetrievedChunk
	Timestamp time.Time
}
