// Package session provides the per-session state store.
//
// The Store holds every session-scoped collection (documents, chat
// messages, IEP artifacts, lesson plan artifacts, query log) and the
// derived health flags. All components read and write through it; it is
// passed explicitly, never accessed as ambient global state.
//
// Clearing documents cascades to the artifacts generated from them and
// resets the index-ready flag, while chat history and the query log
// persist until a full Reset.
package session
