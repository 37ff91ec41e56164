// Package index provides an in-memory vector index over document chunks.
//
// Documents are split into overlapping chunks, embedded, and stored with
// a back-reference to the owning document. Queries embed the query text
// and rank entries by cosine similarity. Add batches commit atomically:
// an embedding failure leaves the index untouched.
//
// Entry count for a live document always equals its chunk count, and no
// entry references a document that was removed.
package index
