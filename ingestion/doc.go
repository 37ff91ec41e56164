// Package ingestion turns raw uploads into registered documents and
// vector index entries.
//
// A batch is processed as follows: every file is persisted to scoped
// temporary storage and extracted concurrently on a worker pool, then
// registration and index commits run sequentially in input order. A
// per-file failure is recorded and never aborts sibling files; a
// document whose index insertion fails is rolled back out of the
// registry. Temporary storage is released on every exit path.
package ingestion
