// Package artifact implements the IEP and lesson plan generation
// pipelines.
//
// Each pipeline is constructed with one of two fixed prompt strategies:
// a dedicated strategy doing domain-specific prompt assembly with
// structural post-validation, or a fallback strategy issuing one raw
// generation call with a fixed system/user prompt pair. The strategy is
// chosen once at construction, never by runtime inspection.
//
// Prompt assembly is pure and deterministic; successful generations are
// stored in the session registry, failed or cancelled ones persist
// nothing.
package artifact
