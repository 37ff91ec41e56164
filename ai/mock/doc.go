// Package mock provides test doubles for the ai interfaces.
//
// The mocks default to deterministic behavior (hash-derived embedding
// vectors, echo completions) and support behavior injection via function
// fields for error-path testing.
package mock
