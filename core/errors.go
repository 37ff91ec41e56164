// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// Error taxonomy roots. Every error produced by the system wraps exactly
// one of these, so callers can classify failures with errors.Is.
var (
	// ErrValidation indicates a missing or empty required field, or a
	// dangling artifact reference. Rejected before any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrIngestion indicates an unsupported format or an extraction
	// failure. Scoped to one file, non-fatal to the batch.
	ErrIngestion = errors.New("ingestion failed")

	// ErrIndex indicates an embedding failure during an index add.
	// The whole add batch is rolled back as a unit.
	ErrIndex = errors.New("index operation failed")

	// ErrGeneration indicates the generation capability is unavailable
	// or returned a malformed response. The single operation aborts and
	// no artifact or query record is persisted.
	ErrGeneration = errors.New("generation failed")

	// ErrState indicates an operation on an unknown collection key.
	// This is a programming error.
	ErrState = errors.New("invalid session state operation")
)

// ErrGenerationTimeout distinguishes a timed-out generation call from
// other generation failures. It wraps ErrGeneration, so errors.Is with
// either sentinel matches.
var ErrGenerationTimeout = fmt.Errorf("%w: timed out", ErrGeneration)
