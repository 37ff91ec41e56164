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

// Package storage provides the archive abstraction layer for tutorit.
//
// This package defines the Archive interface that decouples persistence
// from the session store and generation pipelines. It allows different
// storage backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and enable multiple backend
// implementations:
//
//	archive, err := badger.NewArchive(path)  // returns storage.Archive interface
//
// Internal package constructors (newBackend, etc.) may return concrete
// types since they're only used within the implementation package.
//
// # What Gets Archived
//
// The archive holds documents and generated artifacts only. Vector index
// state, chat history, and the query log are session-scoped and rebuilt
// or discarded on restore.
//
// # Usage
//
// Create an archive instance:
//
//	archive, err := badger.NewArchive("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer archive.Close()
//
// Use in tests with in-memory storage:
//
//	archive, err := badger.NewMemoryArchive()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer archive.Close()
//
// # Thread Safety
//
// All archive implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All archive methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
