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

package storage

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist in the archive.
	ErrNotFound = errors.New("entity not found")

	// ErrTransactionFailed indicates a storage transaction could not complete.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed indicates an operation was attempted on a closed backend.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates an entity could not be encoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates stored bytes ended before the entity was
	// fully decoded.
	ErrTruncatedData = errors.New("truncated data")
)
