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

// Package ai provides abstractions for the AI services used in tutorit.
//
// This package defines interfaces for text embeddings and chat-based text
// generation. It follows the dependency inversion principle, allowing the
// core domain and business logic to depend on abstractions rather than
// concrete implementations.
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces chat completions from ordered messages
//   - Provider: Aggregates AI services for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; mock constructors return concrete types so tests can make
// assertions and inject behavior.
package ai
