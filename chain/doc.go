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

// Package chain implements the retrieval-augmented generation chain.
//
// Run retrieves the top-k chunks for a query from the vector index,
// assembles a deterministic prompt from a fixed template, and invokes
// the generation capability. The result carries the answer and the
// retrieved sources in retrieval order. When nothing is indexed, the
// prompt states explicitly that no context is available.
package chain
