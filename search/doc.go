// Copyright 2025 Ogen Labs
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


// Package search provides the query planner over the in-memory index.
//
// The Planner resolves a raw query through up to three strategies:
//   - Exact: boolean AND over the normalized tokens, scored by term frequency
//   - Fuzzy: per-token expansion against the vocabulary, union of postings,
//     scored by frequency weighted with edit similarity
//   - Semantic: TF-IDF cosine similarity against the active vector set
//
// The hybrid mode (the default) runs all three, max-normalizes each
// strategy's scores and blends them with fixed weights, so one strategy's
// scale never drowns the others. Results are deterministic for a fixed
// index state: equal scores break ties by document id.
//
// An optional QueryCache memoizes ranked result pages. Entries embed the
// index generation in their key, so every mutation implicitly invalidates
// all earlier entries without TTL bookkeeping.
package search
