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


// Package ingestion prepares document batches for indexing.
//
// The Pipeline type manages the batch workflow:
//   - Validating every document up front, so a bad entry rejects the
//     batch before any work starts
//   - Normalizing document text concurrently on a worker pool
//   - Handing the prepared postings to an Applier one document at a
//     time, in input order
//
// Normalization is CPU-bound and parallelizes freely; application stays
// sequential because the engine serializes writes.
package ingestion
