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


// Package rebuild reconstructs the tf-idf vector set from an index
// snapshot.
//
// A rebuild walks the snapshot's vocabulary in batches, feeds a fresh
// builder, and swaps the finished set into the scorer in one step, so
// queries never observe a half-built state. The pass is interruptible
// between batches via context, transient failures are retried with
// exponential backoff, and on any failure the previous vector set stays
// authoritative. Progress is reported to a configurable writer.
package rebuild
