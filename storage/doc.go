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


// Package storage defines the persistence contract for hipus.
//
// The interfaces here sit between the engine and whatever holds the
// records, so the engine never names a concrete backend. The shipped
// backend is BadgerDB (storage/badger), with an in-memory mode for
// tests; anything that satisfies Store can replace it.
//
// # Constructor Return Type Pattern
//
// Public constructors return the interface, not the backend type:
//
//	store, err := badger.NewStore(path)  // returns storage.Store interface
//
// Returning the interface keeps callers off BadgerDB specifics, leaves
// room for alternative backends, and lets tests substitute stub stores
// without touching consumers. Constructors that never escape the
// implementation package (newDocumentStore, newBackend) return concrete
// types.
//
// # Architecture
//
// Store combines the narrower contracts a consumer can also depend on
// individually:
//
//   - DocumentRepository: document records, their term lists, their postings
//   - IndexLoader: streaming load of persisted posting lists at startup
//   - MetaStore: the index-level metadata singleton
//
// A document write is transactional: the document record, its term list,
// and every posting record commit or roll back together, so a crash can
// never leave postings that point at a missing document.
//
// # Usage
//
// Create a store instance:
//
//	store, err := badger.NewStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// Implementations serve concurrent goroutines; callers do not add
// locking of their own.
//
// # Context Support
//
// Every method takes a context.Context and honors cancellation.
// context.Background() is fine where no deadline applies.
package storage
