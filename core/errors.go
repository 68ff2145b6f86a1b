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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentId indicates the document Id field is empty.
	ErrEmptyDocumentId = errors.New("document id cannot be empty")

	// ErrEmptyText indicates the document Text field is empty.
	ErrEmptyText = errors.New("document text cannot be empty")

	// ErrInvalidPosting indicates a Posting failed validation.
	ErrInvalidPosting = errors.New("invalid posting")

	// ErrPositionsNotIncreasing indicates posting positions are not
	// strictly increasing.
	ErrPositionsNotIncreasing = errors.New("posting positions must be strictly increasing")

	// ErrFrequencyMismatch indicates a posting frequency does not match
	// its position count.
	ErrFrequencyMismatch = errors.New("posting frequency must equal position count")

	// ErrDocumentNotFound indicates the requested document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrCorruptRecord indicates a persisted record failed to decode.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrFormatVersion indicates a persisted index was written with an
	// incompatible on-disk format.
	ErrFormatVersion = errors.New("unsupported index format version")
)
