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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must not be empty
//   - Text must not be empty
//
// NOT validated (populated during indexing):
//   - IndexedAt / UpdatedAt (zero until the engine stamps them)
//   - TokenCount (zero until the text is normalized)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentId)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyText)
	}

	return nil
}

// ValidatePosting validates a Posting according to domain rules.
//
// Validation rules:
//   - DocId must not be empty
//   - Frequency must equal the number of positions
//   - Positions must be strictly increasing
func ValidatePosting(p *Posting) error {
	if p == nil {
		return fmt.Errorf("%w: posting is nil", ErrInvalidPosting)
	}

	if p.DocId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPosting, ErrEmptyDocumentId)
	}

	if p.Frequency != uint32(len(p.Positions)) {
		return fmt.Errorf("%w: %w (frequency %d, positions %d)",
			ErrInvalidPosting, ErrFrequencyMismatch, p.Frequency, len(p.Positions))
	}

	for i := 1; i < len(p.Positions); i++ {
		if p.Positions[i] <= p.Positions[i-1] {
			return fmt.Errorf("%w: %w (index %d)",
				ErrInvalidPosting, ErrPositionsNotIncreasing, i)
		}
	}

	return nil
}
