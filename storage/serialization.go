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


package storage

import (
	"errors"
	"fmt"

	com "github.com/mus-format/common-go"

	"github.com/ogenlabs/hipus/core"
)

// decodeError classifies a record decode failure. Input that ran out
// before the record ended is reported as ErrTruncatedData, anything else
// as ErrSerializationFailed.
func decodeError(kind string, err error) error {
	if errors.Is(err, com.ErrTooSmallByteSlice) {
		return fmt.Errorf("%w: %s: %w", ErrTruncatedData, kind, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, kind, err)
}

// trailingError reports a record that decoded cleanly but left bytes
// behind. Records are stored whole, so leftovers mean the value is not
// what was written.
func trailingError(kind string, left int) error {
	return fmt.Errorf("%w: %s record has %d trailing bytes", ErrSerializationFailed, kind, left)
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, n, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("document", err)
	}
	if n != len(data) {
		return nil, trailingError("document", len(data)-n)
	}
	return &doc, nil
}

// MarshalPosting serializes a Posting to bytes.
func MarshalPosting(posting *core.Posting) []byte {
	buf := make([]byte, core.PostingMUS.Size(*posting))
	core.PostingMUS.Marshal(*posting, buf)
	return buf
}

// UnmarshalPosting deserializes a Posting from bytes.
func UnmarshalPosting(data []byte) (*core.Posting, error) {
	posting, n, err := core.PostingMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("posting", err)
	}
	if n != len(data) {
		return nil, trailingError("posting", len(data)-n)
	}
	return &posting, nil
}

// MarshalTerms serializes a document's term list to bytes.
func MarshalTerms(terms []string) []byte {
	buf := make([]byte, core.StringsMUS.Size(terms))
	core.StringsMUS.Marshal(terms, buf)
	return buf
}

// UnmarshalTerms deserializes a document's term list from bytes.
func UnmarshalTerms(data []byte) ([]string, error) {
	terms, n, err := core.StringsMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("term list", err)
	}
	if n != len(data) {
		return nil, trailingError("term list", len(data)-n)
	}
	return terms, nil
}

// MarshalIndexMeta serializes IndexMeta to bytes.
func MarshalIndexMeta(meta *core.IndexMeta) []byte {
	buf := make([]byte, core.IndexMetaMUS.Size(*meta))
	core.IndexMetaMUS.Marshal(*meta, buf)
	return buf
}

// UnmarshalIndexMeta deserializes IndexMeta from bytes.
func UnmarshalIndexMeta(data []byte) (*core.IndexMeta, error) {
	meta, n, err := core.IndexMetaMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeError("index meta", err)
	}
	if n != len(data) {
		return nil, trailingError("index meta", len(data)-n)
	}
	return &meta, nil
}
