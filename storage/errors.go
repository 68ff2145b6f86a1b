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

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed wraps a commit that could not be applied.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed is returned for operations issued after Close.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed wraps a stored record whose bytes do not
	// decode.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData wraps a stored record that ends before its framing
	// says it should.
	ErrTruncatedData = errors.New("truncated data")
)
