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


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/storage"
)

// PutMeta persists the index metadata singleton.
func (s *DocumentStore) PutMeta(ctx context.Context, meta *core.IndexMeta) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		meta.UpdatedAt = time.Now().UTC()
		value := storage.MarshalIndexMeta(meta)
		if err := tx.Set(makeMetaKey(), value); err != nil {
			return err
		}
		return commit(tx)
	}, true)
}

// GetMeta retrieves the index metadata.
// Returns nil, nil if no metadata has been written yet.
func (s *DocumentStore) GetMeta(ctx context.Context) (*core.IndexMeta, error) {
	var meta *core.IndexMeta
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMetaKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			meta, unmarshalErr = storage.UnmarshalIndexMeta(val)
			return unmarshalErr
		})
	}, false)

	return meta, err
}
