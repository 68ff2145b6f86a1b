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

import (
	"fmt"
	"sort"
	"time"

	mus "github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted record types.
//
// These are written by hand rather than generated because the wire formats
// carry domain invariants a generator cannot express: posting positions are
// stored delta-encoded (strictly increasing positions compress to small
// varints), metadata maps are written in sorted key order so identical
// documents always produce identical bytes, and posting frequency is
// derived from the position count instead of being stored twice.
var (
	DocIDMUS     = docIDMUS{}
	DocumentMUS  = documentMUS{}
	PostingMUS   = postingMUS{}
	IndexMetaMUS = indexMetaMUS{}
	StringsMUS   = stringsMUS{}
)

var (
	_ mus.Serializer[DocID]     = DocIDMUS
	_ mus.Serializer[Document]  = DocumentMUS
	_ mus.Serializer[Posting]   = PostingMUS
	_ mus.Serializer[IndexMeta] = IndexMetaMUS
	_ mus.Serializer[[]string]  = StringsMUS
)

// Times are persisted as Unix microseconds.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

type docIDMUS struct{}

func (s docIDMUS) Marshal(id DocID, bs []byte) int {
	return ord.String.Marshal(string(id), bs)
}

func (s docIDMUS) Unmarshal(bs []byte) (DocID, int, error) {
	v, n, err := ord.String.Unmarshal(bs)
	return DocID(v), n, err
}

func (s docIDMUS) Size(id DocID) int {
	return ord.String.Size(string(id))
}

func (s docIDMUS) Skip(bs []byte) (int, error) {
	return ord.String.Skip(bs)
}

type documentMUS struct{}

func (s documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = DocIDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Text, bs[n:])
	n += varint.Uint32.Marshal(uint32(len(d.Metadata)), bs[n:])
	for _, k := range sortedKeys(d.Metadata) {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(d.Metadata[k], bs[n:])
	}
	n += marshalTime(d.IndexedAt, bs[n:])
	n += marshalTime(d.UpdatedAt, bs[n:])
	n += varint.Uint32.Marshal(d.TokenCount, bs[n:])
	return
}

func (s documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	d.Id, n, err = DocIDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	d.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count uint32
	count, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if int(count) > len(bs[n:]) {
		err = fmt.Errorf("%w: metadata count %d exceeds %d remaining bytes",
			ErrCorruptRecord, count, len(bs[n:]))
		return
	}
	if count > 0 {
		d.Metadata = make(map[string]string, count)
		for range count {
			var k, v string
			k, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			d.Metadata[k] = v
		}
	}
	d.IndexedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	d.TokenCount, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	return
}

func (s documentMUS) Size(d Document) (size int) {
	size = DocIDMUS.Size(d.Id)
	size += ord.String.Size(d.Text)
	size += varint.Uint32.Size(uint32(len(d.Metadata)))
	for k, v := range d.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	size += sizeTime(d.IndexedAt)
	size += sizeTime(d.UpdatedAt)
	size += varint.Uint32.Size(d.TokenCount)
	return
}

func (s documentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = DocIDMUS.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var count uint32
	count, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for range count * 2 {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for range 2 {
		n1, err = varint.Int64.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	n1, err = varint.Uint32.Skip(bs[n:])
	n += n1
	return
}

// postingMUS stores positions as deltas from the previous position. The
// frequency field is not stored; it is restored from the position count
// on decode.
type postingMUS struct{}

func (s postingMUS) Marshal(p Posting, bs []byte) (n int) {
	n = DocIDMUS.Marshal(p.DocId, bs)
	n += varint.Uint32.Marshal(uint32(len(p.Positions)), bs[n:])
	var prev uint32
	for _, pos := range p.Positions {
		n += varint.Uint32.Marshal(pos-prev, bs[n:])
		prev = pos
	}
	return
}

func (s postingMUS) Unmarshal(bs []byte) (p Posting, n int, err error) {
	var n1 int
	p.DocId, n, err = DocIDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var count uint32
	count, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if int(count) > len(bs[n:]) {
		err = fmt.Errorf("%w: position count %d exceeds %d remaining bytes",
			ErrCorruptRecord, count, len(bs[n:]))
		return
	}
	p.Frequency = count
	if count > 0 {
		p.Positions = make([]uint32, count)
		var prev uint32
		for i := range count {
			var delta uint32
			delta, n1, err = varint.Uint32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			prev += delta
			p.Positions[i] = prev
		}
	}
	return
}

func (s postingMUS) Size(p Posting) (size int) {
	size = DocIDMUS.Size(p.DocId)
	size += varint.Uint32.Size(uint32(len(p.Positions)))
	var prev uint32
	for _, pos := range p.Positions {
		size += varint.Uint32.Size(pos - prev)
		prev = pos
	}
	return
}

func (s postingMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = DocIDMUS.Skip(bs)
	if err != nil {
		return
	}
	var count uint32
	count, n1, err = varint.Uint32.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	for range count {
		n1, err = varint.Uint32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type indexMetaMUS struct{}

func (s indexMetaMUS) Marshal(m IndexMeta, bs []byte) (n int) {
	n = varint.Uint32.Marshal(m.FormatVersion, bs)
	n += varint.Uint64.Marshal(m.Generation, bs[n:])
	n += marshalTime(m.UpdatedAt, bs[n:])
	return
}

func (s indexMetaMUS) Unmarshal(bs []byte) (m IndexMeta, n int, err error) {
	var n1 int
	m.FormatVersion, n, err = varint.Uint32.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Generation, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (s indexMetaMUS) Size(m IndexMeta) int {
	return varint.Uint32.Size(m.FormatVersion) +
		varint.Uint64.Size(m.Generation) +
		sizeTime(m.UpdatedAt)
}

func (s indexMetaMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = varint.Uint32.Skip(bs)
	if err != nil {
		return
	}
	n1, err = varint.Uint64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

type stringsMUS struct{}

func (s stringsMUS) Marshal(v []string, bs []byte) (n int) {
	n = varint.Uint32.Marshal(uint32(len(v)), bs)
	for _, t := range v {
		n += ord.String.Marshal(t, bs[n:])
	}
	return
}

func (s stringsMUS) Unmarshal(bs []byte) (v []string, n int, err error) {
	var count uint32
	count, n, err = varint.Uint32.Unmarshal(bs)
	if err != nil {
		return
	}
	if int(count) > len(bs[n:]) {
		err = fmt.Errorf("%w: string count %d exceeds %d remaining bytes",
			ErrCorruptRecord, count, len(bs[n:]))
		return
	}
	if count > 0 {
		v = make([]string, count)
		var n1 int
		for i := range count {
			v[i], n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	return
}

func (s stringsMUS) Size(v []string) (size int) {
	size = varint.Uint32.Size(uint32(len(v)))
	for _, t := range v {
		size += ord.String.Size(t)
	}
	return
}

func (s stringsMUS) Skip(bs []byte) (n int, err error) {
	var count uint32
	count, n, err = varint.Uint32.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for range count {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
