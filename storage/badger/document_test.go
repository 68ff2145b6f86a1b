package badger

import (
	"context"
	"testing"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDoc(id core.DocID, text string) *core.Document {
	return &core.Document{
		Id:         id,
		Text:       text,
		TokenCount: 2,
	}
}

func testPostings(id core.DocID, terms ...string) map[string]*core.Posting {
	postings := make(map[string]*core.Posting, len(terms))
	for i, term := range terms {
		postings[term] = &core.Posting{
			DocId:     id,
			Frequency: 1,
			Positions: []uint32{uint32(i)},
		}
	}
	return postings
}

func TestSaveDocument_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &core.Document{
		Id:         "finding-1",
		Text:       "ליקוי בצנרת המים",
		Metadata:   map[string]string{"site": "haifa"},
		TokenCount: 3,
	}
	err := store.SaveDocument(ctx, doc, testPostings(doc.Id, "ליקוי", "צנרת", "מימ"))
	require.NoError(t, err)

	// SaveDocument stamps both timestamps on first save
	assert.False(t, doc.IndexedAt.IsZero())
	assert.Equal(t, doc.IndexedAt, doc.UpdatedAt)

	loaded, err := store.GetDocument(ctx, "finding-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, doc.Id, loaded.Id)
	assert.Equal(t, doc.Text, loaded.Text)
	assert.Equal(t, doc.Metadata, loaded.Metadata)
	assert.Equal(t, doc.TokenCount, loaded.TokenCount)
	assert.True(t, doc.IndexedAt.Equal(loaded.IndexedAt))
}

func TestSaveDocument_ReplacesPriorPostings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("finding-1", "v1")
	require.NoError(t, store.SaveDocument(ctx, doc, testPostings(doc.Id, "ישנ", "משותפ")))

	// Replace: one shared term, one new, one dropped
	require.NoError(t, store.SaveDocument(ctx, doc, testPostings(doc.Id, "חדש", "משותפ")))

	terms := make(map[string][]core.Posting)
	err := store.LoadPostings(ctx, func(term string, stats core.TermStats, postings []core.Posting) error {
		terms[term] = postings
		return nil
	})
	require.NoError(t, err)

	assert.NotContains(t, terms, "ישנ")
	assert.Contains(t, terms, "חדש")
	assert.Contains(t, terms, "משותפ")
	require.Len(t, terms["משותפ"], 1)
	assert.Equal(t, core.DocID("finding-1"), terms["משותפ"][0].DocId)
}

func TestSaveDocument_PreservesIndexedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("finding-1", "v1")
	require.NoError(t, store.SaveDocument(ctx, doc, testPostings(doc.Id, "דיקה")))
	firstIndexed := doc.IndexedAt

	updated := testDoc("finding-1", "v2")
	require.NoError(t, store.SaveDocument(ctx, updated, testPostings(doc.Id, "דיקה")))

	assert.True(t, firstIndexed.Equal(updated.IndexedAt))
	assert.False(t, updated.UpdatedAt.Before(firstIndexed))

	loaded, err := store.GetDocument(ctx, "finding-1")
	require.NoError(t, err)
	assert.True(t, firstIndexed.Equal(loaded.IndexedAt))
	assert.Equal(t, "v2", loaded.Text)
}

func TestSaveDocument_EmptyPostings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A document whose text normalized to nothing still gets stored
	doc := testDoc("stopwords-only", "של עם")
	require.NoError(t, store.SaveDocument(ctx, doc, nil))

	loaded, err := store.GetDocument(ctx, "stopwords-only")
	require.NoError(t, err)
	assert.Equal(t, doc.Text, loaded.Text)

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("finding-1", "text")
	require.NoError(t, store.SaveDocument(ctx, doc, testPostings(doc.Id, "דיקה", "חשמל")))
	require.NoError(t, store.DeleteDocument(ctx, "finding-1"))

	_, err := store.GetDocument(ctx, "finding-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	calls := 0
	err = store.LoadPostings(ctx, func(term string, stats core.TermStats, postings []core.Posting) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.DeleteDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDocuments_SkipsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, testDoc("a", "a"), testPostings("a", "דיקה")))
	require.NoError(t, store.SaveDocument(ctx, testDoc("b", "b"), testPostings("b", "חשמל")))

	docs, err := store.GetDocuments(ctx, "a", "missing", "b")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []core.DocID{docs[0].Id, docs[1].Id}
	assert.ElementsMatch(t, []core.DocID{"a", "b"}, ids)
}

func TestForEachDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []core.DocID{"a", "b", "c"} {
		require.NoError(t, store.SaveDocument(ctx, testDoc(id, string(id)), testPostings(id, "דיקה")))
	}

	var visited []core.DocID
	err := store.ForEachDocument(ctx, func(doc *core.Document) error {
		visited = append(visited, doc.Id)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.DocID{"a", "b", "c"}, visited)
}

func TestForEachDocument_StopsOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []core.DocID{"a", "b", "c"} {
		require.NoError(t, store.SaveDocument(ctx, testDoc(id, string(id)), testPostings(id, "דיקה")))
	}

	calls := 0
	err := store.ForEachDocument(ctx, func(doc *core.Document) error {
		calls++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func TestCountDocuments_Empty(t *testing.T) {
	store := newTestStore(t)
	count, err := store.CountDocuments(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ReopenFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)

	doc := &core.Document{Id: "finding-1", Text: "בדיקת חשמל", TokenCount: 2}
	postings := map[string]*core.Posting{
		"דיקת": {DocId: "finding-1", Frequency: 1, Positions: []uint32{0}},
		"חשמל": {DocId: "finding-1", Frequency: 1, Positions: []uint32{1}},
	}
	require.NoError(t, store.SaveDocument(ctx, doc, postings))
	require.NoError(t, store.PutMeta(ctx, &core.IndexMeta{FormatVersion: core.FormatVersion, Generation: 2}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.GetDocument(ctx, "finding-1")
	require.NoError(t, err)
	assert.Equal(t, doc.Text, loaded.Text)

	terms := make(map[string]core.TermStats)
	err = reopened.LoadPostings(ctx, func(term string, stats core.TermStats, ps []core.Posting) error {
		terms[term] = stats
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, terms, 2)
	assert.Equal(t, uint32(1), terms["חשמל"].DocFrequency)

	meta, err := reopened.GetMeta(ctx)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, core.FormatVersion, meta.FormatVersion)
	assert.Equal(t, uint64(2), meta.Generation)
}
