package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogenlabs/hipus/core"
	"github.com/ogenlabs/hipus/hebrew"
)

func putText(t *testing.T, ix *Index, id core.DocID, text string) map[string]uint32 {
	t.Helper()
	tokens := hebrew.Normalize(text)
	return ix.Put(id, BuildPostings(id, tokens))
}

func TestIndex_PutAndLookup(t *testing.T) {
	ix := New()
	text := "בדיקת מערכת החשמל בבניין הושלמה"

	tokens := hebrew.Normalize(text)
	require.NotEmpty(t, tokens)
	ix.Put("doc-1", BuildPostings("doc-1", tokens))

	// Every normalized token must be retrievable and point at the document.
	for _, token := range tokens {
		postings := ix.Lookup(token.Term)
		require.NotEmpty(t, postings, "term %q has no postings", token.Term)

		found := false
		for _, p := range postings {
			if p.DocId == "doc-1" {
				found = true
			}
		}
		assert.True(t, found, "term %q does not reference doc-1", token.Term)
	}

	assert.Equal(t, 1, ix.DocCount())
	assert.Nil(t, ix.Lookup("חסר"), "unindexed term must yield nil")
}

func TestIndex_PutIsIdempotent(t *testing.T) {
	ix := New()
	text := "בדיקה בדיקה חוזרת"

	putText(t, ix, "doc-1", text)
	firstCount := ix.TermCount()
	firstSnapshot := ix.Snapshot()

	putText(t, ix, "doc-1", text)

	assert.Equal(t, 1, ix.DocCount())
	assert.Equal(t, firstCount, ix.TermCount())
	assert.Equal(t, firstSnapshot, ix.Snapshot(), "re-adding identical content must not change the index")
}

func TestIndex_PutReplacesPriorPostings(t *testing.T) {
	ix := New()

	putText(t, ix, "doc-1", "מערכת חשמל")
	putText(t, ix, "doc-1", "מערכת צנרת")

	assert.Empty(t, ix.Lookup("חשמל"), "replaced term must disappear")
	assert.NotEmpty(t, ix.Lookup("צנרת"))
	assert.Equal(t, 1, ix.DocCount())
}

func TestIndex_Remove(t *testing.T) {
	ix := New()
	text := "בדיקת לחץ בצנרת"
	tokens := hebrew.Normalize(text)
	ix.Put("doc-1", BuildPostings("doc-1", tokens))

	delta, existed := ix.Remove("doc-1")
	require.True(t, existed)

	for _, token := range tokens {
		assert.Empty(t, ix.Lookup(token.Term), "term %q still resolves after removal", token.Term)
		assert.Equal(t, uint32(0), delta[token.Term])
	}
	assert.Equal(t, 0, ix.DocCount())
	assert.Equal(t, 0, ix.TermCount())

	_, existed = ix.Remove("doc-1")
	assert.False(t, existed, "second removal must report absence")
}

func TestIndex_BooleanQuery(t *testing.T) {
	ix := New()
	putText(t, ix, "D1", "בדיקה הנדסית")
	putText(t, ix, "D2", "בדיקה אפיונית")

	q := func(words ...string) []string {
		var terms []string
		for _, w := range words {
			term, ok := hebrew.NormalizeWord(w)
			require.True(t, ok)
			terms = append(terms, term)
		}
		return terms
	}

	t.Run("shared term intersects to both", func(t *testing.T) {
		ids := ix.BooleanQuery(q("בדיקה"), true)
		assert.Equal(t, []core.DocID{"D1", "D2"}, ids)
	})

	t.Run("disjoint terms intersect to none", func(t *testing.T) {
		ids := ix.BooleanQuery(q("הנדסית", "אפיונית"), true)
		assert.Empty(t, ids)
	})

	t.Run("disjoint terms union to both", func(t *testing.T) {
		ids := ix.BooleanQuery(q("הנדסית", "אפיונית"), false)
		assert.Equal(t, []core.DocID{"D1", "D2"}, ids)
	})

	t.Run("empty term list", func(t *testing.T) {
		assert.Empty(t, ix.BooleanQuery(nil, true))
		assert.Empty(t, ix.BooleanQuery(nil, false))
	})

	t.Run("unknown term short-circuits intersection", func(t *testing.T) {
		ids := ix.BooleanQuery(append(q("בדיקה"), "איננו"), true)
		assert.Empty(t, ids)
	})
}

func TestIndex_VocabularyDelta(t *testing.T) {
	ix := New()

	delta := putText(t, ix, "doc-1", "חשמל")
	assert.Equal(t, uint32(1), delta["חשמל"])

	delta = putText(t, ix, "doc-2", "חשמל ומים")
	assert.Equal(t, uint32(2), delta["חשמל"])
	assert.Equal(t, uint32(1), delta["מימ"])

	delta, existed := ix.Remove("doc-2")
	require.True(t, existed)
	assert.Equal(t, uint32(1), delta["חשמל"])
	assert.Equal(t, uint32(0), delta["מימ"], "term must drop out of the vocabulary")

	stats, ok := ix.Stats("חשמל")
	require.True(t, ok)
	assert.Equal(t, uint32(1), stats.DocFrequency)

	_, ok = ix.Stats("מימ")
	assert.False(t, ok)
}

func TestIndex_Generation(t *testing.T) {
	ix := New()
	assert.Equal(t, uint64(0), ix.Generation())

	putText(t, ix, "doc-1", "בדיקה")
	gen := ix.Generation()
	assert.Equal(t, uint64(1), gen)

	_, existed := ix.Remove("doc-missing")
	assert.False(t, existed)
	assert.Equal(t, gen, ix.Generation(), "failed removal must not invalidate caches")

	_, existed = ix.Remove("doc-1")
	assert.True(t, existed)
	assert.Greater(t, ix.Generation(), gen)
}

func TestIndex_Restore(t *testing.T) {
	ix := New()

	ix.Restore("חשמל", core.TermStats{DocFrequency: 2, CollectionFrequency: 5}, []core.Posting{
		{DocId: "doc-1", Frequency: 3, Positions: []uint32{0, 2, 7}},
		{DocId: "doc-2", Frequency: 2, Positions: []uint32{1, 4}},
	})
	ix.RestoreDoc("doc-3")

	assert.Equal(t, 3, ix.DocCount())
	assert.Equal(t, 1, ix.TermCount())

	postings := ix.Lookup("חשמל")
	require.Len(t, postings, 2)
	assert.Equal(t, core.DocID("doc-1"), postings[0].DocId)

	stats, ok := ix.Stats("חשמל")
	require.True(t, ok)
	assert.Equal(t, uint32(2), stats.DocFrequency)
	assert.Equal(t, uint64(5), stats.CollectionFrequency)
}

func TestIndex_Snapshot(t *testing.T) {
	ix := New()
	putText(t, ix, "doc-2", "חשמל ובדיקה")
	putText(t, ix, "doc-1", "חשמל")

	entries := ix.Snapshot()
	require.Len(t, entries, 2)

	// Terms sorted, postings sorted by document id.
	assert.Equal(t, "בדיק", entries[0].Term)
	assert.Equal(t, "חשמל", entries[1].Term)
	require.Len(t, entries[1].Postings, 2)
	assert.Equal(t, core.DocID("doc-1"), entries[1].Postings[0].DocId)
	assert.Equal(t, core.DocID("doc-2"), entries[1].Postings[1].DocId)
	assert.Equal(t, uint32(2), entries[1].Stats.DocFrequency)
}

func TestIndex_ConcurrentReadsDuringWrites(t *testing.T) {
	ix := New()
	putText(t, ix, "doc-0", "בדיקת מערכת")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ix.Lookup("דיקת")
				ix.BooleanQuery([]string{"דיקת", "ערכת"}, true)
				ix.DocCount()
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			putText(t, ix, "doc-1", "בדיקת לחץ")
			ix.Remove("doc-1")
		}
	}()
	wg.Wait()
}

func TestBuildPostings(t *testing.T) {
	tokens := []hebrew.Token{
		{Term: "חשמל", Position: 0},
		{Term: "דיק", Position: 1},
		{Term: "חשמל", Position: 2},
	}

	postings := BuildPostings("doc-1", tokens)
	require.Len(t, postings, 2)

	p := postings["חשמל"]
	require.NotNil(t, p)
	assert.Equal(t, uint32(2), p.Frequency)
	assert.Equal(t, []uint32{0, 2}, p.Positions)
	require.NoError(t, core.ValidatePosting(p))

	p = postings["דיק"]
	require.NotNil(t, p)
	assert.Equal(t, uint32(1), p.Frequency)
	assert.Equal(t, []uint32{1}, p.Positions)
}
