package args

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/snapgraph/internal/entity"
)

func TestDecodePageDistinguishesNullFromValue(t *testing.T) {
	// Coercion leaves an explicit null as a present nil key.
	page, err := DecodePage(map[string]any{"first": nil, "start": 3})
	require.NoError(t, err)
	assert.Nil(t, page.First, "nulled first means no limit")
	require.NotNil(t, page.Start)
	assert.Equal(t, 3, *page.Start)
}

func TestDecodePageNilInput(t *testing.T) {
	page, err := DecodePage(nil)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestDecodePageIdempotent(t *testing.T) {
	first := 25
	in := &entity.DataPage{First: &first}
	page, err := DecodePage(in)
	require.NoError(t, err)
	assert.Same(t, in, page)
}

func TestDecodePageRejectsFractional(t *testing.T) {
	_, err := DecodePage(map[string]any{"first": 2.5})
	assert.Error(t, err)
}

func TestDecodeFilterFull(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f, err := DecodeFilter(map[string]any{
		"category": "ACTION",
		"createdBetween": map[string]any{
			"start": start.Format(time.RFC3339),
			"end":   start.AddDate(0, 1, 0),
		},
		"taggedUsers": []any{"gPlake", "sSchmidt"},
		"searchText":  "gunbarrel",
	})
	require.NoError(t, err)
	require.NotNil(t, f.Category)
	assert.Equal(t, entity.CategoryAction, *f.Category)
	require.NotNil(t, f.CreatedBetween)
	assert.True(t, f.CreatedBetween.Start.Equal(start))
	assert.Equal(t, []string{"gPlake", "sSchmidt"}, f.TaggedUsers)
	require.NotNil(t, f.SearchText)
	assert.Equal(t, "gunbarrel", *f.SearchText)
}

func TestDecodeFilterRejectsUnknownCategory(t *testing.T) {
	_, err := DecodeFilter(map[string]any{"category": "BLURRY"})
	assert.Error(t, err)
}

func TestDecodeSort(t *testing.T) {
	s, err := DecodeSort(map[string]any{"sort": "DESCENDING", "sortBy": "name"})
	require.NoError(t, err)
	assert.Equal(t, entity.SortDescending, s.Direction)
	assert.Equal(t, entity.SortByName, s.Field)

	_, err = DecodeSort(map[string]any{"sort": "SIDEWAYS"})
	assert.Error(t, err)
}

func TestDecodeListArgs(t *testing.T) {
	la, err := DecodeListArgs(map[string]any{
		"paging":  map[string]any{"first": 25, "start": 0},
		"sorting": map[string]any{"sort": "ASCENDING", "sortBy": "created"},
	})
	require.NoError(t, err)
	assert.Nil(t, la.Filter)
	require.NotNil(t, la.Page)
	assert.Equal(t, 25, *la.Page.First)
	require.NotNil(t, la.Sort)
}
