package pagination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
	assert.Equal(t, 25, NormalizeLimit(25))
	assert.Equal(t, DefaultPage, NormalizePage(-3))
	assert.Equal(t, 4, NormalizePage(4))
}

func TestOffsetAndMeta(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	assert.Equal(t, 40, p.Offset())

	meta := NewMeta(p, 41)
	assert.Equal(t, Meta{Total: 41, Page: 3, Limit: 20, TotalPages: 3}, meta)

	empty := NewMeta(Params{}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, DefaultLimit, empty.Limit)
}

func TestNewPageSerializesEmptyItems(t *testing.T) {
	page := NewPage[string](nil, Params{}, 0)
	raw, err := json.Marshal(page)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"pagination":{"total":0,"page":1,"limit":10,"totalPages":0}}`, string(raw))
}
