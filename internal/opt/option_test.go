package opt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name       Option[*string]  `json:"name"`
	PartnerIDs Option[[]string] `json:"partnerIds"`
	Visible    Option[bool]     `json:"visible"`
}

func TestOption_UnmarshalDistinguishesAbsentNullAndValue(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.False(t, p.Name.IsSet())
		assert.False(t, p.PartnerIDs.IsSet())
		assert.False(t, p.Visible.IsSet())
	})

	t.Run("explicit null clears", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{"name":null,"partnerIds":null}`), &p))
		assert.True(t, p.Name.IsSet())
		assert.Nil(t, p.Name.Value())
		assert.True(t, p.PartnerIDs.IsSet())
		assert.Empty(t, p.PartnerIDs.Value())
	})

	t.Run("explicit empty array", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{"partnerIds":[]}`), &p))
		ids, ok := p.PartnerIDs.Get()
		assert.True(t, ok)
		assert.NotNil(t, ids)
		assert.Len(t, ids, 0)
	})

	t.Run("values", func(t *testing.T) {
		var p patch
		require.NoError(t, json.Unmarshal([]byte(`{"name":"x","partnerIds":["a","b"],"visible":false}`), &p))
		if assert.NotNil(t, p.Name.Value()) {
			assert.Equal(t, "x", *p.Name.Value())
		}
		assert.Equal(t, []string{"a", "b"}, p.PartnerIDs.Value())
		v, ok := p.Visible.Get()
		assert.True(t, ok)
		assert.False(t, v)
	})

	t.Run("type mismatch is an error", func(t *testing.T) {
		var p patch
		assert.Error(t, json.Unmarshal([]byte(`{"visible":"yes"}`), &p))
	})
}

func TestOption_Helpers(t *testing.T) {
	assert.Equal(t, 5, None[int]().OrElse(5))
	assert.Equal(t, 0, Some(0).OrElse(5))

	b, err := json.Marshal(struct {
		A Option[int] `json:"a"`
		B Option[int] `json:"b"`
	}{A: Some(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(b))
}
