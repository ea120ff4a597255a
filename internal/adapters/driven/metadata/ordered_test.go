package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered_PreservesInsertionOrder(t *testing.T) {
	o := newOrdered[int]()
	o.set("zeta", 1)
	o.set("alpha", 2)
	o.set("mid", 3)
	o.set("zeta", 4)

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":4,"alpha":2,"mid":3}`, string(data))

	back := newOrdered[int]()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, back.keys)
	v, ok := back.get("alpha")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestOrdered_UnmarshalNull(t *testing.T) {
	o := newOrdered[string]()
	o.set("a", "x")

	require.NoError(t, o.UnmarshalJSON([]byte("null")))
	assert.Equal(t, 0, o.len())
}

func TestOrdered_UnmarshalRejectsArray(t *testing.T) {
	o := newOrdered[string]()
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), o))
}

func TestOrdered_EmptyMarshal(t *testing.T) {
	data, err := json.Marshal(newOrdered[[]string]())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
