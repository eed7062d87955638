package display

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpLogJSONRoundTrip(t *testing.T) {
	tree := NewMemoryTree()
	div := tree.CreateElement("div")
	div.SetAttribute("id", "x")
	div.ClearAttribute("id")
	tree.Root().AppendChild(div)
	div.AppendChild(tree.CreateTextNode("hi"))
	tree.Root().RemoveChild(div)

	ops := tree.Ops()
	require.NotEmpty(t, ops)

	data, err := json.Marshal(ops)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"op":"CreateElement"`)

	var decoded []Op
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ops, decoded)
}

func TestOpKindUnmarshalUnknown(t *testing.T) {
	var op Op
	err := json.Unmarshal([]byte(`{"op":"Explode","node":"n1"}`), &op)
	assert.ErrorContains(t, err, `unknown op kind "Explode"`)
}
