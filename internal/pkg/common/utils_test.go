package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableID(t *testing.T) {
	a := StableID("https://demo.myshopify.com/products/serum")
	b := StableID("  HTTPS://demo.myshopify.com/products/serum ")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, StableID("https://demo.myshopify.com/products/toner"))
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "salicylic acid", FoldKey("  Salicylic Acid "))
	assert.True(t, SameName("niacinamide", "NIACINAMIDE "))
	assert.False(t, SameName("Retinol", "Retinal"))
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "Acne, Redness", JoinNames([]string{" Acne", "", "  ", "Redness "}))
	assert.Equal(t, "", JoinNames(nil))
}

func TestFieldsRoundTrip(t *testing.T) {
	fields, err := ToFields(Product{ID: "p1", Name: "Serum", TargetIngredients: []string{"Niacinamide"}})
	require.NoError(t, err)
	assert.Equal(t, "Serum", fields["name"])

	var p Product
	require.NoError(t, FromFields(fields, &p))
	assert.Equal(t, []string{"Niacinamide"}, p.TargetIngredients)
}

func TestParseJSONBytes(t *testing.T) {
	var v map[string]int
	require.NoError(t, ParseJSONBytes([]byte(`{"a":1}`), &v))
	assert.Equal(t, 1, v["a"])

	assert.Error(t, ParseJSONBytes([]byte(`{"a":1} {"b":2}`), &v))
	assert.Error(t, ParseJSONBytes([]byte(``), &v))
}
