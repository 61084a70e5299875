package advisor

import (
	"testing"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []common.SuggestedIngredient
	}{
		{
			name: "name and description pairs",
			text: "Salicylic Acid: Exfoliates pores, Niacinamide: Reduces redness",
			want: []common.SuggestedIngredient{
				{Name: "Salicylic Acid", Description: "Exfoliates pores"},
				{Name: "Niacinamide", Description: "Reduces redness"},
			},
		},
		{
			name: "names only",
			text: "Retinol, Vitamin C",
			want: []common.SuggestedIngredient{
				{Name: "Retinol", Description: ""},
				{Name: "Vitamin C", Description: ""},
			},
		},
		{
			name: "splits on the first colon only",
			text: "Vitamin C: Brightens: evens tone",
			want: []common.SuggestedIngredient{
				{Name: "Vitamin C", Description: "Brightens: evens tone"},
			},
		},
		{
			name: "empty names are discarded",
			text: " , : orphan description,Zinc:  ,  ",
			want: []common.SuggestedIngredient{
				{Name: "Zinc", Description: ""},
			},
		},
		{
			name: "empty text",
			text: "",
			want: []common.SuggestedIngredient{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseSuggestions(tt.text))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt("  oily skin ")
	assert.Contains(t, prompt, `"oily skin"`)
	assert.Contains(t, prompt, "3 to 5")
	assert.Contains(t, prompt, "Name: Description, Name: Description")
}
