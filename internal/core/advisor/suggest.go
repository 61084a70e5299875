package advisor

import (
	"fmt"
	"strings"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"
)

const promptTemplate = `You are a skincare ingredient expert.
Suggest 3 to 5 skincare ingredients that address this concern: "%s".
For each ingredient write a one to two sentence description of how it helps.
Reply with a single line in exactly this format and nothing else:
Name: Description, Name: Description, ...
Do not use commas or colons inside names or descriptions.`

// BuildPrompt renders the ingredient suggestion prompt for concern
func BuildPrompt(concern string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(concern))
}

// ParseSuggestions reads "Name: Description, Name: Description" text. Items
// are split on commas, then on their first colon; an item without a colon is
// a bare name. Empty names are dropped.
func ParseSuggestions(text string) []common.SuggestedIngredient {
	out := []common.SuggestedIngredient{}
	for _, item := range strings.Split(text, ",") {
		name, description, _ := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, common.SuggestedIngredient{
			Name:        name,
			Description: strings.TrimSpace(description),
		})
	}
	return out
}
