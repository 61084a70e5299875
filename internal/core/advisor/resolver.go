package advisor

import (
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"
)

// nameSet a set of names under common.FoldKey
type nameSet map[string]struct{}

func (s nameSet) add(name string) {
	if key := common.FoldKey(name); key != "" {
		s[key] = struct{}{}
	}
}

func (s nameSet) has(name string) bool {
	_, ok := s[common.FoldKey(name)]
	return ok
}

func (s nameSet) hasAny(names []string) bool {
	for _, n := range names {
		if s.has(n) {
			return true
		}
	}
	return false
}

// findMapping returns the first mapping for concern
func findMapping(mappings []common.Mapping, concern string) (common.Mapping, bool) {
	for _, m := range mappings {
		if common.SameName(m.ConcernName, concern) {
			return m, true
		}
	}
	return common.Mapping{}, false
}

// ResolveFromSelectedConcerns collects the mapped ingredient names of every
// selected concern and returns the ingredients and products that match them,
// in snapshot order. It never mutates the snapshot.
func ResolveFromSelectedConcerns(selected []string, snap catalog.Snapshot) common.Recommendation {
	names := nameSet{}
	for _, concern := range selected {
		if m, ok := findMapping(snap.Mappings, concern); ok {
			for _, n := range m.IngredientNames {
				names.add(n)
			}
		}
	}
	return recommend(names, snap.Ingredients, snap.Products)
}

func recommend(names nameSet, ingredients []common.Ingredient, products []common.Product) common.Recommendation {
	rec := common.Recommendation{
		Ingredients: []common.Ingredient{},
		Products:    []common.Product{},
	}
	if len(names) == 0 {
		return rec
	}
	for _, ing := range ingredients {
		if names.has(ing.Name) {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}
	rec.Products = matchProducts(names, products)
	return rec
}

func matchProducts(names nameSet, products []common.Product) []common.Product {
	out := []common.Product{}
	for _, p := range products {
		if names.hasAny(p.TargetIngredients) {
			out = append(out, p)
		}
	}
	return out
}
