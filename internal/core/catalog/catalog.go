package catalog

import (
	"strings"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/store"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"
)

// collection names under the application scope
const (
	CollectionConcerns    = "concerns"
	CollectionIngredients = "ingredients"
	CollectionProducts    = "products"
	CollectionMappings    = "mappings"
)

// Catalog groups the four curated collections
type Catalog struct {
	Concerns    *Repository[common.Concern]
	Ingredients *Repository[common.Ingredient]
	Products    *Repository[common.Product]
	Mappings    *Repository[common.Mapping]
	store       store.Store
}

// New builds repositories scoped to appID
func New(s store.Store, appID string) *Catalog {
	return &Catalog{
		Concerns: newRepository(s, store.CollectionPath(appID, CollectionConcerns),
			func(c *common.Concern, id string) { c.ID = id },
			func(c common.Concern) error { return requireName(c.Name, "concern name") }),
		Ingredients: newRepository(s, store.CollectionPath(appID, CollectionIngredients),
			func(i *common.Ingredient, id string) { i.ID = id },
			func(i common.Ingredient) error { return requireName(i.Name, "ingredient name") }),
		Products: newRepository(s, store.CollectionPath(appID, CollectionProducts),
			func(p *common.Product, id string) { p.ID = id },
			func(p common.Product) error { return requireName(p.Name, "product name") }),
		Mappings: newRepository(s, store.CollectionPath(appID, CollectionMappings),
			func(m *common.Mapping, id string) { m.ID = id },
			func(m common.Mapping) error { return requireName(m.ConcernName, "concern name") }),
		store: s,
	}
}

// Store returns the backing store
func (c *Catalog) Store() store.Store {
	return c.store
}

// Collections lists the collection names accepted by the admin routes
func Collections() []string {
	return []string{CollectionConcerns, CollectionIngredients, CollectionProducts, CollectionMappings}
}

func requireName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return common.NewValidationError(field + " is required")
	}
	return nil
}
