package common

// Concern a customer-selectable skin concern
type Concern struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Ingredient an active ingredient, created by staff or by accepting a suggestion
type Ingredient struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product a sellable item; TargetIngredients holds ingredient names
type Product struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	ImageURL          string   `json:"imageUrl"`
	ShopifyURL        string   `json:"shopifyUrl"`
	TargetIngredients []string `json:"targetIngredients"`
}

// Mapping links one concern to the ingredient names that address it
type Mapping struct {
	ID              string   `json:"id,omitempty"`
	ConcernName     string   `json:"concernName"`
	IngredientNames []string `json:"ingredientNames"`
}

// SuggestedIngredient a generated suggestion, not persisted until promoted
type SuggestedIngredient struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recommendation resolver output
type Recommendation struct {
	Ingredients []Ingredient `json:"recommendedIngredients"`
	Products    []Product    `json:"recommendedProducts"`
}
