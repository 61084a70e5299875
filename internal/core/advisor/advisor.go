package advisor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IngredientStore persists ingredients
type IngredientStore interface {
	List(ctx context.Context) ([]common.Ingredient, error)
	Create(ctx context.Context, item common.Ingredient) (string, error)
}

// MappingStore reads and rewrites mappings
type MappingStore interface {
	Get(ctx context.Context, id string) (common.Mapping, error)
	Update(ctx context.Context, id string, item common.Mapping) error
}

// Advisor resolves free-text concerns through the generator and serves the
// admin suggestion tools
type Advisor struct {
	generator   provider.Generator
	ingredients IngredientStore
	mappings    MappingStore
}

// New creates an Advisor
func New(generator provider.Generator, ingredients IngredientStore, mappings MappingStore) *Advisor {
	return &Advisor{
		generator:   generator,
		ingredients: ingredients,
		mappings:    mappings,
	}
}

// concernText picks the trimmed free text, falling back to the selected names
func concernText(text string, selected []string) (string, error) {
	if t := strings.TrimSpace(text); t != "" {
		return t, nil
	}
	if joined := common.JoinNames(selected); joined != "" {
		return joined, nil
	}
	return "", common.NewValidationError("no concern provided")
}

// suggest runs prompt, generation and parsing. A malformed response yields no suggestions.
func (a *Advisor) suggest(ctx context.Context, concern string) ([]common.SuggestedIngredient, error) {
	text, err := a.generator.Generate(ctx, BuildPrompt(concern))
	if err != nil {
		if errors.Is(err, common.ErrMalformedResponse) {
			common.LogInfo("generation returned no suggestion", zap.String("concern", concern))
			return []common.SuggestedIngredient{}, nil
		}
		return nil, err
	}
	return ParseSuggestions(text), nil
}

// ResolveFromFreeText asks the generator for ingredients addressing the concern,
// persists the ones not yet known, and recommends the parsed ingredients plus
// every product targeting a known or parsed ingredient. The Outcome is
// Resolved or Empty on success and Failed alongside a transport error. Empty
// input returns a ValidationError before any network call.
func (a *Advisor) ResolveFromFreeText(ctx context.Context, text string, selected []string, snap catalog.Snapshot) (Outcome, error) {
	concern, err := concernText(text, selected)
	if err != nil {
		return Outcome{State: StateIdle, Message: err.Error(), Recommendation: emptyRecommendation()}, err
	}

	parsed, err := a.suggest(ctx, concern)
	if err != nil {
		common.LogError("free text resolution failed", zap.String("concern", concern), zap.Error(err))
		return failed(), wrapTransport("generate", err)
	}
	if len(parsed) == 0 {
		common.LogInfo("free text resolved", zap.String("concern", concern), zap.String("state", string(StateEmpty)))
		return emptyOutcome(), nil
	}

	existing := make(map[string]common.Ingredient, len(snap.Ingredients))
	for _, ing := range snap.Ingredients {
		key := common.FoldKey(ing.Name)
		if _, ok := existing[key]; !ok {
			existing[key] = ing
		}
	}

	// one entry per folded name, first occurrence wins
	seen := nameSet{}
	unique := make([]common.Ingredient, 0, len(parsed))
	for _, s := range parsed {
		if seen.has(s.Name) {
			continue
		}
		seen.add(s.Name)
		ing := common.Ingredient{Name: s.Name, Description: s.Description}
		if known, ok := existing[common.FoldKey(s.Name)]; ok {
			ing.ID = known.ID
		}
		unique = append(unique, ing)
	}

	newIDs, err := a.addMissing(ctx, unique, existing)
	if err != nil {
		common.LogError("persisting suggested ingredients failed", zap.String("concern", concern), zap.Error(err))
		return failed(), wrapTransport("add ingredient", err)
	}

	union := nameSet{}
	for key := range existing {
		union[key] = struct{}{}
	}
	for _, ing := range unique {
		union.add(ing.Name)
	}

	rec := common.Recommendation{
		Ingredients: []common.Ingredient{},
		Products:    matchProducts(union, snap.Products),
	}
	for _, ing := range unique {
		if union.has(ing.Name) {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}

	outcome := Outcome{
		State:            StateResolved,
		Recommendation:   rec,
		NewIngredientIDs: newIDs,
	}
	if len(rec.Ingredients) == 0 && len(rec.Products) == 0 {
		outcome.State = StateEmpty
		outcome.Message = MessageNoResults
	}

	common.LogInfo("free text resolved",
		zap.String("concern", concern),
		zap.String("state", string(outcome.State)),
		zap.Int("ingredients", len(rec.Ingredients)),
		zap.Int("products", len(rec.Products)),
		zap.Int("created", len(newIDs)),
	)
	return outcome, nil
}

// addMissing creates every ingredient absent from existing, concurrently, and
// waits for all of them. Created ids are written back into items.
func (a *Advisor) addMissing(ctx context.Context, items []common.Ingredient, existing map[string]common.Ingredient) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var ids []string
	for i := range items {
		if _, ok := existing[common.FoldKey(items[i].Name)]; ok {
			continue
		}
		i := i
		g.Go(func() error {
			id, err := a.ingredients.Create(gctx, common.Ingredient{
				Name:        items[i].Name,
				Description: items[i].Description,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			items[i].ID = id
			ids = append(ids, id)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// SuggestIngredients returns parsed suggestions for a concern name without persisting anything
func (a *Advisor) SuggestIngredients(ctx context.Context, concern string) ([]common.SuggestedIngredient, error) {
	concern = strings.TrimSpace(concern)
	if concern == "" {
		return nil, common.NewValidationError("no concern provided")
	}
	suggestions, err := a.suggest(ctx, concern)
	if err != nil {
		return nil, wrapTransport("generate", err)
	}
	return suggestions, nil
}

// PromoteSuggestion stores s as an Ingredient unless one with the same name
// exists, in which case the existing id is returned with created=false
func (a *Advisor) PromoteSuggestion(ctx context.Context, s common.SuggestedIngredient) (string, bool, error) {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return "", false, common.NewValidationError("ingredient name is required")
	}

	current, err := a.ingredients.List(ctx)
	if err != nil {
		return "", false, err
	}
	for _, ing := range current {
		if common.SameName(ing.Name, name) {
			return ing.ID, false, nil
		}
	}

	id, err := a.ingredients.Create(ctx, common.Ingredient{
		Name:        name,
		Description: strings.TrimSpace(s.Description),
	})
	if err != nil {
		return "", false, err
	}
	common.LogInfo("suggestion promoted", zap.String("ingredient", name), zap.String("id", id))
	return id, true, nil
}

// AddSuggestionToMapping appends name to the mapping's ingredient list unless
// already present. It returns the resulting mapping and whether it changed.
func (a *Advisor) AddSuggestionToMapping(ctx context.Context, mappingID, name string) (common.Mapping, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return common.Mapping{}, false, common.NewValidationError("ingredient name is required")
	}

	m, err := a.mappings.Get(ctx, mappingID)
	if err != nil {
		return common.Mapping{}, false, err
	}
	for _, existing := range m.IngredientNames {
		if common.SameName(existing, name) {
			return m, false, nil
		}
	}

	m.IngredientNames = append(m.IngredientNames, name)
	if err := a.mappings.Update(ctx, mappingID, m); err != nil {
		return common.Mapping{}, false, err
	}
	return m, true, nil
}

func emptyRecommendation() common.Recommendation {
	return common.Recommendation{
		Ingredients: []common.Ingredient{},
		Products:    []common.Product{},
	}
}

func emptyOutcome() Outcome {
	return Outcome{State: StateEmpty, Message: MessageNoResults, Recommendation: emptyRecommendation()}
}

func failed() Outcome {
	return Outcome{State: StateFailed, Message: MessageGenerationFailed, Recommendation: emptyRecommendation()}
}

// wrapTransport keeps transport and custom errors as they are and marks
// anything else as a transport failure
func wrapTransport(op string, err error) error {
	var custom *common.CustomError
	if common.IsTransportError(err) || errors.As(err, &custom) || common.IsValidationError(err) {
		return err
	}
	return common.NewTransportError(op, err)
}
