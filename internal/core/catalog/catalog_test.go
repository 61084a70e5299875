package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/store"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { _ = s.Close() })
	return New(s, "test-app")
}

func TestRepository_CRUD(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	ctx := context.Background()

	id, err := c.Products.Create(ctx, common.Product{
		Name:              "Calming Serum",
		Description:       "Soothes",
		TargetIngredients: []string{"Niacinamide", "Zinc"},
	})
	require.NoError(t, err)

	got, err := c.Products.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, []string{"Niacinamide", "Zinc"}, got.TargetIngredients)

	got.Description = ""
	require.NoError(t, c.Products.Update(ctx, id, got))
	list, err := c.Products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Description)
	assert.Equal(t, "Calming Serum", list[0].Name)

	require.NoError(t, c.Products.Delete(ctx, id))
	_, err = c.Products.Get(ctx, id)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRepository_ValidatesNames(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Ingredients.Create(ctx, common.Ingredient{Name: "  "})
	assert.True(t, common.IsValidationError(err))
	_, err = c.Mappings.Create(ctx, common.Mapping{IngredientNames: []string{"Retinol"}})
	assert.True(t, common.IsValidationError(err))
}

func TestRepository_CollectionsAreScoped(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	ctx := context.Background()

	a := New(s, "shop-a")
	b := New(s, "shop-b")
	_, err := a.Concerns.Create(ctx, common.Concern{Name: "Acne"})
	require.NoError(t, err)

	list, err := b.Concerns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, "artifacts/shop-a/public/data/concerns", a.Concerns.Path())
}

func TestRepository_BatchDeleteContinuesPastFailures(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	ctx := context.Background()

	id1, err := c.Concerns.Create(ctx, common.Concern{Name: "Acne"})
	require.NoError(t, err)
	id2, err := c.Concerns.Create(ctx, common.Concern{Name: "Dryness"})
	require.NoError(t, err)

	results := c.Concerns.BatchDelete(ctx, []string{id1, "missing", id2})
	require.Len(t, results, 3)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, "missing", results[1].ID)
	assert.Empty(t, results[2].Error)

	list, err := c.Concerns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLive_TracksChanges(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Concerns.Create(ctx, common.Concern{Name: "Acne"})
	require.NoError(t, err)

	live := NewLive(c)
	require.NoError(t, live.Start(ctx))
	t.Cleanup(live.Stop)

	snap := live.Snapshot()
	require.Len(t, snap.Concerns, 1)
	assert.Equal(t, "Acne", snap.Concerns[0].Name)
	assert.Empty(t, snap.Ingredients)

	_, err = c.Ingredients.Create(ctx, common.Ingredient{Name: "Niacinamide"})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(live.Snapshot().Ingredients) == 1
	}, time.Second, 5*time.Millisecond)

	live.Stop()
	_, err = c.Ingredients.Create(ctx, common.Ingredient{Name: "Retinol"})
	require.NoError(t, err)
	assert.Len(t, live.Snapshot().Ingredients, 1)
}

func TestCatalog_Load(t *testing.T) {
	t.Parallel()
	c := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Mappings.Create(ctx, common.Mapping{ConcernName: "Acne", IngredientNames: []string{"Salicylic Acid"}})
	require.NoError(t, err)

	snap, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Mappings, 1)
	assert.Equal(t, []string{"Salicylic Acid"}, snap.Mappings[0].IngredientNames)
}
