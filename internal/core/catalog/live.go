package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/store"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// Snapshot an immutable view of all four collections
type Snapshot struct {
	Concerns    []common.Concern
	Ingredients []common.Ingredient
	Products    []common.Product
	Mappings    []common.Mapping
}

// Load reads a one-off snapshot
func (c *Catalog) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Concerns, err = c.Concerns.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load concerns: %w", err)
	}
	if snap.Ingredients, err = c.Ingredients.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load ingredients: %w", err)
	}
	if snap.Products, err = c.Products.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load products: %w", err)
	}
	if snap.Mappings, err = c.Mappings.List(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("load mappings: %w", err)
	}
	return snap, nil
}

// Live keeps a snapshot current through live queries on every collection
type Live struct {
	catalog *Catalog

	mu    sync.RWMutex
	snap  Snapshot
	unsub []store.Unsubscribe
}

// NewLive creates a holder; call Start to begin listening
func NewLive(c *Catalog) *Live {
	return &Live{catalog: c}
}

// Start subscribes to all collections; each subscription delivers its initial set before Start returns
func (l *Live) Start(ctx context.Context) error {
	subs := []func() (store.Unsubscribe, error){
		func() (store.Unsubscribe, error) {
			return l.catalog.Concerns.Subscribe(ctx, func(items []common.Concern) {
				l.mu.Lock()
				l.snap.Concerns = items
				l.mu.Unlock()
			})
		},
		func() (store.Unsubscribe, error) {
			return l.catalog.Ingredients.Subscribe(ctx, func(items []common.Ingredient) {
				l.mu.Lock()
				l.snap.Ingredients = items
				l.mu.Unlock()
			})
		},
		func() (store.Unsubscribe, error) {
			return l.catalog.Products.Subscribe(ctx, func(items []common.Product) {
				l.mu.Lock()
				l.snap.Products = items
				l.mu.Unlock()
			})
		},
		func() (store.Unsubscribe, error) {
			return l.catalog.Mappings.Subscribe(ctx, func(items []common.Mapping) {
				l.mu.Lock()
				l.snap.Mappings = items
				l.mu.Unlock()
			})
		},
	}

	for _, sub := range subs {
		unsub, err := sub()
		if err != nil {
			l.Stop()
			return fmt.Errorf("start live catalog: %w", err)
		}
		l.mu.Lock()
		l.unsub = append(l.unsub, unsub)
		l.mu.Unlock()
	}

	snap := l.Snapshot()
	common.LogInfo("live catalog started",
		zap.Int("concerns", len(snap.Concerns)),
		zap.Int("ingredients", len(snap.Ingredients)),
		zap.Int("products", len(snap.Products)),
		zap.Int("mappings", len(snap.Mappings)),
	)
	return nil
}

// Snapshot returns the current view. Slices are replaced wholesale on change, never mutated.
func (l *Live) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Stop ends every subscription
func (l *Live) Stop() {
	l.mu.Lock()
	unsub := l.unsub
	l.unsub = nil
	l.mu.Unlock()

	for _, fn := range unsub {
		fn()
	}
}
