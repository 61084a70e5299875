package catalog

import (
	"context"
	"fmt"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/store"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// BatchResult outcome of deleting one id; Error is empty on success
type BatchResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Repository typed access to one collection
type Repository[T any] struct {
	store    store.Store
	path     string
	setID    func(*T, string)
	validate func(T) error
}

func newRepository[T any](s store.Store, path string, setID func(*T, string), validate func(T) error) *Repository[T] {
	return &Repository[T]{
		store:    s,
		path:     path,
		setID:    setID,
		validate: validate,
	}
}

// Path returns the collection path
func (r *Repository[T]) Path() string {
	return r.path
}

func (r *Repository[T]) decode(docs []store.Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := common.FromFields(doc.Data, &item); err != nil {
			common.LogWarn("skipping undecodable document",
				zap.String("collection", r.path),
				zap.String("id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		r.setID(&item, doc.ID)
		out = append(out, item)
	}
	return out
}

func (r *Repository[T]) encode(item T) (map[string]interface{}, error) {
	if r.validate != nil {
		if err := r.validate(item); err != nil {
			return nil, err
		}
	}
	fields, err := common.ToFields(item)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", r.path, err)
	}
	delete(fields, "id")
	return fields, nil
}

// List returns every record in store order
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	docs, err := r.store.List(ctx, r.path)
	if err != nil {
		return nil, err
	}
	return r.decode(docs), nil
}

// Get returns one record
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	doc, err := r.store.Get(ctx, r.path, id)
	if err != nil {
		return item, err
	}
	if err := common.FromFields(doc.Data, &item); err != nil {
		return item, fmt.Errorf("decode %s/%s: %w", r.path, id, err)
	}
	r.setID(&item, doc.ID)
	return item, nil
}

// Create stores item and returns its id
func (r *Repository[T]) Create(ctx context.Context, item T) (string, error) {
	fields, err := r.encode(item)
	if err != nil {
		return "", err
	}
	return r.store.Create(ctx, r.path, fields)
}

// Update overwrites the fields of an existing record
func (r *Repository[T]) Update(ctx context.Context, id string, item T) error {
	fields, err := r.encode(item)
	if err != nil {
		return err
	}
	return r.store.Update(ctx, r.path, id, fields)
}

// Merge upserts item under id
func (r *Repository[T]) Merge(ctx context.Context, id string, item T) error {
	fields, err := r.encode(item)
	if err != nil {
		return err
	}
	return r.store.Merge(ctx, r.path, id, fields)
}

// MergeFields upserts only the given fields under id, leaving the others untouched
func (r *Repository[T]) MergeFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.store.Merge(ctx, r.path, id, fields)
}

// Delete removes one record
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.path, id)
}

// BatchDelete deletes each id in turn, continuing past failures
func (r *Repository[T]) BatchDelete(ctx context.Context, ids []string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		result := BatchResult{ID: id}
		if err := r.store.Delete(ctx, r.path, id); err != nil {
			result.Error = err.Error()
			common.LogWarn("batch delete item failed",
				zap.String("collection", r.path),
				zap.String("id", id),
				zap.Error(err),
			)
		}
		results = append(results, result)
	}
	return results
}

// Subscribe delivers the decoded collection now and after every change
func (r *Repository[T]) Subscribe(ctx context.Context, fn func([]T)) (store.Unsubscribe, error) {
	return r.store.Subscribe(ctx, r.path, func(docs []store.Document) {
		fn(r.decode(docs))
	})
}
