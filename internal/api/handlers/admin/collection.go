package admin

import (
	"context"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// collection is the untyped CRUD surface the admin routes need
type collection interface {
	list(ctx context.Context) (interface{}, error)
	create(c *gin.Context) (string, error)
	update(c *gin.Context, id string) error
	remove(ctx context.Context, id string) error
	batchDelete(ctx context.Context, ids []string) []catalog.BatchResult
}

type repoCollection[T any] struct {
	repo *catalog.Repository[T]
}

func newCollection[T any](repo *catalog.Repository[T]) collection {
	return repoCollection[T]{repo: repo}
}

func (r repoCollection[T]) list(ctx context.Context) (interface{}, error) {
	items, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r repoCollection[T]) bind(c *gin.Context) (T, error) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		return item, common.NewValidationError("invalid request body: " + err.Error())
	}
	return item, nil
}

func (r repoCollection[T]) create(c *gin.Context) (string, error) {
	item, err := r.bind(c)
	if err != nil {
		return "", err
	}
	return r.repo.Create(c.Request.Context(), item)
}

func (r repoCollection[T]) update(c *gin.Context, id string) error {
	item, err := r.bind(c)
	if err != nil {
		return err
	}
	return r.repo.Update(c.Request.Context(), id, item)
}

func (r repoCollection[T]) remove(ctx context.Context, id string) error {
	return r.repo.Delete(ctx, id)
}

func (r repoCollection[T]) batchDelete(ctx context.Context, ids []string) []catalog.BatchResult {
	return r.repo.BatchDelete(ctx, ids)
}
