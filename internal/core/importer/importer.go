package importer

import (
	"context"
	"strings"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

// ProductMerger upserts product fields by id
type ProductMerger interface {
	MergeFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// ItemError one product that failed to import
type ItemError struct {
	ExternalURL string `json:"externalUrl"`
	Error       string `json:"error"`
}

// Result summary of one import run
type Result struct {
	Source   string      `json:"source"`
	Fetched  int         `json:"fetched"`
	Imported int         `json:"imported"`
	IDs      []string    `json:"ids"`
	Errors   []ItemError `json:"errors,omitempty"`
}

// Service imports products from a Source into the product collection
type Service struct {
	source   Source
	products ProductMerger
}

// NewService creates an import service
func NewService(source Source, products ProductMerger) *Service {
	return &Service{source: source, products: products}
}

// Import fetches the store's products and merges each under an id derived
// from its external URL, so re-imports update records instead of duplicating
// them. Only imported fields are written; curated fields such as target
// ingredients survive. Per-item failures are collected and do not stop the run.
func (s *Service) Import(ctx context.Context, storeDomain, credential string) (Result, error) {
	if strings.TrimSpace(storeDomain) == "" {
		return Result{}, common.NewValidationError("store domain is required")
	}
	if strings.TrimSpace(credential) == "" {
		return Result{}, common.NewValidationError("access token is required")
	}

	fetched, err := s.source.FetchProducts(ctx, storeDomain, credential)
	if err != nil {
		common.LogError("product fetch failed",
			zap.String("source", s.source.Name()),
			zap.String("store", storeDomain),
			zap.Error(err),
		)
		return Result{}, err
	}

	result := Result{
		Source:  s.source.Name(),
		Fetched: len(fetched),
		IDs:     []string{},
	}
	for _, p := range fetched {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.ExternalURL) == "" {
			result.Errors = append(result.Errors, ItemError{ExternalURL: p.ExternalURL, Error: "product name and url are required"})
			continue
		}

		id := common.StableID(p.ExternalURL)
		fields := map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"imageUrl":    p.ImageURL,
			"shopifyUrl":  p.ExternalURL,
		}
		if err := s.products.MergeFields(ctx, id, fields); err != nil {
			result.Errors = append(result.Errors, ItemError{ExternalURL: p.ExternalURL, Error: err.Error()})
			continue
		}
		result.Imported++
		result.IDs = append(result.IDs, id)
	}

	common.LogInfo("product import finished",
		zap.String("source", result.Source),
		zap.Int("fetched", result.Fetched),
		zap.Int("imported", result.Imported),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}
