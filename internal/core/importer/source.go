package importer

import (
	"context"
	"fmt"
	"strings"
)

// ExternalProduct one product as read from a commerce platform
type ExternalProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	ExternalURL string `json:"externalUrl"`
}

// Source reads the product list of a store
type Source interface {
	FetchProducts(ctx context.Context, storeDomain, credential string) ([]ExternalProduct, error)
	Name() string
}

// SimulatedSource returns a fixed sample catalogue for any store
type SimulatedSource struct{}

// NewSimulatedSource creates a SimulatedSource
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

// Name identifies the source
func (s *SimulatedSource) Name() string { return "simulated" }

// FetchProducts returns three sample products linked to storeDomain
func (s *SimulatedSource) FetchProducts(ctx context.Context, storeDomain, credential string) ([]ExternalProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := "https://" + normalizeDomain(storeDomain)
	samples := []struct{ name, description, handle string }{
		{"Gentle Foaming Cleanser", "A low-pH cleanser that removes oil without stripping the skin barrier.", "gentle-foaming-cleanser"},
		{"Niacinamide 10% Serum", "Balances oil production and visibly reduces redness.", "niacinamide-10-serum"},
		{"Barrier Repair Moisturiser", "Ceramide-rich cream that restores hydration overnight.", "barrier-repair-moisturiser"},
	}

	products := make([]ExternalProduct, 0, len(samples))
	for _, p := range samples {
		products = append(products, ExternalProduct{
			Name:        p.name,
			Description: p.description,
			ImageURL:    fmt.Sprintf("https://placehold.co/400x400?text=%s", strings.ReplaceAll(p.name, " ", "+")),
			ExternalURL: fmt.Sprintf("%s/products/%s", base, p.handle),
		})
	}
	return products, nil
}

// normalizeDomain strips scheme, path and trailing slashes
func normalizeDomain(domain string) string {
	domain = strings.TrimSpace(strings.ToLower(domain))
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	return domain
}
