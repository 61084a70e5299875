package importer

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	shopifyPageLimit = 250
	shopifyMaxPages  = 20
)

var (
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	spacePattern    = regexp.MustCompile(`\s+`)
	nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)
)

// ShopifySource reads products through the Shopify Admin REST API
type ShopifySource struct {
	client     *resty.Client
	apiVersion string
	baseURL    string // overrides https://{domain}, used by tests
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID       int64          `json:"id"`
	Title    string         `json:"title"`
	BodyHTML string         `json:"body_html"`
	Handle   string         `json:"handle"`
	Image    *shopifyImage  `json:"image"`
	Images   []shopifyImage `json:"images"`
}

type shopifyProductsResponse struct {
	Products []shopifyProduct `json:"products"`
}

// NewShopifySource creates a source for the given API version
func NewShopifySource(apiVersion string, timeout time.Duration) *ShopifySource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShopifySource{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		apiVersion: apiVersion,
	}
}

// WithBaseURL points the source at a fixed host instead of the store domain
func (s *ShopifySource) WithBaseURL(baseURL string) *ShopifySource {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Name identifies the source
func (s *ShopifySource) Name() string { return "shopify" }

// FetchProducts pages through /admin/api/{version}/products.json
func (s *ShopifySource) FetchProducts(ctx context.Context, storeDomain, credential string) ([]ExternalProduct, error) {
	domain := normalizeDomain(storeDomain)
	host := "https://" + domain
	if s.baseURL != "" {
		host = s.baseURL
	}

	url := fmt.Sprintf("%s/admin/api/%s/products.json?limit=%d", host, s.apiVersion, shopifyPageLimit)
	var products []ExternalProduct

	for page := 0; url != "" && page < shopifyMaxPages; page++ {
		resp, err := s.client.R().
			SetContext(ctx).
			SetHeader("X-Shopify-Access-Token", credential).
			Get(url)
		if err != nil {
			return nil, common.NewTransportError("shopify fetch", err)
		}

		switch resp.StatusCode() {
		case http.StatusOK:
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, common.ErrUnauthorized.Wrap(fmt.Errorf("shopify rejected the access token for %s", domain))
		default:
			return nil, common.NewTransportError("shopify fetch",
				fmt.Errorf("status %d: %s", resp.StatusCode(), resp.String()))
		}

		var body shopifyProductsResponse
		if err := common.ParseJSONBytes(resp.Body(), &body); err != nil {
			return nil, common.ErrImportFailed.Wrap(fmt.Errorf("decode products: %w", err))
		}
		for _, p := range body.Products {
			products = append(products, toExternal(domain, p))
		}

		url = nextPage(resp.Header().Get("Link"))
	}

	common.LogInfo("shopify products fetched",
		zap.String("store", domain),
		zap.Int("count", len(products)),
	)
	return products, nil
}

func toExternal(domain string, p shopifyProduct) ExternalProduct {
	image := ""
	if p.Image != nil {
		image = p.Image.Src
	} else if len(p.Images) > 0 {
		image = p.Images[0].Src
	}
	// the numeric id keeps handle-less products distinct
	slug := strings.TrimSpace(p.Handle)
	if slug == "" {
		slug = strconv.FormatInt(p.ID, 10)
	}
	return ExternalProduct{
		Name:        strings.TrimSpace(p.Title),
		Description: stripHTML(p.BodyHTML),
		ImageURL:    image,
		ExternalURL: fmt.Sprintf("https://%s/products/%s", domain, slug),
	}
}

func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// nextPage extracts the rel="next" URL of a Link header
func nextPage(link string) string {
	if m := nextLinkPattern.FindStringSubmatch(link); len(m) == 2 {
		return m[1]
	}
	return ""
}
