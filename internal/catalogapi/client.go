// Package catalogapi fetches the external product catalog and exposes it as
// a product catalog for enrichment.
package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// DefaultURL is the products endpoint used when none is configured.
const DefaultURL = "https://dummyjson.com/products?limit=100"

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// ErrUnexpectedStatus is returned for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status from product API")

// Product is one element of the API's products array.
type Product struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Rating   float64 `json:"rating"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

// Client talks to the product API.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client. Empty url and zero timeout use the defaults.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchProducts performs one GET against the products endpoint.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d - %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	if payload.Products == nil {
		return []Product{}, nil
	}
	return payload.Products, nil
}

// ProductInfo is the per-id entry of a product mapping.
type ProductInfo struct {
	Title    string
	Category string
	Brand    string
	Rating   float64
}

// CreateProductMapping indexes products by numeric id. Later duplicates win.
func CreateProductMapping(products []Product) map[int]ProductInfo {
	mapping := make(map[int]ProductInfo, len(products))
	for _, p := range products {
		mapping[p.ID] = ProductInfo{
			Title:    p.Title,
			Category: p.Category,
			Brand:    p.Brand,
			Rating:   p.Rating,
		}
	}
	return mapping
}

// MappingCatalog resolves sales ProductIDs ("P101") against a product
// mapping keyed by numeric id (101).
type MappingCatalog struct {
	mapping map[int]ProductInfo
}

// NewMappingCatalog wraps a mapping built by CreateProductMapping.
func NewMappingCatalog(mapping map[int]ProductInfo) *MappingCatalog {
	return &MappingCatalog{mapping: mapping}
}

// Lookup implements enrichment.ProductCatalog. IDs without the "P" prefix
// or a numeric suffix are misses, not errors.
func (m *MappingCatalog) Lookup(productID string) (types.Enrichment, bool, error) {
	if !strings.HasPrefix(productID, "P") {
		return types.Enrichment{}, false, nil
	}

	id, err := strconv.Atoi(strings.TrimPrefix(productID, "P"))
	if err != nil {
		return types.Enrichment{}, false, nil
	}

	info, ok := m.mapping[id]
	if !ok {
		return types.Enrichment{}, false, nil
	}

	return types.Enrichment{
		Category: info.Category,
		Brand:    info.Brand,
		Rating:   info.Rating,
	}, true, nil
}

// Len returns the number of mapped products.
func (m *MappingCatalog) Len() int {
	return len(m.mapping)
}
