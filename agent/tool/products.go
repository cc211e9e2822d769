package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/storelane/shopassist/agent/contract"
)

const maxCatalogResponseBytes = 2 << 20

// Product mirrors one entry of the external catalog API.
type Product struct {
	ProductName string   `json:"productName"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Inventory   int      `json:"inventory"`
	Colors      []string `json:"colors"`
	Status      string   `json:"status"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

type ProductCatalogConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" default:"https://template-03-api.vercel.app/api/products"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// ProductCatalog fetches product data from the external HTTP API. Reads are
// side-effect free; identical calls against an unchanged source return
// identical payloads.
type ProductCatalog struct {
	url        string
	httpClient *http.Client
}

func NewProductCatalog(cfg ProductCatalogConfig) (*ProductCatalog, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("product catalog url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid product catalog url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ProductCatalog{
		url:        endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Fetch returns the serialized product collection, or an error-variant
// result carrying the "Error: <status>" marker the responders expect.
func (c *ProductCatalog) Fetch(ctx context.Context) contractx.LookupResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %v", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogResponseBytes))
	if err != nil {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %v", err)}
	}

	products, err := decodeProducts(raw)
	if err != nil {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %v", err)}
	}

	payload, err := json.Marshal(products)
	if err != nil {
		return contractx.LookupResult{Tool: ToolProductsInfo, Error: fmt.Sprintf("Error: %v", err)}
	}

	return contractx.LookupResult{
		Tool:    ToolProductsInfo,
		Payload: string(payload),
		Data:    products,
	}
}

// decodeProducts accepts either a bare array or an object wrapping the
// array under "products".
func decodeProducts(raw []byte) ([]Product, error) {
	var products []Product
	if err := json.Unmarshal(raw, &products); err == nil {
		return products, nil
	}

	var wrapped struct {
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Products == nil {
		return nil, errors.New("catalog payload is not a product collection")
	}
	return wrapped.Products, nil
}
