// Package store is the HTTP client for the external Product Store. All
// response-shape quirks of the store (bare arrays vs {products,pagination},
// legacy flat price fields) are normalized here; nothing above this layer
// branches on wire shape.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/config"
)

type Client struct {
	base  string
	token string
	hc    *http.Client
	log   zerolog.Logger
}

func NewClient(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		base:  cfg.StoreURL,
		token: cfg.StoreToken,
		hc:    &http.Client{Timeout: cfg.StoreTimeout},
		log:   logger.With().Str("component", "store").Logger(),
	}
}

// ListParentCategories returns the store's parent category names.
func (c *Client) ListParentCategories(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.getJSON(ctx, "/products/categories/parent", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// ListSubcategories returns the subcategory labels under a parent.
func (c *Client) ListSubcategories(ctx context.Context, parent string) ([]string, error) {
	var subs []string
	path := "/products/categories/" + url.PathEscape(parent) + "/subcategories"
	if err := c.getJSON(ctx, path, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// ProductsByParent fetches every product of a parent category.
func (c *Client) ProductsByParent(ctx context.Context, parent string) ([]model.Product, error) {
	body, err := c.get(ctx, "/products", url.Values{"parent": {parent}})
	if err != nil {
		return nil, err
	}
	page, err := decodeProductPage(body, 1, 0)
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

// CountByParent asks for a one-item page and reads the total off the
// pagination envelope.
func (c *Client) CountByParent(ctx context.Context, parent string) (int, error) {
	page, err := c.PageByParent(ctx, parent, 1, 1, "", "", "")
	if err != nil {
		return 0, err
	}
	return page.Pagination.TotalProducts, nil
}

// PageByParent fetches one catalog page of a parent category.
func (c *Client) PageByParent(ctx context.Context, parent string, page, limit int, priceType, subcategory, search string) (model.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if priceType != "" {
		q.Set("priceType", priceType)
	}
	if subcategory != "" {
		q.Set("subcategory", subcategory)
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/products/categories/" + url.PathEscape(parent) + "/products"
	body, err := c.get(ctx, path, q)
	if err != nil {
		return model.ProductPage{}, err
	}
	return decodeProductPage(body, page, limit)
}

// PageByPriceType fetches one page of the tier-wide catalog.
func (c *Client) PageByPriceType(ctx context.Context, priceType model.PriceType, page, limit int, search string) (model.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("search", search)
	}
	body, err := c.get(ctx, "/products/"+url.PathEscape(string(priceType)), q)
	if err != nil {
		return model.ProductPage{}, err
	}
	return decodeProductPage(body, page, limit)
}

// UpdateProductCategory moves one product to a new parent/subcategory pair.
// The admin bearer token is attached unconditionally.
func (c *Client) UpdateProductCategory(ctx context.Context, id, parent, subcategory string) (model.Product, error) {
	payload, _ := json.Marshal(map[string]string{
		"parentCategory": parent,
		"subcategory":    subcategory,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/products/"+url.PathEscape(id), bytes.NewReader(payload))
	if err != nil {
		return model.Product{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	body, err := c.do(req)
	if err != nil {
		return model.Product{}, err
	}
	// some store versions wrap the result as {product: {...}}; probe that
	// shape first, since a bare decode would accept the wrapper too and
	// yield a zero product
	var wrapped struct {
		Product *model.Product `json:"product"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Product != nil {
		return *wrapped.Product, nil
	}
	var p model.Product
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Product{}, fmt.Errorf("decode updated product: %w", err)
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("store %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("store read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("store error")
		return nil, fmt.Errorf("store %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}
