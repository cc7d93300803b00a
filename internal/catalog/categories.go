package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const categoriesPath = "/categories"

func categoryID(c Category) int64 { return c.ID }

// ListCategories returns one page of categories, optionally filtered by
// name.
func (c *Client) ListCategories(ctx context.Context, p ListParams) (Page[Category], error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Name != "" {
		q.Set("name", p.Name)
	}
	raw, err := c.call(ctx, http.MethodGet, categoriesPath, q, nil, false)
	if err != nil {
		return Page[Category]{}, err
	}
	var page Page[Category]
	if err := json.Unmarshal(raw, &page); err != nil {
		return Page[Category]{}, fmt.Errorf("catalog: decode categories: %w", err)
	}
	if page.Items == nil {
		page.Items = []Category{}
	}
	if page.Meta.Total == 0 {
		page.Meta.Total = len(page.Items)
	}
	return page, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	raw, err := c.write(ctx, "category", http.MethodPost, categoriesPath, in, true)
	if err != nil {
		return Category{}, err
	}
	return decodeEntity(raw, categoryID)
}

// UpdateCategory patches category id.
func (c *Client) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	raw, err := c.write(ctx, "category", http.MethodPatch, idPath(categoriesPath, id), in, true)
	if err != nil {
		return Category{}, err
	}
	return decodeEntity(raw, categoryID)
}

// DeleteCategory removes category id.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.write(ctx, "category", http.MethodDelete, idPath(categoriesPath, id), nil, false)
	return err
}
