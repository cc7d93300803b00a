package catalog

import (
	"context"
	"net/http"
)

const productsPath = "/products/admin"

func productID(p Product) int64 { return p.ID }

// ListProducts returns every product, unpaged.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	raw, err := c.call(ctx, http.MethodGet, productsPath, nil, nil, false)
	if err != nil {
		return nil, err
	}
	return decodeList[Product](raw)
}

// GetProduct returns product id.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	raw, err := c.call(ctx, http.MethodGet, idPath(productsPath, id), nil, nil, false)
	if err != nil {
		return Product{}, err
	}
	return decodeEntity(raw, productID)
}

// CreateProduct creates a product.  The returned id is zero when the
// service acknowledged the write without echoing the entity.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	raw, err := c.write(ctx, "product", http.MethodPost, productsPath, in, true)
	if err != nil {
		return Product{}, err
	}
	return decodeEntity(raw, productID)
}

// UpdateProduct patches product id.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	raw, err := c.write(ctx, "product", http.MethodPatch, idPath(productsPath, id), in, true)
	if err != nil {
		return Product{}, err
	}
	return decodeEntity(raw, productID)
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	_, err := c.write(ctx, "product", http.MethodDelete, idPath(productsPath, id), nil, false)
	return err
}
