// internal/catalog/types.go
//
// Wire types of the catalog service.  JSON names follow the service's
// camelCase DTOs.  Input types carry pointers where the service treats a
// missing field differently from a zero value.

package catalog

// Image is an image reference the catalog returns alongside an entity.
type Image struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Category is a catalog category.
type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	FullName    string  `json:"fullName,omitempty"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	ParentID    *int64  `json:"parentId,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
	Images      []Image `json:"images,omitempty"`
}

// CategoryInput is the create/update payload.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	FullName    string `json:"fullName,omitempty"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parentId,omitempty"`
	SortOrder   *int   `json:"sortOrder,omitempty"`
}

// Product is a catalog product as the admin endpoints return it.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	FullName    string  `json:"fullName,omitempty"`
	Slug        string  `json:"slug"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
	SortOrder   int     `json:"sortOrder"`
	Images      []Image `json:"images,omitempty"`
}

// ProductInput is the create/update payload.
type ProductInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"categoryId"`
	FullName    string  `json:"fullName,omitempty"`
	Description string  `json:"description,omitempty"`
	SortOrder   *int    `json:"sortOrder,omitempty"`
}

// Branch is a physical store.
type Branch struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// BranchInput is the create/update payload.
type BranchInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	Phone       string `json:"phone,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// BranchProduct binds a product to a branch with a local price and stock.
type BranchProduct struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	BranchID  int64   `json:"branchId"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	IsActive  bool    `json:"isActive"`
}

// BranchProductInput creates a binding.
type BranchProductInput struct {
	ProductID int64   `json:"productId"`
	BranchID  int64   `json:"branchId"`
	Price     float64 `json:"price"`
	Stock     *int    `json:"stock,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// BranchProductPatch updates a binding.  The pair itself is immutable.
type BranchProductPatch struct {
	Price    *float64 `json:"price,omitempty"`
	Stock    *int     `json:"stock,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// Meta describes one page of a paged list.
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// Page is the {items, meta} envelope of paged lists.
type Page[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// ListParams filters a paged list.  Zero fields are omitted.
type ListParams struct {
	Page  int
	Limit int
	Name  string
}
