package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// InventoryClient wraps the inventory resource family: products,
// categories, suppliers and the AI-derived stock endpoints.
type InventoryClient struct {
	*Client
}

func NewInventoryClient(c *Client) *InventoryClient {
	return &InventoryClient{Client: c}
}

type Product struct {
	ID           int64   `json:"id"`
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	CategoryID   int64   `json:"category_id"`
	SupplierID   int64   `json:"supplier_id"`
	UnitPrice    float64 `json:"unit_price"`
	CostPrice    float64 `json:"cost_price"`
	Stock        int     `json:"stock"`
	ReorderLevel int     `json:"reorder_level"`
}

// ProductFilter narrows product listings. Zero values are omitted from the
// query string.
type ProductFilter struct {
	Search     string
	CategoryID int64
	LowStock   bool
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CategoryID != 0 {
		q.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	if f.LowStock {
		q.Set("low_stock", "true")
	}
	return q
}

func (i *InventoryClient) Products(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var out []Product
	if err := i.get(ctx, "/inventory/products", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) Product(ctx context.Context, id int64) (Product, error) {
	var out Product
	if err := i.get(ctx, fmt.Sprintf("/inventory/products/%d", id), nil, &out); err != nil {
		return Product{}, err
	}
	return out, nil
}

func (i *InventoryClient) CreateProduct(ctx context.Context, p Product) (Product, error) {
	var out Product
	if err := i.post(ctx, "/inventory/products", nil, p, &out); err != nil {
		return Product{}, err
	}
	i.wroteThrough(OpProductCreate)
	return out, nil
}

func (i *InventoryClient) UpdateProduct(ctx context.Context, id int64, p Product) (Product, error) {
	var out Product
	if err := i.put(ctx, fmt.Sprintf("/inventory/products/%d", id), nil, p, &out); err != nil {
		return Product{}, err
	}
	i.wroteThrough(OpProductUpdate)
	return out, nil
}

func (i *InventoryClient) DeleteProduct(ctx context.Context, id int64) error {
	if err := i.delete(ctx, fmt.Sprintf("/inventory/products/%d", id)); err != nil {
		return err
	}
	i.wroteThrough(OpProductDelete)
	return nil
}

// LowStock lists products at or below their reorder level.
func (i *InventoryClient) LowStock(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := i.get(ctx, "/inventory/products/low-stock/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) Analytics(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := i.get(ctx, "/inventory/products/analytics/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (i *InventoryClient) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := i.get(ctx, "/inventory/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) CreateCategory(ctx context.Context, c Category) (Category, error) {
	var out Category
	if err := i.post(ctx, "/inventory/categories", nil, c, &out); err != nil {
		return Category{}, err
	}
	i.wroteThrough(OpCategoryWrite)
	return out, nil
}

type Supplier struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (i *InventoryClient) Suppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	if err := i.get(ctx, "/inventory/suppliers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) CreateSupplier(ctx context.Context, s Supplier) (Supplier, error) {
	var out Supplier
	if err := i.post(ctx, "/inventory/suppliers", nil, s, &out); err != nil {
		return Supplier{}, err
	}
	i.wroteThrough(OpSupplierWrite)
	return out, nil
}

// StockShortagePredictions asks the AI layer which products are projected
// to run out within the horizon.
func (i *InventoryClient) StockShortagePredictions(ctx context.Context, daysAhead int) ([]map[string]any, error) {
	q := url.Values{}
	if daysAhead > 0 {
		q.Set("days_ahead", strconv.Itoa(daysAhead))
	}
	var out []map[string]any
	if err := i.get(ctx, "/inventory/ai/stock-shortage-predictions", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) ReorderRecommendations(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := i.get(ctx, "/inventory/ai/reorder-recommendations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *InventoryClient) Summary(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := i.post(ctx, "/inventory/ai/inventory-summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
