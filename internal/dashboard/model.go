package dashboard

import (
	"bytes"
	"encoding/json"
)

// SeriesPoint is one bucket of a time series rendered on the landing screen.
type SeriesPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Alert flags a product at or below its reorder level.
type Alert struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
}

// OrderSummary is the trimmed order shape shown in the recent-orders list.
type OrderSummary struct {
	ID       int64   `json:"id"`
	Customer string  `json:"customer"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
}

// Model is the normalized dashboard aggregate. Every subtree is optional
// in the wire payload; absence means "no data", never an error.
type Model struct {
	KPIs            map[string]float64
	SalesSeries     []SeriesPoint
	FinanceSeries   []SeriesPoint
	InventoryAlerts []Alert
	RecentOrders    []OrderSummary
}

// Empty returns a model renderers can format without nil checks.
func Empty() Model {
	return Model{KPIs: map[string]float64{}}
}

// KPI reads a named metric, treating a missing field as zero so absent
// optional values never crash formatting.
func (m Model) KPI(name string) float64 {
	return m.KPIs[name]
}

// IsZero reports whether the model carries no data at all.
func (m Model) IsZero() bool {
	return len(m.KPIs) == 0 &&
		len(m.SalesSeries) == 0 &&
		len(m.FinanceSeries) == 0 &&
		len(m.InventoryAlerts) == 0 &&
		len(m.RecentOrders) == 0
}

// Decode parses an aggregate payload defensively. Subtrees are decoded
// independently: a malformed sales series does not discard the KPIs that
// arrived next to it. Decode never fails; the worst payload produces an
// empty model.
func Decode(raw json.RawMessage) Model {
	m := Empty()
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return m
	}

	var subtrees map[string]json.RawMessage
	if err := json.Unmarshal(raw, &subtrees); err != nil {
		return m
	}

	if kpiRaw, ok := subtrees["kpis"]; ok {
		var kpis map[string]json.Number
		if json.Unmarshal(kpiRaw, &kpis) == nil {
			for name, num := range kpis {
				if v, err := num.Float64(); err == nil {
					m.KPIs[name] = v
				}
			}
		}
	}

	decodeSubtree(subtrees, "sales_series", &m.SalesSeries)
	decodeSubtree(subtrees, "finance_series", &m.FinanceSeries)
	decodeSubtree(subtrees, "inventory_alerts", &m.InventoryAlerts)
	decodeSubtree(subtrees, "recent_orders", &m.RecentOrders)

	return m
}

func decodeSubtree[T any](subtrees map[string]json.RawMessage, key string, out *[]T) {
	raw, ok := subtrees[key]
	if !ok {
		return
	}
	var parsed []T
	if json.Unmarshal(raw, &parsed) == nil {
		*out = parsed
	}
}
