package devserver

import (
	"net/http"
	"time"
)

// aggregateWindow is the rolling period both dashboard aggregates cover.
const aggregateWindow = 30 * 24 * time.Hour

func (s *Server) salesSeries(orders []Order) []map[string]any {
	byWeek := map[string]float64{}
	for _, o := range orders {
		week := o.CreatedAt.Format("2006-01-02")
		byWeek[week] += o.Total
	}
	series := make([]map[string]any, 0, len(byWeek))
	for period, total := range byWeek {
		series = append(series, map[string]any{"period": period, "value": total})
	}
	return series
}

// handlePersonalDashboard serves the always-available per-user aggregate.
func (s *Server) handlePersonalDashboard(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-aggregateWindow)

	orders, err := s.store.Orders(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	lowStock, err := s.store.Products(true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	employees, err := s.store.Employees()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var revenue float64
	for _, o := range orders {
		revenue += o.Total
	}
	activeEmployees := 0
	for _, e := range employees {
		if e.IsActive {
			activeEmployees++
		}
	}

	alerts := make([]map[string]any, 0, len(lowStock))
	for _, p := range lowStock {
		alerts = append(alerts, map[string]any{
			"product_id":    p.ID,
			"name":          p.Name,
			"stock":         p.Stock,
			"reorder_level": p.ReorderLevel,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"kpis": map[string]any{
			"total_revenue_30d": revenue,
			"order_count_30d":   len(orders),
			"active_employees":  activeEmployees,
			"low_stock_items":   len(lowStock),
		},
		"sales_series":     s.salesSeries(orders),
		"inventory_alerts": alerts,
	})
}

// handleAdminDashboard serves the privileged cross-module aggregate. The
// route is role-gated; reaching here implies an Admin principal.
func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-aggregateWindow)

	orders, err := s.store.Orders(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	expenses, err := s.store.Expenses(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	products, err := s.store.Products(false)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	lowStock, err := s.store.Products(true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	employees, err := s.store.Employees()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var revenue, totalExpenses, inventoryValue float64
	for _, o := range orders {
		revenue += o.Total
	}
	for _, e := range expenses {
		totalExpenses += e.Amount
	}
	for _, p := range products {
		inventoryValue += p.CostPrice * float64(p.Stock)
	}
	activeEmployees := 0
	for _, e := range employees {
		if e.IsActive {
			activeEmployees++
		}
	}

	profitMargin := 0.0
	if revenue > 0 {
		profitMargin = (revenue - totalExpenses) / revenue * 100
	}

	financeSeries := make([]map[string]any, 0, len(expenses))
	for _, e := range expenses {
		financeSeries = append(financeSeries, map[string]any{
			"period": e.ExpenseDate.Format("2006-01-02"),
			"value":  e.Amount,
		})
	}

	recentLimit := len(orders)
	if recentLimit > 5 {
		recentLimit = 5
	}
	recent := make([]map[string]any, 0, recentLimit)
	for _, o := range orders[:recentLimit] {
		recent = append(recent, map[string]any{
			"id":       o.ID,
			"customer": o.CustomerName,
			"total":    o.Total,
			"status":   o.Status,
		})
	}

	alerts := make([]map[string]any, 0, len(lowStock))
	for _, p := range lowStock {
		alerts = append(alerts, map[string]any{
			"product_id":    p.ID,
			"name":          p.Name,
			"stock":         p.Stock,
			"reorder_level": p.ReorderLevel,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"kpis": map[string]any{
			"total_revenue_30d":     revenue,
			"order_count_30d":       len(orders),
			"active_employees":      activeEmployees,
			"low_stock_items":       len(lowStock),
			"net_profit_30d":        revenue - totalExpenses,
			"total_expenses_30d":    totalExpenses,
			"total_inventory_value": inventoryValue,
			"total_products":        len(products),
			"profit_margin":         profitMargin,
		},
		"sales_series":     s.salesSeries(orders),
		"finance_series":   financeSeries,
		"inventory_alerts": alerts,
		"recent_orders":    recent,
	})
}
