package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type assistantRequest struct {
	Query string `json:"query"`
}

type assistantResponse struct {
	Summary  string           `json:"summary"`
	SQLQuery string           `json:"sql_query,omitempty"`
	Results  []map[string]any `json:"results,omitempty"`
}

// handleAssistantQuery answers free-text questions by keyword-matching
// them onto canned queries over the store. Questions it cannot map are
// rejected with an explanatory summary, which is exactly the failure shape
// the client's transcript expects.
func (s *Server) handleAssistantQuery(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		s.writeJSON(w, http.StatusBadRequest, assistantResponse{
			Summary: "I need a question to answer.",
		})
		return
	}

	q := strings.ToLower(req.Query)

	switch {
	case strings.Contains(q, "low stock") || strings.Contains(q, "low-stock"):
		s.answerLowStock(w)
	case strings.Contains(q, "revenue"):
		s.answerRevenue(w)
	case strings.Contains(q, "expense"):
		s.answerExpenses(w)
	case strings.Contains(q, "employee") || strings.Contains(q, "worked"):
		s.answerEmployees(w)
	case strings.Contains(q, "forecast"):
		s.answerForecast(w)
	default:
		s.writeJSON(w, http.StatusBadRequest, assistantResponse{
			Summary: "I could not map that question to a query. Try asking about revenue, expenses, employees, or stock.",
		})
	}
}

func (s *Server) answerLowStock(w http.ResponseWriter) {
	products, err := s.store.Products(true)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	rows := make([]map[string]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, map[string]any{
			"sku":           p.SKU,
			"name":          p.Name,
			"stock":         p.Stock,
			"reorder_level": p.ReorderLevel,
		})
	}

	s.writeJSON(w, http.StatusOK, assistantResponse{
		Summary:  fmt.Sprintf("%d products are at or below their reorder level.", len(rows)),
		SQLQuery: "SELECT sku, name, stock, reorder_level FROM products WHERE stock <= reorder_level ORDER BY stock ASC",
		Results:  rows,
	})
}

func (s *Server) answerRevenue(w http.ResponseWriter) {
	since := time.Now().Add(-aggregateWindow)
	orders, err := s.store.Orders(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var total float64
	rows := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		total += o.Total
		rows = append(rows, map[string]any{
			"order_id": o.ID,
			"customer": o.CustomerName,
			"total":    o.Total,
			"date":     o.CreatedAt.Format("2006-01-02"),
		})
	}

	s.writeJSON(w, http.StatusOK, assistantResponse{
		Summary:  fmt.Sprintf("Revenue over the last 30 days is %.2f across %d orders.", total, len(orders)),
		SQLQuery: "SELECT id, customer_name, total, created_at FROM orders WHERE created_at >= date('now', '-30 days')",
		Results:  rows,
	})
}

func (s *Server) answerExpenses(w http.ResponseWriter) {
	since := time.Now().Add(-aggregateWindow)
	expenses, err := s.store.Expenses(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	byCategory := map[string]float64{}
	for _, e := range expenses {
		byCategory[e.Category] += e.Amount
	}
	rows := make([]map[string]any, 0, len(byCategory))
	for category, amount := range byCategory {
		rows = append(rows, map[string]any{"category": category, "amount": amount})
	}

	s.writeJSON(w, http.StatusOK, assistantResponse{
		Summary:  fmt.Sprintf("Expenses over the last 30 days fall into %d categories.", len(rows)),
		SQLQuery: "SELECT category, SUM(amount) FROM expenses WHERE expense_date >= date('now', '-30 days') GROUP BY category",
		Results:  rows,
	})
}

func (s *Server) answerEmployees(w http.ResponseWriter) {
	employees, err := s.store.Employees()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	rows := make([]map[string]any, 0, len(employees))
	var top string
	var topHours float64
	for _, e := range employees {
		rows = append(rows, map[string]any{
			"name":         e.FullName,
			"position":     e.Position,
			"hours_weekly": e.HoursWeekly,
		})
		if e.HoursWeekly > topHours {
			topHours = e.HoursWeekly
			top = e.FullName
		}
	}

	s.writeJSON(w, http.StatusOK, assistantResponse{
		Summary:  fmt.Sprintf("%s logged the most hours last week (%.0f).", top, topHours),
		SQLQuery: "SELECT full_name, position, hours_weekly FROM employees ORDER BY hours_weekly DESC",
		Results:  rows,
	})
}

func (s *Server) answerForecast(w http.ResponseWriter) {
	since := time.Now().Add(-aggregateWindow)
	orders, err := s.store.Orders(since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var total float64
	for _, o := range orders {
		total += o.Total
	}

	// Flat projection of the trailing 30 days. Good enough for a stub;
	// the production service runs a real model.
	s.writeJSON(w, http.StatusOK, assistantResponse{
		Summary: fmt.Sprintf("Projected revenue for the next 30 days is %.2f, assuming the trailing period repeats.", total),
		Results: []map[string]any{
			{"horizon_days": 30, "projected_revenue": total, "basis": "trailing-30d"},
		},
	})
}
