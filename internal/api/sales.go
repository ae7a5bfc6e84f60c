package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// SalesClient wraps orders, customers, payments and the sales analytics
// and AI endpoints.
type SalesClient struct {
	*Client
}

func NewSalesClient(c *Client) *SalesClient {
	return &SalesClient{Client: c}
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Order struct {
	ID         int64       `json:"id"`
	CustomerID int64       `json:"customer_id"`
	Status     string      `json:"status"`
	Total      float64     `json:"total"`
	Items      []OrderItem `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type OrderFilter struct {
	Status string
	Since  time.Time
}

func (f OrderFilter) values() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if !f.Since.IsZero() {
		q.Set("since", f.Since.Format(time.RFC3339))
	}
	return q
}

func (s *SalesClient) Orders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	var out []Order
	if err := s.get(ctx, "/sales/orders", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) Order(ctx context.Context, id int64) (Order, error) {
	var out Order
	if err := s.get(ctx, fmt.Sprintf("/sales/orders/%d", id), nil, &out); err != nil {
		return Order{}, err
	}
	return out, nil
}

func (s *SalesClient) CreateOrder(ctx context.Context, o Order) (Order, error) {
	var out Order
	if err := s.post(ctx, "/sales/orders", nil, o, &out); err != nil {
		return Order{}, err
	}
	s.wroteThrough(OpOrderCreate)
	return out, nil
}

func (s *SalesClient) UpdateOrderStatus(ctx context.Context, id int64, status string) (Order, error) {
	var out Order
	body := map[string]string{"status": status}
	if err := s.put(ctx, fmt.Sprintf("/sales/orders/%d/status", id), nil, body, &out); err != nil {
		return Order{}, err
	}
	s.wroteThrough(OpOrderStatusSet)
	return out, nil
}

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (s *SalesClient) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := s.get(ctx, "/sales/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) CreateCustomer(ctx context.Context, c Customer) (Customer, error) {
	var out Customer
	if err := s.post(ctx, "/sales/customers", nil, c, &out); err != nil {
		return Customer{}, err
	}
	s.wroteThrough(OpCustomerCreate)
	return out, nil
}

// Analytics returns the sales aggregate for the dashboard over a rolling
// window of days.
func (s *SalesClient) Analytics(ctx context.Context, days int) (map[string]any, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out map[string]any
	if err := s.get(ctx, "/sales/orders/analytics/dashboard", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) DailyReport(ctx context.Context, date string) (map[string]any, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out map[string]any
	if err := s.get(ctx, "/sales/orders/reports/daily", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) MonthlyReport(ctx context.Context, year, month int) (map[string]any, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var out map[string]any
	if err := s.get(ctx, "/sales/orders/reports/monthly", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type Payment struct {
	ID      int64   `json:"id"`
	OrderID int64   `json:"order_id"`
	Amount  float64 `json:"amount"`
	Method  string  `json:"method"`
}

func (s *SalesClient) CreatePayment(ctx context.Context, p Payment) (Payment, error) {
	var out Payment
	if err := s.post(ctx, "/sales/payments", nil, p, &out); err != nil {
		return Payment{}, err
	}
	s.wroteThrough(OpPaymentCreate)
	return out, nil
}

func (s *SalesClient) OrderPayments(ctx context.Context, orderID int64) ([]Payment, error) {
	var out []Payment
	if err := s.get(ctx, fmt.Sprintf("/sales/orders/%d/payments", orderID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) Trends(ctx context.Context, daysAhead int) (map[string]any, error) {
	q := url.Values{}
	if daysAhead > 0 {
		q.Set("days_ahead", strconv.Itoa(daysAhead))
	}
	var out map[string]any
	if err := s.get(ctx, "/sales/ai/sales-trends", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SalesClient) BestSellers(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := s.get(ctx, "/sales/ai/best-sellers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
