package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// FinanceClient wraps expenses, revenue, budget categories, financial
// reports and the AI forecast endpoints.
type FinanceClient struct {
	*Client
}

func NewFinanceClient(c *Client) *FinanceClient {
	return &FinanceClient{Client: c}
}

type Expense struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	ExpenseDate string  `json:"expense_date"`
}

type ExpenseFilter struct {
	Category string
	From     time.Time
	To       time.Time
}

func (f ExpenseFilter) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if !f.From.IsZero() {
		q.Set("from", f.From.Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		q.Set("to", f.To.Format("2006-01-02"))
	}
	return q
}

func (f *FinanceClient) Expenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	var out []Expense
	if err := f.get(ctx, "/finance/expenses", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) Expense(ctx context.Context, id int64) (Expense, error) {
	var out Expense
	if err := f.get(ctx, fmt.Sprintf("/finance/expenses/%d", id), nil, &out); err != nil {
		return Expense{}, err
	}
	return out, nil
}

func (f *FinanceClient) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	var out Expense
	if err := f.post(ctx, "/finance/expenses", nil, e, &out); err != nil {
		return Expense{}, err
	}
	f.wroteThrough(OpExpenseWrite)
	return out, nil
}

func (f *FinanceClient) UpdateExpense(ctx context.Context, id int64, e Expense) (Expense, error) {
	var out Expense
	if err := f.put(ctx, fmt.Sprintf("/finance/expenses/%d", id), nil, e, &out); err != nil {
		return Expense{}, err
	}
	f.wroteThrough(OpExpenseWrite)
	return out, nil
}

func (f *FinanceClient) DeleteExpense(ctx context.Context, id int64) error {
	if err := f.delete(ctx, fmt.Sprintf("/finance/expenses/%d", id)); err != nil {
		return err
	}
	f.wroteThrough(OpExpenseWrite)
	return nil
}

type Revenue struct {
	ID          int64   `json:"id"`
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	RevenueDate string  `json:"revenue_date"`
}

func (f *FinanceClient) Revenue(ctx context.Context) ([]Revenue, error) {
	var out []Revenue
	if err := f.get(ctx, "/finance/revenue", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) CreateRevenue(ctx context.Context, r Revenue) (Revenue, error) {
	var out Revenue
	if err := f.post(ctx, "/finance/revenue", nil, r, &out); err != nil {
		return Revenue{}, err
	}
	f.wroteThrough(OpRevenueCreate)
	return out, nil
}

type BudgetCategory struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Limit float64 `json:"limit"`
}

func (f *FinanceClient) BudgetCategories(ctx context.Context) ([]BudgetCategory, error) {
	var out []BudgetCategory
	if err := f.get(ctx, "/finance/budget-categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) CreateBudgetCategory(ctx context.Context, b BudgetCategory) (BudgetCategory, error) {
	var out BudgetCategory
	if err := f.post(ctx, "/finance/budget-categories", nil, b, &out); err != nil {
		return BudgetCategory{}, err
	}
	f.wroteThrough(OpBudgetWrite)
	return out, nil
}

func (f *FinanceClient) Summary(ctx context.Context, days int) (map[string]any, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out map[string]any
	if err := f.get(ctx, "/finance/summary", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dashboard returns the finance aggregate raw, in the same shape family as
// the other dashboard sources.
func (f *FinanceClient) Dashboard(ctx context.Context, days int) (json.RawMessage, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out json.RawMessage
	if err := f.get(ctx, "/finance/dashboard", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) MonthEndReport(ctx context.Context, year, month int) (map[string]any, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var out map[string]any
	if err := f.get(ctx, "/finance/reports/month-end", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) ProfitLossReport(ctx context.Context, days int) (map[string]any, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var out map[string]any
	if err := f.get(ctx, "/finance/reports/profit-loss", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) Forecasts(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := f.get(ctx, "/finance/ai/forecasts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FinanceClient) AbnormalExpenses(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := f.get(ctx, "/finance/ai/abnormal-expenses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
