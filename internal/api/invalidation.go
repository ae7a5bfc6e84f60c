package api

// Aggregate keys name the backend-computed summaries that writes can make
// stale. The dashboard aggregator caches under these keys.
const (
	AggregateAdminDashboard     = "admin-dashboard"
	AggregateMyDashboard        = "my-dashboard"
	AggregateInventoryAnalytics = "inventory-analytics"
	AggregateSalesAnalytics     = "sales-analytics"
	AggregateFinanceSummary     = "finance-summary"
	AggregateUserList           = "user-list"
)

// Operation identifies one write operation exposed by a module data client.
type Operation string

const (
	OpProductCreate   Operation = "inventory.product.create"
	OpProductUpdate   Operation = "inventory.product.update"
	OpProductDelete   Operation = "inventory.product.delete"
	OpCategoryWrite   Operation = "inventory.category.write"
	OpSupplierWrite   Operation = "inventory.supplier.write"
	OpOrderCreate     Operation = "sales.order.create"
	OpOrderStatusSet  Operation = "sales.order.status"
	OpCustomerCreate  Operation = "sales.customer.create"
	OpPaymentCreate   Operation = "sales.payment.create"
	OpEmployeeWrite   Operation = "employees.employee.write"
	OpAttendanceWrite Operation = "employees.attendance.write"
	OpPayrollWrite    Operation = "employees.payroll.write"
	OpExpenseWrite    Operation = "finance.expense.write"
	OpRevenueCreate   Operation = "finance.revenue.create"
	OpBudgetWrite     Operation = "finance.budget.write"
	OpUserWrite       Operation = "admin.user.write"
)

// affectedAggregates is the declaration of which aggregates each write
// makes stale. Invalidation is a table lookup, not a per-call-site call.
var affectedAggregates = map[Operation][]string{
	OpProductCreate:   {AggregateAdminDashboard, AggregateMyDashboard, AggregateInventoryAnalytics},
	OpProductUpdate:   {AggregateAdminDashboard, AggregateMyDashboard, AggregateInventoryAnalytics},
	OpProductDelete:   {AggregateAdminDashboard, AggregateMyDashboard, AggregateInventoryAnalytics},
	OpCategoryWrite:   {AggregateInventoryAnalytics},
	OpSupplierWrite:   {AggregateInventoryAnalytics},
	OpOrderCreate:     {AggregateAdminDashboard, AggregateMyDashboard, AggregateSalesAnalytics, AggregateFinanceSummary},
	OpOrderStatusSet:  {AggregateAdminDashboard, AggregateMyDashboard, AggregateSalesAnalytics},
	OpCustomerCreate:  {AggregateSalesAnalytics},
	OpPaymentCreate:   {AggregateSalesAnalytics, AggregateFinanceSummary},
	OpEmployeeWrite:   {AggregateAdminDashboard, AggregateMyDashboard},
	OpAttendanceWrite: nil,
	OpPayrollWrite:    {AggregateFinanceSummary},
	OpExpenseWrite:    {AggregateAdminDashboard, AggregateMyDashboard, AggregateFinanceSummary},
	OpRevenueCreate:   {AggregateAdminDashboard, AggregateMyDashboard, AggregateFinanceSummary},
	OpBudgetWrite:     {AggregateFinanceSummary},
	OpUserWrite:       {AggregateUserList},
}

// AffectedAggregates returns the aggregate keys invalidated by op. A nil
// result means the write touches no cached aggregate.
func AffectedAggregates(op Operation) []string {
	keys, ok := affectedAggregates[op]
	if !ok {
		return nil
	}
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}
