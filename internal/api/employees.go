package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// EmployeeClient wraps the HR resource family: employees, attendance,
// payroll and the AI performance endpoints.
type EmployeeClient struct {
	*Client
}

func NewEmployeeClient(c *Client) *EmployeeClient {
	return &EmployeeClient{Client: c}
}

type Employee struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Position string  `json:"position"`
	Salary   float64 `json:"salary"`
	IsActive bool    `json:"is_active"`
}

type EmployeeFilter struct {
	Search   string
	Position string
}

func (f EmployeeFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Position != "" {
		q.Set("position", f.Position)
	}
	return q
}

func (e *EmployeeClient) Employees(ctx context.Context, filter EmployeeFilter) ([]Employee, error) {
	var out []Employee
	if err := e.get(ctx, "/employees/employees", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) Employee(ctx context.Context, id int64) (Employee, error) {
	var out Employee
	if err := e.get(ctx, fmt.Sprintf("/employees/employees/%d", id), nil, &out); err != nil {
		return Employee{}, err
	}
	return out, nil
}

func (e *EmployeeClient) CreateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	var out Employee
	if err := e.post(ctx, "/employees/employees", nil, emp, &out); err != nil {
		return Employee{}, err
	}
	e.wroteThrough(OpEmployeeWrite)
	return out, nil
}

func (e *EmployeeClient) UpdateEmployee(ctx context.Context, id int64, emp Employee) (Employee, error) {
	var out Employee
	if err := e.put(ctx, fmt.Sprintf("/employees/employees/%d", id), nil, emp, &out); err != nil {
		return Employee{}, err
	}
	e.wroteThrough(OpEmployeeWrite)
	return out, nil
}

func (e *EmployeeClient) DeleteEmployee(ctx context.Context, id int64) error {
	if err := e.delete(ctx, fmt.Sprintf("/employees/employees/%d", id)); err != nil {
		return err
	}
	e.wroteThrough(OpEmployeeWrite)
	return nil
}

type Attendance struct {
	ID          int64   `json:"id"`
	EmployeeID  int64   `json:"employee_id"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
	HoursWorked float64 `json:"hours_worked"`
}

func (e *EmployeeClient) Attendance(ctx context.Context, employeeID int64) ([]Attendance, error) {
	q := url.Values{}
	if employeeID != 0 {
		q.Set("employee_id", strconv.FormatInt(employeeID, 10))
	}
	var out []Attendance
	if err := e.get(ctx, "/employees/attendance", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) CreateAttendance(ctx context.Context, a Attendance) (Attendance, error) {
	var out Attendance
	if err := e.post(ctx, "/employees/attendance", nil, a, &out); err != nil {
		return Attendance{}, err
	}
	e.wroteThrough(OpAttendanceWrite)
	return out, nil
}

func (e *EmployeeClient) AttendanceStats(ctx context.Context, employeeID int64) (map[string]any, error) {
	var out map[string]any
	path := fmt.Sprintf("/employees/employees/%d/attendance/stats", employeeID)
	if err := e.get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) Timesheet(ctx context.Context, employeeID int64, year, month int) (map[string]any, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	var out map[string]any
	path := fmt.Sprintf("/employees/employees/%d/timesheet", employeeID)
	if err := e.get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) Payroll(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := e.get(ctx, "/employees/payroll", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) CreatePayroll(ctx context.Context, entry map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := e.post(ctx, "/employees/payroll", nil, entry, &out); err != nil {
		return nil, err
	}
	e.wroteThrough(OpPayrollWrite)
	return out, nil
}

func (e *EmployeeClient) PerformanceAnomalies(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := e.get(ctx, "/employees/ai/performance-anomalies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *EmployeeClient) HRReport(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := e.post(ctx, "/employees/ai/hr-report", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
