package devserver

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// UserAccount is a login-capable account with a role name matching the
// closed role set the client consumes.
type UserAccount struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	RoleName     string    `json:"role_name"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UserAccount) TableName() string { return "users" }

type Product struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	SKU          string  `gorm:"uniqueIndex;not null" json:"sku"`
	Name         string  `gorm:"not null" json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	CostPrice    float64 `json:"cost_price"`
	Stock        int     `json:"stock"`
	ReorderLevel int     `json:"reorder_level"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CustomerName string    `json:"customer"`
	Total        float64   `json:"total"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Order) TableName() string { return "orders" }

type ExpenseRecord struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	ExpenseDate time.Time `json:"expense_date"`
}

func (ExpenseRecord) TableName() string { return "expenses" }

type EmployeeRecord struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	FullName    string  `json:"full_name"`
	Position    string  `json:"position"`
	HoursWeekly float64 `json:"hours_weekly"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}

func (EmployeeRecord) TableName() string { return "employees" }

// Store is the sqlite-backed stub data layer. The schema is throwaway and
// created with AutoMigrate; there is no versioned migration history.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (or creates) the devserver database. Pass ":memory:" for
// an ephemeral store.
func OpenStore(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open devserver store: %w", err)
	}

	err = db.AutoMigrate(&UserAccount{}, &Product{}, &Order{}, &ExpenseRecord{}, &EmployeeRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to migrate devserver schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Seed loads one account per role plus a small inventory/sales/finance
// fixture. Idempotent: a populated store is left untouched.
func (s *Store) Seed() error {
	var count int64
	if err := s.db.Model(&UserAccount{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []UserAccount{
		{Email: "admin@bizpulse.local", FullName: "Ava Admin", PasswordHash: string(hash), RoleName: "Admin", IsActive: true},
		{Email: "manager@bizpulse.local", FullName: "Morgan Manager", PasswordHash: string(hash), RoleName: "Manager", IsActive: true},
		{Email: "staff@bizpulse.local", FullName: "Sam Staff", PasswordHash: string(hash), RoleName: "Staff", IsActive: true},
	}
	if err := s.db.Create(&users).Error; err != nil {
		return err
	}

	products := []Product{
		{SKU: "CF-001", Name: "House Blend Beans 1kg", UnitPrice: 18.5, CostPrice: 9.0, Stock: 42, ReorderLevel: 20},
		{SKU: "CF-002", Name: "Single Origin Beans 1kg", UnitPrice: 24.0, CostPrice: 13.5, Stock: 8, ReorderLevel: 15},
		{SKU: "CP-010", Name: "Paper Cups 12oz (case)", UnitPrice: 31.0, CostPrice: 19.0, Stock: 5, ReorderLevel: 10},
		{SKU: "ML-020", Name: "Oat Milk 1L", UnitPrice: 3.8, CostPrice: 2.1, Stock: 60, ReorderLevel: 24},
	}
	if err := s.db.Create(&products).Error; err != nil {
		return err
	}

	now := time.Now()
	orders := []Order{
		{CustomerName: "Walk-in", Total: 42.50, Status: "completed", CreatedAt: now.AddDate(0, 0, -2)},
		{CustomerName: "Northside Office", Total: 180.00, Status: "completed", CreatedAt: now.AddDate(0, 0, -6)},
		{CustomerName: "Walk-in", Total: 23.75, Status: "completed", CreatedAt: now.AddDate(0, 0, -9)},
		{CustomerName: "Harbor Cafe", Total: 96.20, Status: "pending", CreatedAt: now.AddDate(0, 0, -1)},
	}
	if err := s.db.Create(&orders).Error; err != nil {
		return err
	}

	expenses := []ExpenseRecord{
		{Description: "Bean supplier invoice", Amount: 540.00, Category: "supplies", ExpenseDate: now.AddDate(0, 0, -12)},
		{Description: "Storefront rent", Amount: 1800.00, Category: "rent", ExpenseDate: now.AddDate(0, 0, -20)},
		{Description: "Utilities", Amount: 210.40, Category: "utilities", ExpenseDate: now.AddDate(0, 0, -5)},
	}
	if err := s.db.Create(&expenses).Error; err != nil {
		return err
	}

	employees := []EmployeeRecord{
		{FullName: "Ava Admin", Position: "Owner", HoursWeekly: 45, IsActive: true},
		{FullName: "Morgan Manager", Position: "Shift Lead", HoursWeekly: 40, IsActive: true},
		{FullName: "Sam Staff", Position: "Barista", HoursWeekly: 32, IsActive: true},
		{FullName: "Riley Rivera", Position: "Barista", HoursWeekly: 24, IsActive: true},
	}
	return s.db.Create(&employees).Error
}

func (s *Store) UserByEmail(email string) (*UserAccount, error) {
	var u UserAccount
	err := s.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(u *UserAccount) error {
	return s.db.Create(u).Error
}

func (s *Store) Users() ([]UserAccount, error) {
	var users []UserAccount
	err := s.db.Order("email ASC").Find(&users).Error
	return users, err
}

func (s *Store) Products(lowStockOnly bool) ([]Product, error) {
	var products []Product
	q := s.db.Order("sku ASC")
	if lowStockOnly {
		q = q.Where("stock <= reorder_level")
	}
	err := q.Find(&products).Error
	return products, err
}

func (s *Store) Orders(since time.Time) ([]Order, error) {
	var orders []Order
	q := s.db.Order("created_at DESC")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Find(&orders).Error
	return orders, err
}

func (s *Store) Expenses(since time.Time) ([]ExpenseRecord, error) {
	var expenses []ExpenseRecord
	q := s.db.Order("expense_date DESC")
	if !since.IsZero() {
		q = q.Where("expense_date >= ?", since)
	}
	err := q.Find(&expenses).Error
	return expenses, err
}

func (s *Store) Employees() ([]EmployeeRecord, error) {
	var employees []EmployeeRecord
	err := s.db.Order("full_name ASC").Find(&employees).Error
	return employees, err
}
