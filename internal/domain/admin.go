package domain

import (
	"errors"
	"fmt"
	"time"
)

// NewProduct is what an administrator submits to list a product.
type NewProduct struct {
	Name        string
	Description string
	Price       Money
	Stock       int
	CategoryID  int64
	ImageURL    string
}

func (p NewProduct) Validate() error {
	switch {
	case p.Name == "":
		return errors.New("product name is required")
	case !p.Price.IsPositive():
		return errors.New("product price must be positive")
	case p.Stock < 0:
		return errors.New("product stock must not be negative")
	case p.CategoryID <= 0:
		return errors.New("product category is required")
	}
	return nil
}

// ListedProduct is a product as stored by the backend.
type ListedProduct struct {
	ProductID   int64     `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Money     `json:"price"`
	Stock       int       `json:"stock"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserAccount struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserUpdate changes the non-empty fields of one account.
type UserUpdate struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type BusinessPeriod string

const (
	BusinessDaily   BusinessPeriod = "daily"
	BusinessMonthly BusinessPeriod = "monthly"
	BusinessYearly  BusinessPeriod = "yearly"
	BusinessOverall BusinessPeriod = "overall"
)

// BusinessQuery selects the reporting window. Date is used for daily reports,
// Month and Year for monthly ones, Year alone for yearly ones.
type BusinessQuery struct {
	Period BusinessPeriod
	Date   string
	Month  int
	Year   int
}

func (q BusinessQuery) Validate() error {
	switch q.Period {
	case BusinessDaily:
		if _, err := time.Parse(time.DateOnly, q.Date); err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
	case BusinessMonthly:
		if q.Month < 1 || q.Month > 12 {
			return errors.New("month must be between 1 and 12")
		}
		if q.Year < 1 {
			return errors.New("year is required")
		}
	case BusinessYearly:
		if q.Year < 1 {
			return errors.New("year is required")
		}
	case BusinessOverall:
	default:
		return fmt.Errorf("unknown period %q", q.Period)
	}
	return nil
}

// BusinessReport is the sales summary of one reporting window.
type BusinessReport struct {
	TotalRevenue          Money            `json:"totalRevenue"`
	CategorySales         map[string]int   `json:"categorySales"`
	CategoryRevenue       map[string]Money `json:"categoryRevenue"`
	TotalItemsSold        int              `json:"totalItemsSold"`
	UniqueCategories      int              `json:"uniqueCategories"`
	TopPerformingCategory string           `json:"topPerformingCategory"`
	TopRevenueCategory    string           `json:"topRevenueCategory"`
	Period                string           `json:"period"`
	TotalOrders           int              `json:"totalOrders"`
	AverageOrderValue     *Money           `json:"averageOrderValue,omitempty"`
	TotalBusiness         *Money           `json:"totalBusiness,omitempty"`
}
