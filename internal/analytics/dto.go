package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalSales        float64 `json:"totalSales"`
	OrderCount        int     `json:"orderCount"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

type ProductSales struct {
	ProductID     *uuid.UUID `json:"productId"`
	ProductName   string     `json:"productName"`
	TotalSales    float64    `json:"totalSales"`
	TotalQuantity int        `json:"totalQuantity"`
}

type CategorySales struct {
	CategoryID    uuid.UUID `json:"categoryId"`
	CategoryName  string    `json:"categoryName"`
	TotalSales    float64   `json:"totalSales"`
	TotalQuantity int       `json:"totalQuantity"`
}

type TopSeller struct {
	ProductID    *uuid.UUID `json:"productId"`
	ProductName  string     `json:"productName"`
	ImageURL     string     `json:"imageUrl"`
	QuantitySold int        `json:"quantitySold"`
}

type CategoryName struct {
	Name string `json:"name"`
}

type LowStockProduct struct {
	ID       uuid.UUID     `json:"id"`
	Name     string        `json:"name"`
	Stock    int           `json:"stock"`
	ImageURL string        `json:"imageUrl"`
	Category *CategoryName `json:"category"`
}

type CouponUsage struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
	IsActive    bool            `json:"isActive"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	UsedCount   int64           `json:"usedCount"`
}

type HourSales struct {
	Hour       int     `json:"hour"`
	TotalSales float64 `json:"totalSales"`
}

type DaySales struct {
	Day        string  `json:"day"`
	TotalSales float64 `json:"totalSales"`
}

// BestTime buckets sales by 3-hour window and by weekday.
type BestTime struct {
	ByHour      []HourSales `json:"byHour"`
	ByDayOfWeek []DaySales  `json:"byDayOfWeek"`
}

type MonthSales struct {
	Month      string  `json:"month"`
	TotalSales float64 `json:"totalSales"`
	OrderCount int     `json:"orderCount"`
}
