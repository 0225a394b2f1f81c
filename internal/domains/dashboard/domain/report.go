// Package domain holds the read models the back-office dashboard and sales
// reports are built from.
package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// Trend compares the current calendar month against the previous one.
type Trend struct {
	Current    decimal.Decimal `json:"current"`
	Previous   decimal.Decimal `json:"previous"`
	Percentage decimal.Decimal `json:"percentage"`
}

// NewTrend computes the month-over-month change in percent, rounded to two
// places. A previous value of zero yields zero.
func NewTrend(current, previous decimal.Decimal) Trend {
	t := Trend{Current: current, Previous: previous, Percentage: decimal.Zero}
	if previous.IsPositive() {
		t.Percentage = current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return t
}

type RecentSale struct {
	ID           int64           `json:"id"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
	CustomerName string          `json:"customerName,omitempty"`
}

// ProductSales is one product's completed sales volume.
type ProductSales struct {
	ProductID    int64           `json:"productId"`
	Name         string          `json:"name"`
	QuantitySold int             `json:"quantitySold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type UserContext struct {
	UserID             int64      `json:"userId"`
	UserName           string     `json:"userName"`
	UserRole           actor.Role `json:"userRole"`
	PersonalSalesCount int        `json:"personalSalesCount"`
	CanViewPurchases   bool       `json:"canViewPurchases"`
	CanViewAllSales    bool       `json:"canViewAllSales"`
}

// Summary is the dashboard landing view. Sales figures are limited to the
// caller's own sales for cashiers; purchase figures are empty for them.
type Summary struct {
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalPurchases   decimal.Decimal `json:"totalPurchases"`
	TotalProducts    int             `json:"totalProducts"`
	LowStockProducts int             `json:"lowStockProducts"`
	TotalCustomers   int             `json:"totalCustomers"`
	TotalSuppliers   int             `json:"totalSuppliers"`
	RecentSales      []RecentSale    `json:"recentSales"`
	TopProducts      []ProductSales  `json:"topProducts"`
	SalesTrend       Trend           `json:"salesTrend"`
	PurchasesTrend   *Trend          `json:"purchasesTrend,omitempty"`
	UserContext      UserContext     `json:"userContext"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

type DailySales struct {
	Date        string          `json:"date"`
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalOrders int             `json:"totalOrders"`
}

type SalesAnalytics struct {
	TotalSales     int             `json:"totalSales"`
	CompletedSales int             `json:"completedSales"`
	PendingSales   int             `json:"pendingSales"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TopProducts    []ProductSales  `json:"topProducts"`
	CompletionRate decimal.Decimal `json:"completionRate"`
}

type HourlySales struct {
	Hour    string          `json:"hour"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DailyReport struct {
	Date               string                             `json:"date"`
	TotalSales         int                                `json:"totalSales"`
	CompletedSales     int                                `json:"completedSales"`
	PendingSales       int                                `json:"pendingSales"`
	TotalRevenue       decimal.Decimal                    `json:"totalRevenue"`
	PaymentMethods     map[ordersdomain.PaymentMethod]int `json:"paymentMethods"`
	HourlyBreakdown    []HourlySales                      `json:"hourlyBreakdown"`
	TopSellingProducts []ProductSales                     `json:"topSellingProducts"`
}

type TrendPoint struct {
	Date           string          `json:"date"`
	TotalSales     int             `json:"totalSales"`
	CompletedSales int             `json:"completedSales"`
	Revenue        decimal.Decimal `json:"revenue"`
}

type SalesTrends struct {
	Period    string       `json:"period"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Trends    []TrendPoint `json:"trends"`
}

type CustomerRanking struct {
	CustomerID        int64           `json:"customerId"`
	CustomerName      string          `json:"customerName"`
	TotalOrders       int             `json:"totalOrders"`
	TotalSpent        decimal.Decimal `json:"totalSpent"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// LowStockProduct is an inventory record under the restock threshold.
type LowStockProduct struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	MinimumStock int    `json:"minimumStock"`
}

// DateLayout formats report days.
const DateLayout = "2006-01-02"

// RankProducts totals item quantities and revenue of completed orders per
// product and returns the top limit by quantity. names resolves product ids.
func RankProducts(orders []*ordersdomain.Order, names map[int64]string, limit int) []ProductSales {
	stats := map[int64]*ProductSales{}
	for _, order := range orders {
		if order.Status != ordersdomain.StatusCompleted {
			continue
		}
		for _, item := range order.Items {
			entry, ok := stats[item.InventoryRecordID]
			if !ok {
				entry = &ProductSales{ProductID: item.InventoryRecordID, Name: names[item.InventoryRecordID], Revenue: decimal.Zero}
				stats[item.InventoryRecordID] = entry
			}
			entry.QuantitySold += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.Total)
		}
	}
	out := make([]ProductSales, 0, len(stats))
	for _, entry := range stats {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold == out[j].QuantitySold {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].QuantitySold > out[j].QuantitySold
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CompletedTotal sums the totals of completed orders.
func CompletedTotal(orders []*ordersdomain.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, order := range orders {
		if order.Status == ordersdomain.StatusCompleted {
			sum = sum.Add(order.Total)
		}
	}
	return sum
}
