package posserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	dashboardports "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
)

// DashboardAPI serves the back-office landing page and sales reports.
type DashboardAPI struct {
	service dashboardports.Service
	now     func() time.Time
}

func NewDashboardAPI(service dashboardports.Service) DashboardAPI {
	return DashboardAPI{service: service, now: time.Now}
}

// Get /api/v1/dashboard/summary
func (api *DashboardAPI) Summary(c *gin.Context) {
	summary, err := api.service.Summary(c.Request.Context(), currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Get /api/v1/dashboard/low-stock
func (api *DashboardAPI) LowStock(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	products, err := api.service.LowStock(c.Request.Context(), currentActor(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get /api/v1/dashboard/top-products
func (api *DashboardAPI) TopProducts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	products, err := api.service.TopProducts(c.Request.Context(), currentActor(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get /api/v1/dashboard/sales-by-day
func (api *DashboardAPI) SalesByDay(c *gin.Context) {
	days, ok := queryInt(c, "days", 0)
	if !ok {
		return
	}
	sales, err := api.service.SalesByDay(c.Request.Context(), currentActor(c), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

// Get /api/v1/sales/analytics
// Optional query: from, to
func (api *DashboardAPI) SalesAnalytics(c *gin.Context) {
	from, ok := queryTime(c, "from", false)
	if !ok {
		return
	}
	to, ok := queryTime(c, "to", true)
	if !ok {
		return
	}
	analytics, err := api.service.SalesAnalytics(c.Request.Context(), currentActor(c), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// Get /api/v1/sales/daily-report
// Optional query: date, defaulting to today
func (api *DashboardAPI) DailyReport(c *gin.Context) {
	day := api.now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, day.Location())
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		day = parsed
	}
	report, err := api.service.DailyReport(c.Request.Context(), currentActor(c), day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Get /api/v1/sales/trends
func (api *DashboardAPI) SalesTrends(c *gin.Context) {
	days, ok := queryInt(c, "days", 0)
	if !ok {
		return
	}
	trends, err := api.service.SalesTrends(c.Request.Context(), currentActor(c), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// Get /api/v1/sales/top-customers
func (api *DashboardAPI) TopCustomers(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	customers, err := api.service.TopCustomers(c.Request.Context(), currentActor(c), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}
