package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const basePath = "/api/v1"

var (
	managers = []actor.Role{actor.RoleAdmin, actor.RoleManager}
	admins   = []actor.Role{actor.RoleAdmin}
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI, relative to /api/v1.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
	// Public routes skip authentication.
	Public bool
	// Roles restricts the route to the listed roles. Empty means any signed-in user.
	Roles []actor.Role
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions, auth Authenticator) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions, auth)
}

// NewRouterWithGinEngine adds routes to an existing gin engine. Middleware
// registered on router before the call applies to every route.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions, auth Authenticator) *gin.Engine {
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	group := router.Group(basePath, RequestInfo())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := make([]gin.HandlerFunc, 0, 3)
		if !route.Public {
			chain = append(chain, RequireAuth(auth))
		}
		if len(route.Roles) > 0 {
			chain = append(chain, RequireRoles(route.Roles...))
		}
		chain = append(chain, route.HandlerFunc)
		group.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// Default handler for not yet implemented routes
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

type ApiHandleFunctions struct {
	// Routes for the AuthAPI part of the API
	AuthAPI AuthAPI
	// Routes for the UserAPI part of the API
	UserAPI UserAPI
	// Routes for the CatalogAPI part of the API
	CatalogAPI  CatalogAPI
	CustomerAPI PartyAPI
	SupplierAPI PartyAPI
	SaleAPI     OrderAPI
	PurchaseAPI OrderAPI
	// Routes for the DashboardAPI part of the API
	DashboardAPI DashboardAPI
	// Routes for the ActivityAPI part of the API
	ActivityAPI ActivityAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{Name: "Login", Method: http.MethodPost, Pattern: "/auth/login", HandlerFunc: handleFunctions.AuthAPI.Login, Public: true},
		{Name: "Register", Method: http.MethodPost, Pattern: "/auth/register", HandlerFunc: handleFunctions.AuthAPI.Register, Public: true},
		{Name: "Logout", Method: http.MethodPost, Pattern: "/auth/logout", HandlerFunc: handleFunctions.AuthAPI.Logout},
		{Name: "Me", Method: http.MethodGet, Pattern: "/auth/me", HandlerFunc: handleFunctions.AuthAPI.Me},
		{Name: "ChangePassword", Method: http.MethodPut, Pattern: "/auth/password", HandlerFunc: handleFunctions.AuthAPI.ChangePassword},

		{Name: "CreateUser", Method: http.MethodPost, Pattern: "/users", HandlerFunc: handleFunctions.UserAPI.CreateUser, Roles: admins},
		{Name: "ListUsers", Method: http.MethodGet, Pattern: "/users", HandlerFunc: handleFunctions.UserAPI.ListUsers, Roles: admins},
		{Name: "GetUser", Method: http.MethodGet, Pattern: "/users/:id", HandlerFunc: handleFunctions.UserAPI.GetUser, Roles: admins},
		{Name: "UpdateUser", Method: http.MethodPut, Pattern: "/users/:id", HandlerFunc: handleFunctions.UserAPI.UpdateUser, Roles: admins},
		{Name: "DeleteUser", Method: http.MethodDelete, Pattern: "/users/:id", HandlerFunc: handleFunctions.UserAPI.DeleteUser, Roles: admins},

		{Name: "CreateCategory", Method: http.MethodPost, Pattern: "/categories", HandlerFunc: handleFunctions.CatalogAPI.CreateCategory, Roles: managers},
		{Name: "ListCategories", Method: http.MethodGet, Pattern: "/categories", HandlerFunc: handleFunctions.CatalogAPI.ListCategories},
		{Name: "GetCategory", Method: http.MethodGet, Pattern: "/categories/:id", HandlerFunc: handleFunctions.CatalogAPI.GetCategory},
		{Name: "UpdateCategory", Method: http.MethodPut, Pattern: "/categories/:id", HandlerFunc: handleFunctions.CatalogAPI.UpdateCategory, Roles: managers},
		{Name: "DeleteCategory", Method: http.MethodDelete, Pattern: "/categories/:id", HandlerFunc: handleFunctions.CatalogAPI.DeleteCategory, Roles: managers},
		{Name: "CreateProduct", Method: http.MethodPost, Pattern: "/products", HandlerFunc: handleFunctions.CatalogAPI.CreateProduct, Roles: managers},
		{Name: "ListProducts", Method: http.MethodGet, Pattern: "/products", HandlerFunc: handleFunctions.CatalogAPI.ListProducts},
		{Name: "LowStockProducts", Method: http.MethodGet, Pattern: "/products/low-stock", HandlerFunc: handleFunctions.CatalogAPI.LowStockProducts},
		{Name: "GetProductByBarcode", Method: http.MethodGet, Pattern: "/products/barcode/:barcode", HandlerFunc: handleFunctions.CatalogAPI.GetProductByBarcode},
		{Name: "GetProduct", Method: http.MethodGet, Pattern: "/products/:id", HandlerFunc: handleFunctions.CatalogAPI.GetProduct},
		{Name: "UpdateProduct", Method: http.MethodPut, Pattern: "/products/:id", HandlerFunc: handleFunctions.CatalogAPI.UpdateProduct, Roles: managers},
		{Name: "DeleteProduct", Method: http.MethodDelete, Pattern: "/products/:id", HandlerFunc: handleFunctions.CatalogAPI.DeleteProduct, Roles: managers},

		{Name: "CreateCustomer", Method: http.MethodPost, Pattern: "/customers", HandlerFunc: handleFunctions.CustomerAPI.CreateParty},
		{Name: "ListCustomers", Method: http.MethodGet, Pattern: "/customers", HandlerFunc: handleFunctions.CustomerAPI.ListParties},
		{Name: "GetCustomer", Method: http.MethodGet, Pattern: "/customers/:id", HandlerFunc: handleFunctions.CustomerAPI.GetParty},
		{Name: "UpdateCustomer", Method: http.MethodPut, Pattern: "/customers/:id", HandlerFunc: handleFunctions.CustomerAPI.UpdateParty},
		{Name: "DeleteCustomer", Method: http.MethodDelete, Pattern: "/customers/:id", HandlerFunc: handleFunctions.CustomerAPI.DeleteParty, Roles: managers},
		{Name: "CreateSupplier", Method: http.MethodPost, Pattern: "/suppliers", HandlerFunc: handleFunctions.SupplierAPI.CreateParty, Roles: managers},
		{Name: "ListSuppliers", Method: http.MethodGet, Pattern: "/suppliers", HandlerFunc: handleFunctions.SupplierAPI.ListParties, Roles: managers},
		{Name: "GetSupplier", Method: http.MethodGet, Pattern: "/suppliers/:id", HandlerFunc: handleFunctions.SupplierAPI.GetParty, Roles: managers},
		{Name: "UpdateSupplier", Method: http.MethodPut, Pattern: "/suppliers/:id", HandlerFunc: handleFunctions.SupplierAPI.UpdateParty, Roles: managers},
		{Name: "DeleteSupplier", Method: http.MethodDelete, Pattern: "/suppliers/:id", HandlerFunc: handleFunctions.SupplierAPI.DeleteParty, Roles: managers},

		{Name: "CreateSale", Method: http.MethodPost, Pattern: "/sales", HandlerFunc: handleFunctions.SaleAPI.CreateOrder},
		{Name: "ListSales", Method: http.MethodGet, Pattern: "/sales", HandlerFunc: handleFunctions.SaleAPI.ListOrders},
		{Name: "BulkUpdateSaleStatus", Method: http.MethodPost, Pattern: "/sales/bulk-status", HandlerFunc: handleFunctions.SaleAPI.BulkUpdateStatus, Roles: managers},
		{Name: "ValidatePayment", Method: http.MethodPost, Pattern: "/sales/validate-payment", HandlerFunc: handleFunctions.SaleAPI.ValidatePayment},
		{Name: "CustomerSalesHistory", Method: http.MethodGet, Pattern: "/sales/customer/:id", HandlerFunc: handleFunctions.SaleAPI.CustomerHistory},
		{Name: "SalesAnalytics", Method: http.MethodGet, Pattern: "/sales/analytics", HandlerFunc: handleFunctions.DashboardAPI.SalesAnalytics, Roles: managers},
		{Name: "DailySalesReport", Method: http.MethodGet, Pattern: "/sales/daily-report", HandlerFunc: handleFunctions.DashboardAPI.DailyReport, Roles: managers},
		{Name: "SalesTrends", Method: http.MethodGet, Pattern: "/sales/trends", HandlerFunc: handleFunctions.DashboardAPI.SalesTrends, Roles: managers},
		{Name: "TopCustomers", Method: http.MethodGet, Pattern: "/sales/top-customers", HandlerFunc: handleFunctions.DashboardAPI.TopCustomers, Roles: managers},
		{Name: "GetSale", Method: http.MethodGet, Pattern: "/sales/:id", HandlerFunc: handleFunctions.SaleAPI.GetOrder},
		{Name: "UpdateSale", Method: http.MethodPut, Pattern: "/sales/:id", HandlerFunc: handleFunctions.SaleAPI.UpdateOrder},
		{Name: "DeleteSale", Method: http.MethodDelete, Pattern: "/sales/:id", HandlerFunc: handleFunctions.SaleAPI.DeleteOrder, Roles: admins},
		{Name: "AddSaleItem", Method: http.MethodPost, Pattern: "/sale-items", HandlerFunc: handleFunctions.SaleAPI.AddItem},
		{Name: "ListSaleItems", Method: http.MethodGet, Pattern: "/sale-items", HandlerFunc: handleFunctions.SaleAPI.ListItems},
		{Name: "GetSaleItem", Method: http.MethodGet, Pattern: "/sale-items/:id", HandlerFunc: handleFunctions.SaleAPI.GetItem},
		{Name: "UpdateSaleItem", Method: http.MethodPut, Pattern: "/sale-items/:id", HandlerFunc: handleFunctions.SaleAPI.UpdateItem},
		{Name: "DeleteSaleItem", Method: http.MethodDelete, Pattern: "/sale-items/:id", HandlerFunc: handleFunctions.SaleAPI.DeleteItem},

		{Name: "CreatePurchase", Method: http.MethodPost, Pattern: "/purchases", HandlerFunc: handleFunctions.PurchaseAPI.CreateOrder, Roles: managers},
		{Name: "ListPurchases", Method: http.MethodGet, Pattern: "/purchases", HandlerFunc: handleFunctions.PurchaseAPI.ListOrders, Roles: managers},
		{Name: "BulkUpdatePurchaseStatus", Method: http.MethodPost, Pattern: "/purchases/bulk-status", HandlerFunc: handleFunctions.PurchaseAPI.BulkUpdateStatus, Roles: managers},
		{Name: "GetPurchase", Method: http.MethodGet, Pattern: "/purchases/:id", HandlerFunc: handleFunctions.PurchaseAPI.GetOrder, Roles: managers},
		{Name: "UpdatePurchase", Method: http.MethodPut, Pattern: "/purchases/:id", HandlerFunc: handleFunctions.PurchaseAPI.UpdateOrder, Roles: managers},
		{Name: "DeletePurchase", Method: http.MethodDelete, Pattern: "/purchases/:id", HandlerFunc: handleFunctions.PurchaseAPI.DeleteOrder, Roles: admins},
		{Name: "AddPurchaseItem", Method: http.MethodPost, Pattern: "/purchase-items", HandlerFunc: handleFunctions.PurchaseAPI.AddItem, Roles: managers},
		{Name: "ListPurchaseItems", Method: http.MethodGet, Pattern: "/purchase-items", HandlerFunc: handleFunctions.PurchaseAPI.ListItems, Roles: managers},
		{Name: "GetPurchaseItem", Method: http.MethodGet, Pattern: "/purchase-items/:id", HandlerFunc: handleFunctions.PurchaseAPI.GetItem, Roles: managers},
		{Name: "UpdatePurchaseItem", Method: http.MethodPut, Pattern: "/purchase-items/:id", HandlerFunc: handleFunctions.PurchaseAPI.UpdateItem, Roles: managers},
		{Name: "DeletePurchaseItem", Method: http.MethodDelete, Pattern: "/purchase-items/:id", HandlerFunc: handleFunctions.PurchaseAPI.DeleteItem, Roles: managers},

		{Name: "DashboardSummary", Method: http.MethodGet, Pattern: "/dashboard/summary", HandlerFunc: handleFunctions.DashboardAPI.Summary},
		{Name: "DashboardLowStock", Method: http.MethodGet, Pattern: "/dashboard/low-stock", HandlerFunc: handleFunctions.DashboardAPI.LowStock},
		{Name: "DashboardTopProducts", Method: http.MethodGet, Pattern: "/dashboard/top-products", HandlerFunc: handleFunctions.DashboardAPI.TopProducts},
		{Name: "DashboardSalesByDay", Method: http.MethodGet, Pattern: "/dashboard/sales-by-day", HandlerFunc: handleFunctions.DashboardAPI.SalesByDay},

		{Name: "MyActivity", Method: http.MethodGet, Pattern: "/activities/me", HandlerFunc: handleFunctions.ActivityAPI.MyHistory},
		{Name: "ActivitySummary", Method: http.MethodGet, Pattern: "/activities/summary", HandlerFunc: handleFunctions.ActivityAPI.Summary},
		{Name: "UserActivity", Method: http.MethodGet, Pattern: "/activities/users/:id", HandlerFunc: handleFunctions.ActivityAPI.UserHistory},
		{Name: "SystemActivity", Method: http.MethodGet, Pattern: "/activities", HandlerFunc: handleFunctions.ActivityAPI.SystemHistory, Roles: admins},
	}
}
