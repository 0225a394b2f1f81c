package posserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

// CatalogAPI serves categories and products.
type CatalogAPI struct {
	service catalogports.Service
	// lowStockThreshold applies when the request carries no threshold.
	lowStockThreshold int
}

func NewCatalogAPI(service catalogports.Service, lowStockThreshold int) CatalogAPI {
	return CatalogAPI{service: service, lowStockThreshold: lowStockThreshold}
}

// Post /api/v1/categories
func (api *CatalogAPI) CreateCategory(c *gin.Context) {
	var payload cataloghttpmapper.CategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := api.service.CreateCategory(c.Request.Context(), cataloghttpmapper.ToCategoryInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainCategory(category))
}

// Get /api/v1/categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategories(categories))
}

// Get /api/v1/categories/:id
func (api *CatalogAPI) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := api.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(category))
}

// Put /api/v1/categories/:id
func (api *CatalogAPI) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload cataloghttpmapper.CategoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := api.service.UpdateCategory(c.Request.Context(), id, cataloghttpmapper.ToCategoryInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(category))
}

// Delete /api/v1/categories/:id
func (api *CatalogAPI) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/v1/products
func (api *CatalogAPI) CreateProduct(c *gin.Context) {
	var payload cataloghttpmapper.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), cataloghttpmapper.ToProductInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainProduct(product))
}

// Get /api/v1/products
// Optional query: categoryId, search
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	var filter catalogports.ProductFilter
	if raw := c.Query("categoryId"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID <= 0 {
			respondError(c, http.StatusBadRequest, errInvalidID("categoryId"))
			return
		}
		filter.CategoryID = &categoryID
	}
	filter.Search = c.Query("search")
	products, err := api.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProducts(products))
}

// Get /api/v1/products/:id
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

// Get /api/v1/products/barcode/:barcode
func (api *CatalogAPI) GetProductByBarcode(c *gin.Context) {
	product, err := api.service.GetProductByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

// Get /api/v1/products/low-stock
func (api *CatalogAPI) LowStockProducts(c *gin.Context) {
	threshold, ok := queryInt(c, "threshold", api.lowStockThreshold)
	if !ok {
		return
	}
	products, err := api.service.LowStock(c.Request.Context(), threshold)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProducts(products))
}

// Put /api/v1/products/:id
func (api *CatalogAPI) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload cataloghttpmapper.ProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.UpdateProduct(c.Request.Context(), id, cataloghttpmapper.ToProductInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainProduct(product))
}

// Delete /api/v1/products/:id
func (api *CatalogAPI) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.DeleteProduct(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, errInvalidNumber(name))
		return 0, false
	}
	return value, true
}
