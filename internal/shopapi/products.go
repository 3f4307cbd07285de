package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/internal/webserver"
	"gorm.io/gorm"
)

// registerProductRoutes registers read-only catalog browsing endpoints.
// Catalog editing is deliberately absent; products enter via seeding.
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/:id", getProduct)
}

// productFilter narrows a catalog query. All fields optional.
type productFilter struct {
	Query    string
	Category string
	MinPrice int64
	MaxPrice int64
	InStock  bool
	Sort     string
}

// applyProductFilter builds the catalog query. Reads see stock as a plain
// snapshot; only the engine's locked path ever changes it.
func applyProductFilter(db *gorm.DB, f productFilter) *gorm.DB {
	q := db.Model(&domain.Product{})
	if f.Query != "" {
		if strings.EqualFold(db.Name(), "postgres") {
			q = q.Where("name ILIKE ?", "%"+f.Query+"%")
		} else {
			q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
		}
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice > 0 {
		q = q.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price <= ?", f.MaxPrice)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	return q
}

func sortClause(sortField, order string) string {
	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"created_at": "created_at",
	}
	col, ok := allowed[sortField]
	if !ok || col == "" {
		col = "id"
	}
	order = strings.ToUpper(strings.TrimSpace(order))
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	return col + " " + order
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	filter := productFilter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
		InStock:  c.QueryParam("in_stock") == "true",
	}
	if v, err := strconv.ParseInt(c.QueryParam("min_price"), 10, 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("max_price"), 10, 64); err == nil {
		filter.MaxPrice = v
	}

	base := applyProductFilter(GetDB(c), filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := base.Order(sortClause(c.QueryParam("sort"), c.QueryParam("order"))).
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

// listCategories returns the distinct category names known to the catalog.
func listCategories(db *gorm.DB) []string {
	var categories []string
	db.Model(&domain.Product{}).Distinct().Order("category ASC").Pluck("category", &categories)
	return categories
}
