package shopapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/internal/intent"
	"github.com/minimall/minimall/internal/webserver"
)

func registerAskRoutes() {
	webserver.ApiPOST("/ask", askProducts)
}

type askPayload struct {
	Question string `json:"question" form:"question"`
}

type askResult struct {
	Params   intent.SearchParams `json:"params"`
	Products []domain.Product    `json:"products"`
}

// askProducts answers a free-text question by extracting search parameters
// and running them against the catalog.
func askProducts(c echo.Context) error {
	var payload askPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse question", err.Error())
	}
	question := strings.TrimSpace(payload.Question)
	if question == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
	}

	db := GetDB(c)
	params := intent.Parse(question, listCategories(db))

	base := applyProductFilter(db, productFilter{
		Query:    params.Query,
		Category: params.Category,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		InStock:  params.InStock,
	})

	order := "id ASC"
	switch params.Sort {
	case "price_asc":
		order = "price ASC"
	case "price_desc":
		order = "price DESC"
	}

	var rows []domain.Product
	if err := base.Order(order).Limit(20).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return ok(c, askResult{Params: params, Products: rows})
}
