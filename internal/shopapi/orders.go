package shopapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiPOST("/checkout", checkout)
	webserver.ApiPOST("/purchase", directPurchase)
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
}

func checkout(c echo.Context) error {
	order, err := GetShop(c).Checkout(c.Request().Context(), customerID(c))
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, order)
}

type purchasePayload struct {
	ProductID int64 `json:"product_id,string" form:"product_id"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

func directPurchase(c echo.Context) error {
	var payload purchasePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse purchase", err.Error())
	}
	if payload.ProductID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required", nil)
	}

	order, err := GetShop(c).DirectPurchase(c.Request().Context(), customerID(c), payload.ProductID, payload.Quantity)
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, order)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)
	orders, total, err := GetShop(c).ListOrders(c.Request().Context(), customerID(c), page, pageSize)
	if err != nil {
		return failShop(c, err)
	}
	return paged(c, orders, total, page, pageSize)
}

type orderDetail struct {
	Order domain.Order       `json:"order"`
	Lines []domain.OrderLine `json:"lines"`
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, lines, err := GetShop(c).GetOrder(c.Request().Context(), customerID(c), id)
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, orderDetail{Order: *order, Lines: lines})
}
