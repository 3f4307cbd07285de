package shopapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/webserver"
)

func registerCartRoutes() {
	webserver.ApiPOST("/cart/items", addCartItem)
	webserver.ApiGET("/cart", viewCart)
	webserver.ApiDELETE("/cart/items/:productId", removeCartItem)
}

type addItemPayload struct {
	ProductID int64 `json:"product_id,string" form:"product_id"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

func addCartItem(c echo.Context) error {
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	if payload.ProductID == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required", nil)
	}

	line, err := GetShop(c).AddItem(c.Request().Context(), customerID(c), payload.ProductID, payload.Quantity)
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, line)
}

func viewCart(c echo.Context) error {
	view, err := GetShop(c).ViewCart(c.Request().Context(), customerID(c))
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, view)
}

func removeCartItem(c echo.Context) error {
	productID, err := parseIDParam(c, "productId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	removed, err := GetShop(c).RemoveItem(c.Request().Context(), customerID(c), productID)
	if err != nil {
		return failShop(c, err)
	}
	return ok(c, map[string]interface{}{"removed": removed})
}
