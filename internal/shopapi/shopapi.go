// Package shopapi exposes the storefront engine over HTTP. It is protocol
// glue only: every state change goes through the shop service operations.
package shopapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/app"
	"github.com/minimall/minimall/internal/shop"
	"github.com/minimall/minimall/internal/webserver"
	"gorm.io/gorm"
)

// Register wires all storefront routes into the web server.
func Register() {
	registerProductRoutes()
	registerCartRoutes()
	registerOrderRoutes()
	registerAskRoutes()
	registerSchedulerRoutes()
}

// GetDB returns the request-scoped database handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetApp(c).DB()
}

// GetShop returns the storefront engine facade.
func GetShop(c echo.Context) *shop.Service {
	return webserver.GetApp(c).ShopService()
}

// customerID resolves the caller's identity. The demo storefront has no
// account system; callers may pass X-Customer-Id, everyone else shares the
// default demo customer.
func customerID(c echo.Context) int64 {
	if v := c.Request().Header.Get("X-Customer-Id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return app.DefaultCustomerId
}

type apiError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail,omitempty"`
}

type apiResponse struct {
	Data  interface{} `json:"data,omitempty"`
	Error *apiError   `json:"error,omitempty"`
}

type pagedResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiResponse{Error: &apiError{Code: code, Message: message, Detail: detail}})
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{Data: data, Total: total, Page: page, PageSize: pageSize})
}

// failShop maps engine errors onto the HTTP error vocabulary.
func failShop(c echo.Context, err error) error {
	switch {
	case errors.Is(err, shop.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, shop.ErrInsufficientStock):
		return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
	case errors.Is(err, shop.ErrNoActiveCart):
		return fail(c, http.StatusConflict, "NO_ACTIVE_CART", err.Error(), nil)
	case errors.Is(err, shop.ErrEmptyCart):
		return fail(c, http.StatusConflict, "EMPTY_CART", err.Error(), nil)
	case errors.Is(err, shop.ErrInvalidQuantity):
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, shop.ErrInvariantViolation):
		return fail(c, http.StatusConflict, "INVARIANT_VIOLATION", err.Error(), nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "operation failed", err.Error())
	}
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
