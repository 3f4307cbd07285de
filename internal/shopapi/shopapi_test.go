package shopapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	jsoniter "github.com/json-iterator/go"
	"github.com/minimall/minimall/internal/app"
	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/internal/webserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/labstack/echo/v4"

	"github.com/minimall/minimall/config"
)

func setupAPI(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))

	a := app.NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)

	ws := webserver.Init(a)
	Register()
	return ws.Echo(), db
}

func seedAPIProduct(t *testing.T, db *gorm.DB, id int64, name, category string, price int64, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Create(&domain.Product{
		ID: id, Name: name, Category: category, Price: price, Stock: stock,
		CreatedAt: now, UpdatedAt: now,
	}).Error)
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProductListing(t *testing.T) {
	e, db := setupAPI(t)
	seedAPIProduct(t, db, 1, "canvas sneaker", "shoes", 4599, 10)
	seedAPIProduct(t, db, 2, "cotton tee", "shirts", 1999, 5)

	rec := doJSON(e, http.MethodGet, "/api/products?q=sneaker", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "canvas sneaker")
	assert.NotContains(t, rec.Body.String(), "cotton tee")

	rec = doJSON(e, http.MethodGet, "/api/products/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cotton tee")

	rec = doJSON(e, http.MethodGet, "/api/products/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartFlowOverHTTP(t *testing.T) {
	e, db := setupAPI(t)
	seedAPIProduct(t, db, 1, "canvas sneaker", "shoes", 100, 5)

	rec := doJSON(e, http.MethodPost, "/api/cart/items", `{"product_id":"1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":200`)

	// Over-asking trips the stock guard.
	rec = doJSON(e, http.MethodPost, "/api/cart/items", `{"product_id":"1","quantity":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_STOCK")

	rec = doJSON(e, http.MethodPost, "/api/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p domain.Product
	require.NoError(t, db.First(&p, 1).Error)
	assert.Equal(t, 3, p.Stock)

	// Fresh cart after checkout is empty; checkout again conflicts.
	rec = doJSON(e, http.MethodPost, "/api/checkout", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_ACTIVE_CART")
}

func TestDirectPurchaseOverHTTP(t *testing.T) {
	e, db := setupAPI(t)
	seedAPIProduct(t, db, 1, "field watch", "accessories", 15900, 1)

	rec := doJSON(e, http.MethodPost, "/api/purchase", `{"product_id":"1","quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/api/purchase", `{"product_id":"1","quantity":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	out := struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
	}{}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &out))
	assert.EqualValues(t, 1, out.Total)
	assert.Equal(t, 1, out.Page)
}

func TestAskEndpoint(t *testing.T) {
	e, db := setupAPI(t)
	seedAPIProduct(t, db, 1, "canvas sneaker", "shoes", 4500, 10)
	seedAPIProduct(t, db, 2, "leather derby", "shoes", 12900, 5)
	seedAPIProduct(t, db, 3, "cotton tee", "shirts", 1999, 20)

	rec := doJSON(e, http.MethodPost, "/api/ask", `{"question":"cheap shoes under $100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "canvas sneaker")
	assert.NotContains(t, rec.Body.String(), "cotton tee")
	assert.NotContains(t, rec.Body.String(), "leather derby")

	rec = doJSON(e, http.MethodPost, "/api/ask", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunSchedulerNow_ErrorMapping(t *testing.T) {
	e, db := setupAPI(t)
	now := time.Now()
	require.NoError(t, db.Create(&domain.ShopScheduler{
		ID:        501,
		Name:      "Stock Report",
		TaskType:  "stock_report",
		Interval:  300,
		Status:    "enabled",
		NextRunAt: now.Add(300 * time.Second),
		CreatedAt: now,
		UpdatedAt: now,
	}).Error)

	rec := doJSON(e, http.MethodPost, "/api/admin/schedulers/501/run", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// An unknown scheduler is a 404, not a masked database failure.
	rec = doJSON(e, http.MethodPost, "/api/admin/schedulers/999/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCustomerHeaderSeparatesCarts(t *testing.T) {
	e, db := setupAPI(t)
	seedAPIProduct(t, db, 1, "canvas sneaker", "shoes", 100, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(`{"product_id":"1","quantity":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Customer-Id", "777")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// The default customer's cart is still empty.
	rec = doJSON(e, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := struct {
		Data struct {
			Empty bool `json:"empty"`
		} `json:"data"`
	}{}
	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Data.Empty)
}
