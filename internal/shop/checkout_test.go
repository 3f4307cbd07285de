package shop

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/minimall/minimall/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cartStatus(t *testing.T, db *gorm.DB, cartID int64) string {
	t.Helper()
	var cart domain.Cart
	require.NoError(t, db.First(&cart, cartID).Error)
	return cart.Status
}

func TestCheckout_NoActiveCart(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Checkout(ctx(), customerA)
	assert.ErrorIs(t, err, ErrNoActiveCart)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 10)

	_, err := svc.AddItem(ctx(), customerA, 1, 2)
	require.NoError(t, err)
	removed, err := svc.RemoveItem(ctx(), customerA, 1)
	require.NoError(t, err)
	require.True(t, removed)

	_, err = svc.Checkout(ctx(), customerA)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var orders int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)
}

func TestCheckout_TwoLineScenario(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 10)
	seedProduct(t, db, 2, "gadget", 500, 1)

	_, err := svc.AddItem(ctx(), customerA, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx(), customerA, 2, 1)
	require.NoError(t, err)

	cart, err := svc.EnsureActiveCart(ctx(), customerA)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx(), customerA)
	require.NoError(t, err)
	assert.Equal(t, int64(700), order.Total)

	fetched, lines, err := svc.GetOrder(ctx(), customerA, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, fetched.ID)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(100), lines[0].UnitPrice)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(500), lines[1].UnitPrice)

	assert.Equal(t, 8, productStock(t, db, 1))
	assert.Equal(t, 0, productStock(t, db, 2))
	assert.Equal(t, domain.CartStatusCheckedOut, cartStatus(t, db, cart.ID))

	// The checked-out cart is terminal; the next add opens a fresh cart.
	_, err = svc.AddItem(ctx(), customerA, 1, 1)
	require.NoError(t, err)
	next, err := svc.EnsureActiveCart(ctx(), customerA)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, next.ID)
}

func TestCheckout_AtomicOnInsufficientStock(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 10)
	seedProduct(t, db, 2, "gadget", 500, 1)

	_, err := svc.AddItem(ctx(), customerA, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx(), customerA, 2, 1)
	require.NoError(t, err)

	// Someone else drains product 2 before customer A checks out.
	_, err = svc.DirectPurchase(ctx(), customerB, 2, 1)
	require.NoError(t, err)

	cart, err := svc.EnsureActiveCart(ctx(), customerA)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx(), customerA)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// All-or-nothing: no order, no stock movement, cart still active.
	var orders int64
	require.NoError(t, db.Model(&domain.Order{}).
		Where("customer_id = ?", customerA).Count(&orders).Error)
	assert.Equal(t, int64(0), orders)
	assert.Equal(t, 10, productStock(t, db, 1))
	assert.Equal(t, 0, productStock(t, db, 2))
	assert.Equal(t, domain.CartStatusActive, cartStatus(t, db, cart.ID))
}

func TestCheckout_BackstopsCrossCartOversell(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 5)

	// Both customers staged 3 of 5 (allowed at add time); only one checkout
	// can consume within stock.
	_, err := svc.AddItem(ctx(), customerA, 1, 3)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx(), customerB, 1, 3)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx(), customerA)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx(), customerB)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 2, productStock(t, db, 1))
}

func TestDirectPurchase(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 5)

	order, err := svc.DirectPurchase(ctx(), customerA, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(200), order.Total)
	assert.Equal(t, 3, productStock(t, db, 1))

	_, lines, err := svc.GetOrder(ctx(), customerA, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	// Cart state is untouched by buy-now.
	view, err := svc.ViewCart(ctx(), customerA)
	require.NoError(t, err)
	assert.True(t, view.Empty)

	_, err = svc.DirectPurchase(ctx(), customerA, 1, 4)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, productStock(t, db, 1))

	_, err = svc.DirectPurchase(ctx(), customerA, 99, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.DirectPurchase(ctx(), customerA, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestStockFloor_ConcurrentDirectPurchases(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 5)

	const buyers = 6
	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.DirectPurchase(ctx(), int64(2000+n), 1, 2); err == nil {
				succeeded.Add(1)
			}
		}(i)
	}
	wg.Wait()

	// 5 units sold in pairs: exactly two buyers win, one unit strands.
	assert.Equal(t, int32(2), succeeded.Load())
	assert.Equal(t, 1, productStock(t, db, 1))
	assert.GreaterOrEqual(t, productStock(t, db, 1), 0)
}

func TestListOrders(t *testing.T) {
	svc, db := setupService(t)
	seedProduct(t, db, 1, "widget", 100, 10)

	_, err := svc.DirectPurchase(ctx(), customerA, 1, 1)
	require.NoError(t, err)
	_, err = svc.DirectPurchase(ctx(), customerA, 1, 2)
	require.NoError(t, err)
	_, err = svc.DirectPurchase(ctx(), customerB, 1, 1)
	require.NoError(t, err)

	orders, total, err := svc.ListOrders(ctx(), customerA, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	// Orders are customer-scoped reads.
	_, _, err = svc.GetOrder(ctx(), customerB, orders[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
