package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/pkg/common"
	"github.com/minimall/minimall/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderCommitter converts purchase intent into immutable orders. It is the
// only place where stock is permanently consumed.
type OrderCommitter struct {
	db     *gorm.DB
	ledger *StockLedger
}

func NewOrderCommitter(db *gorm.DB, ledger *StockLedger) *OrderCommitter {
	return &OrderCommitter{db: db, ledger: ledger}
}

// Checkout turns the customer's active cart into an order. All of the cart's
// products are locked in ascending-id order, every line is re-validated
// against locked stock, and either the whole cart commits (order created,
// stock decremented, cart checked_out) or nothing changes.
func (c *OrderCommitter) Checkout(ctx context.Context, customerID int64) (*domain.Order, error) {
	var order domain.Order
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart domain.Cart
		err := tx.Where("customer_id = ? and status = ?", customerID, domain.CartStatusActive).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoActiveCart
		}
		if err != nil {
			return err
		}

		var lines []domain.CartLine
		if err := tx.Where("cart_id = ?", cart.ID).Order("product_id ASC").Find(&lines).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		productIDs := make([]int64, 0, len(lines))
		for _, l := range lines {
			productIDs = append(productIDs, l.ProductID)
		}
		locked, err := c.ledger.LockAndGetAll(tx, productIDs)
		if err != nil {
			return err
		}

		// Validate every line before touching any stock.
		for _, l := range lines {
			product := locked[l.ProductID]
			if l.Quantity > product.Stock {
				metrics.IncrCounter("shop_checkout_conflict", 1)
				return fmt.Errorf("%w: product %d has %d, cart wants %d",
					ErrInsufficientStock, l.ProductID, product.Stock, l.Quantity)
			}
		}

		now := time.Now()
		order = domain.Order{
			ID:         common.UUIDint64(),
			CustomerID: customerID,
			CreatedAt:  now,
		}
		orderLines := make([]domain.OrderLine, 0, len(lines))
		for _, l := range lines {
			orderLines = append(orderLines, domain.OrderLine{
				ID:        common.UUIDint64(),
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice, // snapshot carried over from the cart line
				CreatedAt: now,
			})
			order.Total += int64(l.Quantity) * l.UnitPrice
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Create(&orderLines).Error; err != nil {
			return err
		}

		for _, l := range lines {
			if err := c.ledger.Decrement(tx, locked[l.ProductID], l.Quantity); err != nil {
				return err
			}
		}

		// active -> checked_out exactly once; anything else means a racing
		// writer got here first despite the cart row being customer-scoped.
		res := tx.Model(&domain.Cart{}).
			Where("id = ? and status = ?", cart.ID, domain.CartStatusActive).
			Updates(map[string]interface{}{
				"status":     domain.CartStatusCheckedOut,
				"active_key": nil,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: cart %d already left active state", ErrInvariantViolation, cart.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrCounter("shop_orders_created", 1)
	zap.L().Info("checkout committed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("total", order.Total))
	return &order, nil
}

// DirectPurchase buys a single product immediately, bypassing and never
// touching the customer's cart.
func (c *OrderCommitter) DirectPurchase(ctx context.Context, customerID, productID int64, quantity int) (*domain.Order, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var order domain.Order
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := c.ledger.LockAndGet(tx, productID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return fmt.Errorf("%w: product %d has %d, want %d",
				ErrInsufficientStock, productID, product.Stock, quantity)
		}

		now := time.Now()
		order = domain.Order{
			ID:         common.UUIDint64(),
			CustomerID: customerID,
			Total:      int64(quantity) * product.Price,
			CreatedAt:  now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		line := domain.OrderLine{
			ID:        common.UUIDint64(),
			OrderID:   order.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			CreatedAt: now,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		return c.ledger.Decrement(tx, product, quantity)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrCounter("shop_orders_created", 1)
	zap.L().Info("direct purchase committed",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", customerID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))
	return &order, nil
}
