package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartStore manages the lifecycle of a customer's active cart and its lines.
// Every mutating operation runs in its own transaction and consults the stock
// ledger before touching quantities.
type CartStore struct {
	db     *gorm.DB
	ledger *StockLedger
}

func NewCartStore(db *gorm.DB, ledger *StockLedger) *CartStore {
	return &CartStore{db: db, ledger: ledger}
}

// CartLineView is one cart line joined with its product name and extended total.
type CartLineView struct {
	ProductID   int64  `json:"product_id,string"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// CartView is the read model returned by ViewCart. Empty is true when the
// customer has no active cart.
type CartView struct {
	CartID int64          `json:"cart_id,string"`
	Empty  bool           `json:"empty"`
	Lines  []CartLineView `json:"lines"`
	Total  int64          `json:"total"`
}

var activeKey int64 = 1

// ensureActiveCartTx returns the customer's active cart, creating it when
// absent. Concurrent first-time callers race on the (customer_id, active_key)
// unique index; the loser re-reads the winner's cart instead of producing a
// second active cart.
func (s *CartStore) ensureActiveCartTx(tx *gorm.DB, customerID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := tx.Where("customer_id = ? and status = ?", customerID, domain.CartStatusActive).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	cart = domain.Cart{
		ID:         common.UUIDint64(),
		CustomerID: customerID,
		Status:     domain.CartStatusActive,
		ActiveKey:  &activeKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// The create runs under a savepoint: postgres aborts the whole
	// transaction on a unique violation, which would poison the re-read
	// below. The nested transaction rolls back to the savepoint instead.
	err = tx.Transaction(func(stx *gorm.DB) error {
		return stx.Create(&cart).Error
	})
	if err == nil {
		zap.L().Info("created active cart",
			zap.Int64("cart_id", cart.ID),
			zap.Int64("customer_id", customerID))
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// Lost the creation race; the winner's cart must exist now.
	var existing domain.Cart
	if err := tx.Where("customer_id = ? and status = ?", customerID, domain.CartStatusActive).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("%w: duplicate active cart conflict but none readable for customer %d",
			ErrInvariantViolation, customerID)
	}
	return &existing, nil
}

// EnsureActiveCart returns the id of the customer's active cart, creating one
// if none exists.
func (s *CartStore) EnsureActiveCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	var cart *domain.Cart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = s.ensureActiveCartTx(tx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a product to the customer's active cart. The add is
// accepted only if the cart's merged quantity for that product fits within the
// product's live stock at lock time; reservations held by other carts are not
// counted, checkout re-validates as the backstop.
func (s *CartStore) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var line domain.CartLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := s.ensureActiveCartTx(tx, customerID)
		if err != nil {
			return err
		}

		product, err := s.ledger.LockAndGet(tx, productID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? and product_id = ?", cart.ID, productID).First(&line).Error
		existing := line.Quantity
		newLine := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !newLine {
			return err
		}

		if existing+quantity > product.Stock {
			return fmt.Errorf("%w: product %d has %d, cart wants %d",
				ErrInsufficientStock, productID, product.Stock, existing+quantity)
		}

		now := time.Now()
		if newLine {
			// First add: pin the price snapshot.
			line = domain.CartLine{
				ID:        common.UUIDint64(),
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price,
				CreatedAt: now,
				UpdatedAt: now,
			}
			return tx.Create(&line).Error
		}

		// Merge: bump quantity, keep the first-add price snapshot.
		line.Quantity = existing + quantity
		line.UpdatedAt = now
		return tx.Model(&domain.CartLine{}).
			Where("id = ?", line.ID).
			Updates(map[string]interface{}{
				"quantity":   line.Quantity,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ViewCart returns the active cart's lines with extended totals. A customer
// without an active cart gets an empty view, never an error.
func (s *CartStore) ViewCart(ctx context.Context, customerID int64) (*CartView, error) {
	db := s.db.WithContext(ctx)

	var cart domain.Cart
	err := db.Where("customer_id = ? and status = ?", customerID, domain.CartStatusActive).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &CartView{Empty: true, Lines: []CartLineView{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []domain.CartLine
	if err := db.Where("cart_id = ?", cart.ID).Order("created_at ASC").Find(&lines).Error; err != nil {
		return nil, err
	}

	names := map[int64]string{}
	if len(lines) > 0 {
		ids := make([]int64, 0, len(lines))
		for _, l := range lines {
			ids = append(ids, l.ProductID)
		}
		var products []domain.Product
		if err := db.Select("id", "name").Where("id in ?", ids).Find(&products).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	view := &CartView{CartID: cart.ID, Lines: make([]CartLineView, 0, len(lines))}
	for _, l := range lines {
		lineTotal := int64(l.Quantity) * l.UnitPrice
		view.Lines = append(view.Lines, CartLineView{
			ProductID:   l.ProductID,
			ProductName: names[l.ProductID],
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   lineTotal,
		})
		view.Total += lineTotal
	}
	return view, nil
}

// RemoveItem deletes the product's line from the active cart. Removing an
// absent line is not an error; the return value reports whether a line was
// actually deleted.
func (s *CartStore) RemoveItem(ctx context.Context, customerID, productID int64) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart domain.Cart
		err := tx.Where("customer_id = ? and status = ?", customerID, domain.CartStatusActive).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Where("cart_id = ? and product_id = ?", cart.ID, productID).
			Delete(&domain.CartLine{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
