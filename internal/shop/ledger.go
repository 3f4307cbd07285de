package shop

import (
	"errors"
	"fmt"
	"sort"

	"github.com/minimall/minimall/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockLedger is the sole authority for reading and decrementing product
// stock. Both methods must run on a transaction handle; the row lock taken by
// LockAndGet is held until that transaction commits or rolls back.
type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// withRowLock applies SELECT ... FOR UPDATE on engines that support it.
// sqlite serializes writers at the connection level and rejects the clause,
// so it is omitted there, the same way the web layer gates ILIKE on postgres.
func withRowLock(tx *gorm.DB) *gorm.DB {
	if tx.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// LockAndGet acquires an exclusive transaction-scoped lock on the product row
// and returns its current state. Concurrent lockers of the same product block
// until the holder's transaction ends.
func (l *StockLedger) LockAndGet(tx *gorm.DB, productID int64) (*domain.Product, error) {
	var product domain.Product
	err := withRowLock(tx).Where("id = ?", productID).First(&product).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, productID)
	case err != nil:
		return nil, err
	}
	return &product, nil
}

// LockAndGetAll locks multiple product rows in ascending-id order. The fixed
// order prevents circular waits between concurrent multi-product checkouts
// that touch overlapping product sets.
func (l *StockLedger) LockAndGetAll(tx *gorm.DB, productIDs []int64) (map[int64]*domain.Product, error) {
	ids := make([]int64, len(productIDs))
	copy(ids, productIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locked := make(map[int64]*domain.Product, len(ids))
	for _, id := range ids {
		if _, ok := locked[id]; ok {
			continue
		}
		product, err := l.LockAndGet(tx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = product
	}
	return locked, nil
}

// Decrement reduces the locked product's stock by quantity. Callers validate
// availability before calling; the guard here is a final backstop so stock can
// never go negative even on a caller bug.
func (l *StockLedger) Decrement(tx *gorm.DB, product *domain.Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > product.Stock {
		return fmt.Errorf("%w: product %d has %d, want %d",
			ErrInsufficientStock, product.ID, product.Stock, quantity)
	}
	product.Stock -= quantity
	return tx.Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Update("stock", product.Stock).Error
}
