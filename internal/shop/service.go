package shop

import (
	"context"
	"errors"

	"github.com/asaskevich/EventBus"
	"github.com/minimall/minimall/internal/domain"
	"gorm.io/gorm"
)

// Event topics published by the service after a successful commit.
const (
	TopicOrderCreated = "shop.order.created"
)

// Service is the storefront engine facade handed to the transport layer. It
// bundles the stock ledger, cart store and order committer behind the six
// public operations and publishes domain events after commits.
type Service struct {
	db        *gorm.DB
	ledger    *StockLedger
	carts     *CartStore
	committer *OrderCommitter
	bus       EventBus.Bus
}

func NewService(db *gorm.DB) *Service {
	ledger := NewStockLedger()
	return &Service{
		db:        db,
		ledger:    ledger,
		carts:     NewCartStore(db, ledger),
		committer: NewOrderCommitter(db, ledger),
	}
}

// SetBus attaches an event bus; without one events are dropped.
func (s *Service) SetBus(bus EventBus.Bus) {
	s.bus = bus
}

func (s *Service) publish(topic string, args ...interface{}) {
	if s.bus != nil {
		s.bus.Publish(topic, args...)
	}
}

func (s *Service) EnsureActiveCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	return s.carts.EnsureActiveCart(ctx, customerID)
}

func (s *Service) AddItem(ctx context.Context, customerID, productID int64, quantity int) (*domain.CartLine, error) {
	return s.carts.AddItem(ctx, customerID, productID, quantity)
}

func (s *Service) ViewCart(ctx context.Context, customerID int64) (*CartView, error) {
	return s.carts.ViewCart(ctx, customerID)
}

func (s *Service) RemoveItem(ctx context.Context, customerID, productID int64) (bool, error) {
	return s.carts.RemoveItem(ctx, customerID, productID)
}

func (s *Service) Checkout(ctx context.Context, customerID int64) (*domain.Order, error) {
	order, err := s.committer.Checkout(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s.publish(TopicOrderCreated, order.ID, order.CustomerID, order.Total)
	return order, nil
}

func (s *Service) DirectPurchase(ctx context.Context, customerID, productID int64, quantity int) (*domain.Order, error) {
	order, err := s.committer.DirectPurchase(ctx, customerID, productID, quantity)
	if err != nil {
		return nil, err
	}
	s.publish(TopicOrderCreated, order.ID, order.CustomerID, order.Total)
	return order, nil
}

// GetOrder loads one of the customer's orders with its lines.
func (s *Service) GetOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, []domain.OrderLine, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).
		Where("id = ? and customer_id = ?", orderID, customerID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var lines []domain.OrderLine
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).Order("product_id ASC").
		Find(&lines).Error; err != nil {
		return nil, nil, err
	}
	return &order, lines, nil
}

// ListOrders returns the customer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID int64, page, pageSize int) ([]domain.Order, int64, error) {
	base := s.db.WithContext(ctx).Model(&domain.Order{}).Where("customer_id = ?", customerID)
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	err := base.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}
