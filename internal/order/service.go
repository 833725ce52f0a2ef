package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/product"
)

type CustomerLookup interface {
	// FindByID returns (nil, nil) when the customer does not exist.
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
}

type ProductCatalog interface {
	FindAllByID(ctx context.Context, ids []string) ([]product.Product, error)
	UpdateQuantity(ctx context.Context, levels []product.StockLevel) error
}

type OrderStore interface {
	Create(ctx context.Context, o NewOrder) (*Order, error)
}

// Transactor runs fn so that every store call made with the ctx it receives
// commits or rolls back together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *Order) error
}

type Option func(*Service)

func WithTransactor(tx Transactor) Option {
	return func(s *Service) { s.tx = tx }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service creates orders: it checks the customer and the requested products
// against the catalog, snapshots prices, stores the order and decrements stock.
type Service struct {
	customers CustomerLookup
	catalog   ProductCatalog
	orders    OrderStore

	tx        Transactor
	publisher Publisher
	logger    *slog.Logger
}

func NewService(customers CustomerLookup, catalog ProductCatalog, orders OrderStore, opts ...Option) *Service {
	s := &Service{
		customers: customers,
		catalog:   catalog,
		orders:    orders,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates req and persists a new order. Business rule failures are
// returned as *ValidationError and leave the catalog untouched; the first
// offending item in request order is reported.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	cust, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if cust == nil {
		return nil, &ValidationError{Kind: CustomerNotFound, CustomerID: req.CustomerID}
	}

	ids := make([]string, len(req.Items))
	for i, it := range req.Items {
		ids[i] = it.ProductID
	}

	products, err := s.catalog.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(products) == 0 {
		return nil, &ValidationError{Kind: NoProductsMatched, CustomerID: req.CustomerID}
	}

	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range req.Items {
		if _, ok := byID[it.ProductID]; !ok {
			return nil, &ValidationError{Kind: ProductNotFound, CustomerID: req.CustomerID, ProductID: it.ProductID}
		}
	}

	// Repeated product IDs draw on the same stock, so demand is summed per
	// product; the item that pushes a product past its stock is reported.
	demand := make(map[string]int, len(byID))
	var productIDs []string
	items := make([]LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		p := byID[it.ProductID]
		if _, seen := demand[p.ID]; !seen {
			productIDs = append(productIDs, p.ID)
		}
		demand[p.ID] += it.Quantity
		if demand[p.ID] > p.Quantity {
			return nil, &ValidationError{
				Kind:       InsufficientStock,
				CustomerID: req.CustomerID,
				ProductID:  it.ProductID,
				Quantity:   it.Quantity,
			}
		}
		items = append(items, LineItem{ProductID: p.ID, Quantity: it.Quantity, Price: p.Price})
	}

	// Without a transactor the order commits on its own, so a guarded update
	// that misses would leave it without its stock change. Overwrite instead.
	guarded := s.tx != nil
	levels := make([]product.StockLevel, 0, len(productIDs))
	for _, id := range productIDs {
		onHand := byID[id].Quantity
		l := product.StockLevel{ProductID: id, Quantity: onHand - demand[id]}
		if guarded {
			l.Expected = &onHand
		}
		levels = append(levels, l)
	}

	var created *Order
	persist := func(ctx context.Context) error {
		o, err := s.orders.Create(ctx, NewOrder{Customer: *cust, Items: items})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.catalog.UpdateQuantity(ctx, levels); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		created = o
		return nil
	}

	if s.tx != nil {
		err = s.tx.WithinTx(ctx, persist)
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"order_id", created.ID,
		"customer_id", cust.ID,
		"items", len(created.Items),
		"total", created.Total().StringFixed(2),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, created); err != nil {
			s.logger.Error("publish order created failed", "order_id", created.ID, "err", err)
		}
	}

	return created, nil
}

func validateRequest(req CreateRequest) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: customerId is required", ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}

	for i, it := range req.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidRequest, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be > 0", ErrInvalidRequest, i)
		}
	}
	return nil
}
