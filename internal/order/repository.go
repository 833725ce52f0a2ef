package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/db"
)

type Repository interface {
	Create(ctx context.Context, o NewOrder) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
}

type PostgresRepository struct {
	pool db.Pool
}

func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts the order and its line items in one transaction (or in the
// caller's transaction if ctx carries one) and returns them with ids assigned.
func (r *PostgresRepository) Create(ctx context.Context, no NewOrder) (*Order, error) {
	o := &Order{
		ID:       uuid.NewString(),
		Customer: no.Customer,
		Items:    make([]LineItem, 0, len(no.Items)),
	}

	err := db.RunInTx(ctx, r.pool, func(ctx context.Context, q db.Querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO orders (id, customer_id)
			VALUES ($1, $2)
			RETURNING created_at, updated_at
		`, o.ID, no.Customer.ID).Scan(&o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, it := range no.Items {
			it.ID = uuid.NewString()
			it.OrderID = o.ID
			_, err := q.Exec(ctx, `
				INSERT INTO orders_products (id, order_id, product_id, price, quantity, position)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, it.ID, it.OrderID, it.ProductID, it.Price, it.Quantity, i)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			o.Items = append(o.Items, it)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID returns (nil, nil) when no order has the given id.
func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	q := db.Conn(ctx, r.pool)

	var o Order
	var custID, custName, custEmail *string
	err := q.QueryRow(ctx, `
		SELECT o.id, o.created_at, o.updated_at, c.id, c.name, c.email
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, orderID).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &custID, &custName, &custEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	if custID != nil {
		o.Customer = customer.Customer{ID: *custID, Name: deref(custName), Email: deref(custEmail)}
	}

	rows, err := q.Query(ctx, `
		SELECT id, product_id, price, quantity
		FROM orders_products
		WHERE order_id = $1
		ORDER BY position
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	o.Items = []LineItem{}
	for rows.Next() {
		var it LineItem
		var productID *string
		if err := rows.Scan(&it.ID, &productID, &it.Price, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.OrderID = o.ID
		it.ProductID = deref(productID)
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
