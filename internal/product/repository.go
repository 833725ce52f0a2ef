package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/db"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNameTaken     = errors.New("product name already in use")
	// ErrStockConflict means at least one product changed quantity between the
	// read and the guarded update.
	ErrStockConflict = errors.New("stock changed concurrently")
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	UpdateQuantity(ctx context.Context, levels []StockLevel) error
}

type PostgresRepository struct {
	pool db.Pool
}

func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, name string, price decimal.Decimal, quantity int) (*Product, error) {
	p := Product{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Price:    price.Round(2),
		Quantity: quantity,
	}

	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO products (id, name, price, quantity)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Price, p.Quantity).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, price, quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

// FindAllByID loads every product whose id is in ids with a single query.
// Unknown ids are simply absent from the result.
func (r *PostgresRepository) FindAllByID(ctx context.Context, ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, name, price, quantity, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// UpdateQuantity applies all levels in one statement. A guarded level only
// applies while the stored quantity equals its Expected value; if any level
// misses, ErrStockConflict is returned. Callers running inside a transaction get the
// partial update rolled back with it.
func (r *PostgresRepository) UpdateQuantity(ctx context.Context, levels []StockLevel) error {
	if len(levels) == 0 {
		return nil
	}

	ids := make([]string, len(levels))
	quantities := make([]int, len(levels))
	expected := make([]*int, len(levels))
	for i, l := range levels {
		ids[i] = l.ProductID
		quantities[i] = l.Quantity
		expected[i] = l.Expected
	}

	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE products AS p
		SET quantity = v.quantity, updated_at = now()
		FROM unnest($1::text[], $2::int[], $3::int[]) AS v(id, quantity, expected)
		WHERE p.id = v.id AND (v.expected IS NULL OR p.quantity = v.expected)
	`, ids, quantities, expected)
	if err != nil {
		return fmt.Errorf("update product quantities: %w", err)
	}

	if tag.RowsAffected() != int64(len(levels)) {
		return fmt.Errorf("%w: updated %d of %d products", ErrStockConflict, tag.RowsAffected(), len(levels))
	}
	return nil
}
