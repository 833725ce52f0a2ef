package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andreasstove999/ecommerce-system/services/ordering-service-go/internal/db"
)

// ErrEmailTaken is returned by Create when another customer already uses the email.
var ErrEmailTaken = errors.New("email already in use")

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, name, email string) (*Customer, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
}

type PostgresRepository struct {
	pool db.Pool
}

func NewPostgresRepository(pool db.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, name, email string) (*Customer, error) {
	c := Customer{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
	}

	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO customers (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Email).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	return &c, nil
}

// FindByID returns (nil, nil) when no customer has the given id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select customer: %w", err)
	}
	return &c, nil
}
