// Package product manages catalog products: persistence, the image-upload
// creation flow, and the HTTP handlers exposing them.
package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Product represents one catalog entry. ImageURL is nil when the product was
// created without an image.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  *string   `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines product data access. The interface exists so the
// creation flow can be exercised against a fake store in tests.
type Repository interface {
	Insert(ctx context.Context, name string, price float64, imageURL *string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id int64) error
}

// PostgresRepository implements Repository over a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a PostgresRepository with the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores one product row and returns it with the assigned id.
func (r *PostgresRepository) Insert(ctx context.Context, name string, price float64, imageURL *string) (*Product, error) {
	p := &Product{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO products (name, price, image_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, price, image_url, created_at`,
		name, price, imageURL,
	).Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

// List returns all products in store order. The result is never nil.
func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, price, image_url, created_at FROM products`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Delete removes the row with the given id. Deleting an id that does not
// exist is indistinguishable from success: the statement is unconditional and
// the affected-row count is not checked.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
