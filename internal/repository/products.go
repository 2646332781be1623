package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// PostgresProductCatalog reads the products table owned by the catalog admin.
type PostgresProductCatalog struct {
	db *sql.DB
}

func NewPostgresProductCatalog(db *sql.DB) *PostgresProductCatalog {
	return &PostgresProductCatalog{db: db}
}

func (c *PostgresProductCatalog) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := c.db.QueryRowContext(ctx,
		`SELECT id, slug, name, base_price FROM products WHERE slug = $1`, slug,
	).Scan(&p.ID, &p.Slug, &p.Name, &p.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
