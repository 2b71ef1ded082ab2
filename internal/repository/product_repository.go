package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for catalog data access
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindVariant(ctx context.Context, variantID int64) (*domain.Variant, error)
	List(ctx context.Context, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const variantColumns = `id, product_id, size, color, measurement, age_range, price, inventory, status`

func scanVariant(row interface{ Scan(...interface{}) error }, v *domain.Variant) error {
	return row.Scan(
		&v.ID,
		&v.ProductID,
		&v.Size,
		&v.Color,
		&v.Measurement,
		&v.AgeRange,
		&v.Price,
		&v.Inventory,
		&v.Status,
	)
}

// FindByID retrieves a product and its variants ordered by variant ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	variants, err := r.variantsFor(ctx, []uuid.UUID{product.ID})
	if err != nil {
		return nil, err
	}
	product.Variants = variants[product.ID]
	if product.Variants == nil {
		product.Variants = []domain.Variant{}
	}

	return product, nil
}

// FindVariant retrieves a single variant by ID
func (r *productRepository) FindVariant(ctx context.Context, variantID int64) (*domain.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`

	v := &domain.Variant{}
	if err := scanVariant(r.db.QueryRowContext(ctx, query, variantID), v); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to find variant by ID: %w", err)
	}
	return v, nil
}

// List retrieves products with pagination and sorting, variants included
func (r *productRepository) List(ctx context.Context, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	}
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`
		SELECT id, name, description, created_at, updated_at
		FROM products
		ORDER BY %s %s, id
		LIMIT $1 OFFSET $2
	`, sortBy, sortOrder)

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	ids := []uuid.UUID{}
	for rows.Next() {
		product := &domain.Product{}
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
		ids = append(ids, product.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	if len(ids) == 0 {
		return products, total, nil
	}

	variants, err := r.variantsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, product := range products {
		product.Variants = variants[product.ID]
		if product.Variants == nil {
			product.Variants = []domain.Variant{}
		}
	}

	return products, total, nil
}

func (r *productRepository) variantsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]domain.Variant, error) {
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_id = ANY($1::uuid[])
		ORDER BY product_id, id
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.Variant, len(productIDs))
	for rows.Next() {
		var v domain.Variant
		if err := scanVariant(rows, &v); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}
	return out, nil
}
