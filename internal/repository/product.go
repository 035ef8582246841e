package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tokowa/commerce-agent/internal/agent/tools"
	"github.com/tokowa/commerce-agent/internal/domain"
)

const (
	searchProductsSQL = `
		SELECT id, name, description, base_price_amount, base_price_currency, stock, variant_skus
		FROM products
		WHERE tenant_id = $1 AND (name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY name
		LIMIT 20`

	getProductByIDSQL = `
		SELECT id, name, description, base_price_amount, base_price_currency, stock, variant_skus
		FROM products
		WHERE tenant_id = $1 AND id = $2`

	getProductStockSQL = `
		SELECT stock FROM products WHERE tenant_id = $1 AND id = $2`

	getVariantStockSQL = `
		SELECT stock FROM product_variants WHERE tenant_id = $1 AND product_id = $2 AND sku = $3`

	createProductSQL = `
		INSERT INTO products (id, tenant_id, name, description, base_price_amount,
		                       base_price_currency, stock, variant_skus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updateProductSQL = `
		UPDATE products
		SET name = $3, description = $4, base_price_amount = $5, base_price_currency = $6,
		    stock = $7, variant_skus = $8
		WHERE tenant_id = $1 AND id = $2`

	deleteProductSQL = `DELETE FROM products WHERE tenant_id = $1 AND id = $2`
)

// ProductRepo is the Postgres-backed tools.ProductStore.
type ProductRepo struct {
	db *sqlx.DB
}

// NewProductRepo builds a ProductRepo over db.
func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

func scanProduct(row *sql.Row) (*tools.ProductSummary, error) {
	var p tools.ProductSummary
	var amount int64
	var currency string
	var variants pq.StringArray
	err := row.Scan(&p.ID, &p.Name, &p.Description, &amount, &currency, &p.Stock, &variants)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.BasePrice = domain.Money{Amount: amount, Currency: currency}
	p.VariantSKUs = []string(variants)
	return &p, nil
}

// Search matches a tenant's products by substring against name/description.
func (r *ProductRepo) Search(ctx context.Context, tenantID, query string) ([]tools.ProductSummary, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, searchProductsSQL, tenantID, query)
	if err != nil {
		observe("product", "search", start, err)
		return nil, errors.Wrap(err, "search products")
	}
	defer rows.Close()

	var out []tools.ProductSummary
	for rows.Next() {
		var p tools.ProductSummary
		var amount int64
		var currency string
		var variants pq.StringArray
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &amount, &currency, &p.Stock, &variants); err != nil {
			observe("product", "search", start, err)
			return nil, errors.Wrap(err, "scan product row")
		}
		p.BasePrice = domain.Money{Amount: amount, Currency: currency}
		p.VariantSKUs = []string(variants)
		out = append(out, p)
	}
	observe("product", "search", start, rows.Err())
	return out, errors.Wrap(rows.Err(), "iterate product rows")
}

// GetByID fetches one product by id, scoped to its tenant.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, productID string) (*tools.ProductSummary, error) {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, getProductByIDSQL, tenantID, productID)
	p, err := scanProduct(row)
	observe("product", "get_by_id", start, err)
	if err != nil {
		return nil, errors.Wrap(err, "get product by id")
	}
	return p, nil
}

// Stock returns the available quantity for a product, or its variant if
// variantSKU is non-empty.
func (r *ProductRepo) Stock(ctx context.Context, tenantID, productID, variantSKU string) (int, error) {
	start := time.Now()
	var stock int
	var err error
	if variantSKU == "" {
		err = r.db.QueryRowContext(ctx, getProductStockSQL, tenantID, productID).Scan(&stock)
	} else {
		err = r.db.QueryRowContext(ctx, getVariantStockSQL, tenantID, productID, variantSKU).Scan(&stock)
	}
	observe("product", "stock", start, err)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "get stock")
	}
	return stock, nil
}

// Create persists a new product.
func (r *ProductRepo) Create(ctx context.Context, tenantID string, p *tools.ProductSummary) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, createProductSQL,
		p.ID, tenantID, p.Name, p.Description, p.BasePrice.Amount, p.BasePrice.Currency,
		p.Stock, pq.StringArray(p.VariantSKUs))
	observe("product", "create", start, err)
	if err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

// Update persists changes to an existing product.
func (r *ProductRepo) Update(ctx context.Context, tenantID string, p *tools.ProductSummary) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, updateProductSQL,
		tenantID, p.ID, p.Name, p.Description, p.BasePrice.Amount, p.BasePrice.Currency,
		p.Stock, pq.StringArray(p.VariantSKUs))
	observe("product", "update", start, err)
	if err != nil {
		return errors.Wrap(err, "update product")
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, tenantID, productID string) error {
	start := time.Now()
	_, err := r.db.ExecContext(ctx, deleteProductSQL, tenantID, productID)
	observe("product", "delete", start, err)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	return nil
}
