package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
)

type ProductStore struct {
	db *sqlx.DB
}

func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{db: db}
}

type productRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Quantity    int             `db:"quantity"`
	ImageURL    string          `db:"image_url"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *ProductStore) List(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	var rows []productRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM products ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list products")
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, total, nil
}

func (s *ProductStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM products ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

func (s *ProductStore) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	product := row.toDomain()
	return &product, nil
}

func (s *ProductStore) Create(ctx context.Context, product *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, quantity, image_url)
		VALUES (?, ?, ?, ?, ?)`,
		product.Name, product.Description, product.Price, product.Quantity, product.ImageURL,
	)
	if err != nil {
		return errors.Wrap(err, "insert product")
	}

	product.ID, err = result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "product insert id")
	}
	product.CreatedAt = time.Now().UTC()
	return nil
}

func (s *ProductStore) Update(ctx context.Context, product *domain.Product) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, quantity = ?, image_url = ?
		WHERE id = ?`,
		product.Name, product.Description, product.Price, product.Quantity,
		product.ImageURL, product.ID,
	)
	if err != nil {
		return errors.Wrap(err, "update product")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports zero affected rows for no-op updates too, so check
		// existence before reporting NotFound.
		if _, err := s.FindByID(ctx, product.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the product and, in the same transaction, its cart items and
// order lines. Historical orders keep their totals but lose the deleted
// product's lines.
func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE product_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete order lines")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE product_id = ?`, id); err != nil {
		return errors.Wrap(err, "delete cart items")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "commit")
}
