package storage

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/anle/storefront/internal/core/domain"
)

type CartStore struct {
	db *sqlx.DB
}

func NewCartStore(db *sqlx.DB) *CartStore {
	return &CartStore{db: db}
}

type cartItemRow struct {
	ID        int64 `db:"id"`
	AccountID int64 `db:"account_id"`
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}

type cartLineRow struct {
	cartItemRow
	Product productRow `db:"product"`
}

// Upsert relies on the unique (account_id, product_id) key: a second add of
// the same product merges by summing quantities.
func (s *CartStore) Upsert(ctx context.Context, item *domain.CartItem) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (account_id, product_id, quantity)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		item.AccountID, item.ProductID, item.Quantity,
	)
	if err != nil {
		return errors.Wrap(err, "upsert cart item")
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "cart item insert id")
	}
	return nil
}

func (s *CartStore) FindByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	var row cartItemRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM cart_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart item")
	}
	return &domain.CartItem{
		ID:        row.ID,
		AccountID: row.AccountID,
		ProductID: row.ProductID,
		Quantity:  row.Quantity,
	}, nil
}

func (s *CartStore) LinesForAccount(ctx context.Context, accountID int64) ([]domain.CartLine, error) {
	var rows []cartLineRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT ci.id, ci.account_id, ci.product_id, ci.quantity,
		       p.id AS "product.id", p.name AS "product.name",
		       p.description AS "product.description", p.price AS "product.price",
		       p.quantity AS "product.quantity", p.image_url AS "product.image_url",
		       p.created_at AS "product.created_at"
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.account_id = ?
		ORDER BY ci.id`, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart lines")
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.CartLine{
			CartItem: domain.CartItem{
				ID:        row.ID,
				AccountID: row.AccountID,
				ProductID: row.ProductID,
				Quantity:  row.Quantity,
			},
			Product: row.Product.toDomain(),
		})
	}
	return lines, nil
}

func (s *CartStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete cart item")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *CartStore) DeleteForAccount(ctx context.Context, accountID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE account_id = ?`, accountID)
	return errors.Wrap(err, "clear cart")
}
