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

type OrderStore struct {
	db *sqlx.DB
}

func NewOrderStore(db *sqlx.DB) *OrderStore {
	return &OrderStore{db: db}
}

type orderRow struct {
	ID        int64              `db:"id"`
	AccountID int64              `db:"account_id"`
	Total     decimal.Decimal    `db:"total_price"`
	Status    domain.OrderStatus `db:"status"`
	CreatedAt time.Time          `db:"created_at"`
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:        r.ID,
		AccountID: r.AccountID,
		Total:     r.Total,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

type orderLineRow struct {
	ID          int64           `db:"id"`
	OrderID     int64           `db:"order_id"`
	ProductID   int64           `db:"product_id"`
	Quantity    int             `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	ProductName string          `db:"product_name"`
}

type checkoutLineRow struct {
	ProductID int64           `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Price     decimal.Decimal `db:"price"`
}

// CreateFromCart runs the whole checkout inside one database transaction:
// snapshot the cart at live prices, insert the order and its lines, decrement
// each product's stock guarded by the current quantity, clear the cart. The
// guarded UPDATE is what keeps two concurrent checkouts from both taking the
// last unit: whichever commits second matches zero rows and rolls back.
func (s *OrderStore) CreateFromCart(ctx context.Context, accountID int64) (*domain.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var lines []checkoutLineRow
	err = tx.SelectContext(ctx, &lines, `
		SELECT ci.product_id, ci.quantity, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.account_id = ?
		ORDER BY ci.id`, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "snapshot cart")
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (account_id, total_price, status)
		VALUES (?, ?, ?)`,
		accountID, total, domain.OrderStatusPaid,
	)
	if err != nil {
		return nil, errors.Wrap(err, "insert order")
	}
	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "order insert id")
	}

	for _, line := range lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
			VALUES (?, ?, ?, ?)`,
			orderID, line.ProductID, line.Quantity, line.Price,
		)
		if err != nil {
			return nil, errors.Wrap(err, "insert order line")
		}

		result, err = tx.ExecContext(ctx, `
			UPDATE products
			SET quantity = quantity - ?
			WHERE id = ? AND quantity >= ?`,
			line.Quantity, line.ProductID, line.Quantity,
		)
		if err != nil {
			return nil, errors.Wrap(err, "decrement stock")
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return nil, domain.ErrInsufficientStock
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE account_id = ?`, accountID); err != nil {
		return nil, errors.Wrap(err, "clear cart")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit")
	}

	return &domain.Order{
		ID:        orderID,
		AccountID: accountID,
		Total:     total,
		Status:    domain.OrderStatusPaid,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *OrderStore) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	order := row.toDomain()
	return &order, nil
}

func (s *OrderStore) ListForAccount(ctx context.Context, accountID int64) ([]domain.Order, error) {
	return s.list(ctx, `SELECT * FROM orders WHERE account_id = ? ORDER BY id DESC`, accountID)
}

func (s *OrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(ctx, `SELECT * FROM orders ORDER BY id DESC`)
}

func (s *OrderStore) list(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toDomain())
	}
	return orders, nil
}

func (s *OrderStore) Lines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	var rows []orderLineRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.unit_price,
		       p.name AS product_name
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		WHERE ol.order_id = ?
		ORDER BY ol.id`, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "list order lines")
	}

	lines := make([]domain.OrderLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.OrderLine{
			ID:          row.ID,
			OrderID:     row.OrderID,
			ProductID:   row.ProductID,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			ProductName: row.ProductName,
		})
	}
	return lines, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	result, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return errors.Wrap(err, "update order status")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Setting the status an order already has affects zero rows.
		if _, err := s.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
