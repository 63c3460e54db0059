package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/anle/storefront/internal/core/domain"
)

type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

type accountRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Admin        bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Admin:        r.Admin,
		CreatedAt:    r.CreatedAt,
	}
}

func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (username, email, password_hash, is_admin)
		VALUES (?, ?, ?, ?)`,
		account.Username, account.Email, account.PasswordHash, account.Admin,
	)
	if isDuplicateEntry(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return errors.Wrap(err, "insert account")
	}

	account.ID, err = result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "account insert id")
	}
	account.CreatedAt = time.Now().UTC()
	return nil
}

func (s *AccountStore) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return s.find(ctx, `SELECT * FROM accounts WHERE id = ?`, id)
}

func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.find(ctx, `SELECT * FROM accounts WHERE username = ?`, username)
}

func (s *AccountStore) find(ctx context.Context, query string, arg interface{}) (*domain.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query account")
	}
	account := row.toDomain()
	return &account, nil
}

func (s *AccountStore) List(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM accounts ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toDomain())
	}
	return accounts, nil
}
