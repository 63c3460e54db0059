package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImageURL    string
	CreatedAt   time.Time
}

// ProductPatch carries a partial admin update. Nil fields are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	ImageURL    *string
}
