package domain

type CartItem struct {
	ID        int64
	AccountID int64
	ProductID int64
	Quantity  int
}

// CartLine is a cart item joined with its product, as listed in the cart view.
type CartLine struct {
	CartItem
	Product Product
}
