package handler

import (
	"fmt"
	"net/http"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/core/service"
)

type adminView struct {
	Session  *domain.Session
	Products []domain.Product
	Orders   []domain.Order
	Accounts []domain.Account
}

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	products, err := h.catalog.All(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	orders, err := h.orders.ListAll(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	accounts, err := h.accounts.List(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "admin.html", adminView{
		Session:  sessionFrom(r),
		Products: products,
		Orders:   orders,
		Accounts: accounts,
	})
}

// Admin mutations answer with a structured JSON status across the board,
// add-product included.
func (h *Handler) adminAddProduct(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, r, fmt.Errorf("%w: malformed form", domain.ErrInvalidInput))
		return
	}

	price, err := formDecimal(r, "price")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	quantity, err := formInt(r, "quantity")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}

	product, err := h.catalog.Create(r.Context(), caller, service.ProductInput{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		Price:       price,
		Quantity:    quantity,
		ImageURL:    r.PostFormValue("image_url"),
	})
	if err != nil {
		h.jsonError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		Success: true,
		Message: "product created",
		Data:    map[string]int64{"id": product.ID},
	})
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	id, err := pathID(r, "id")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, r, fmt.Errorf("%w: malformed form", domain.ErrInvalidInput))
		return
	}

	// Only fields present in the form are touched; each present field is
	// parsed strictly.
	var patch domain.ProductPatch
	if formHas(r, "name") {
		name := r.PostFormValue("name")
		patch.Name = &name
	}
	if formHas(r, "description") {
		description := r.PostFormValue("description")
		patch.Description = &description
	}
	if formHas(r, "price") {
		price, err := formDecimal(r, "price")
		if err != nil {
			h.jsonError(w, r, err)
			return
		}
		patch.Price = &price
	}
	if formHas(r, "quantity") {
		quantity, err := formInt(r, "quantity")
		if err != nil {
			h.jsonError(w, r, err)
			return
		}
		patch.Quantity = &quantity
	}
	if formHas(r, "image_url") {
		imageURL := r.PostFormValue("image_url")
		patch.ImageURL = &imageURL
	}

	if err := h.catalog.Update(r.Context(), caller, id, patch); err != nil {
		h.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{Success: true, Message: "product updated"})
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	id, err := pathID(r, "id")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	if err := h.catalog.Delete(r.Context(), caller, id); err != nil {
		h.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{Success: true, Message: "product deleted"})
}

func (h *Handler) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	id, err := pathID(r, "id")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, r, fmt.Errorf("%w: malformed form", domain.ErrInvalidInput))
		return
	}

	status := domain.OrderStatus(r.PostFormValue("status"))
	if err := h.orders.UpdateStatus(r.Context(), caller, id, status); err != nil {
		h.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{Success: true, Message: "order status updated"})
}

type orderLineJSON struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

type orderDetailJSON struct {
	OrderID   int64           `json:"order_id"`
	AccountID int64           `json:"account_id"`
	Status    string          `json:"status"`
	Total     string          `json:"total"`
	Items     []orderLineJSON `json:"items"`
}

func (h *Handler) adminOrderDetail(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	id, err := pathID(r, "id")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}

	detail, err := h.orders.Detail(r.Context(), caller, id)
	if err != nil {
		h.jsonError(w, r, err)
		return
	}

	items := make([]orderLineJSON, 0, len(detail.Lines))
	for _, line := range detail.Lines {
		items = append(items, orderLineJSON{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Subtotal:    line.Subtotal().StringFixed(2),
		})
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		Success: true,
		Message: "ok",
		Data: orderDetailJSON{
			OrderID:   detail.Order.ID,
			AccountID: detail.Order.AccountID,
			Status:    string(detail.Order.Status),
			Total:     detail.Order.Total.StringFixed(2),
			Items:     items,
		},
	})
}
