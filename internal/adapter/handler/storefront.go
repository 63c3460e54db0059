package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
	"github.com/anle/storefront/internal/core/service"
)

type indexView struct {
	Session *domain.Session
	Page    *service.CatalogPage
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	catalogPage, err := h.catalog.Page(r.Context(), page)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "index.html", indexView{Session: sessionFrom(r), Page: catalogPage})
}

type productView struct {
	Session *domain.Session
	Product *domain.Product
}

func (h *Handler) productDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "product.html", productView{Session: sessionFrom(r), Product: product})
}

type formView struct {
	Error string
}

func (h *Handler) registerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "register.html", formView{})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "register.html", formView{Error: "invalid form"})
		return
	}

	_, err := h.accounts.Register(r.Context(),
		r.PostFormValue("username"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("confirm_password"),
	)
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrConflict) {
		h.render(w, http.StatusBadRequest, "register.html", formView{Error: err.Error()})
		return
	}
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", formView{})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", formView{Error: "invalid form"})
		return
	}

	account, err := h.accounts.Authenticate(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.render(w, http.StatusUnauthorized, "login.html", formView{Error: domain.ErrInvalidCredentials.Error()})
		return
	}
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), domain.Session{
		AccountID: account.ID,
		Username:  account.Username,
		Admin:     account.Admin,
	})
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if session := sessionFrom(r); session != nil {
		if err := h.sessions.Delete(r.Context(), session.Token); err != nil {
			h.log.WithError(err).Warn("delete session")
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type cartView struct {
	Session *domain.Session
	Lines   []domain.CartLine
	Total   decimal.Decimal
	Error   string
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	lines, err := h.carts.Lines(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	total, err := h.carts.Total(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "cart.html", cartView{Session: sessionFrom(r), Lines: lines, Total: total})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.jsonError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, r, fmt.Errorf("%w: malformed form", domain.ErrInvalidInput))
		return
	}

	quantity := 1
	if formHas(r, "quantity") {
		if quantity, err = formInt(r, "quantity"); err != nil {
			h.jsonError(w, r, err)
			return
		}
	}

	if err := h.carts.Add(r.Context(), caller, productID, quantity); err != nil {
		h.jsonError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonResponse{Success: true, Message: "added to cart"})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	itemID, err := pathID(r, "cart_item_id")
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	if err := h.carts.Remove(r.Context(), caller, itemID); err != nil {
		h.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) checkoutPage(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	h.renderCheckout(w, r, caller, "")
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	order, err := h.orders.Checkout(r.Context(), caller)
	if errors.Is(err, domain.ErrEmptyCart) {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if errors.Is(err, domain.ErrInsufficientStock) {
		h.renderCheckout(w, r, caller, err.Error())
		return
	}
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/order-success/%d", order.ID), http.StatusSeeOther)
}

func (h *Handler) renderCheckout(w http.ResponseWriter, r *http.Request, caller domain.Caller, errMsg string) {
	lines, err := h.carts.Lines(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	if len(lines) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	total, err := h.carts.Total(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	status := http.StatusOK
	if errMsg != "" {
		status = http.StatusBadRequest
	}
	h.render(w, status, "checkout.html", cartView{Session: sessionFrom(r), Lines: lines, Total: total, Error: errMsg})
}

type orderView struct {
	Session *domain.Session
	Order   *domain.Order
}

func (h *Handler) orderSuccess(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	id, err := pathID(r, "id")
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	order, err := h.orders.Get(r.Context(), caller, id)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "order_success.html", orderView{Session: sessionFrom(r), Order: order})
}

type ordersView struct {
	Session *domain.Session
	Orders  []domain.Order
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request, caller domain.Caller) {
	orders, err := h.orders.ListForAccount(r.Context(), caller)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, http.StatusOK, "orders.html", ordersView{Session: sessionFrom(r), Orders: orders})
}
