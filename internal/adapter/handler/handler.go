package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/anle/storefront/internal/core/service"
	"github.com/anle/storefront/internal/port"
)

// Handler wires the storefront's HTTP surface onto the services.
type Handler struct {
	accounts service.AccountService
	catalog  service.CatalogService
	carts    service.CartService
	orders   service.OrderService
	sessions port.SessionStore
	log      *logrus.Logger
}

func New(
	accounts service.AccountService,
	catalog service.CatalogService,
	carts service.CartService,
	orders service.OrderService,
	sessions port.SessionStore,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		accounts: accounts,
		catalog:  catalog,
		carts:    carts,
		orders:   orders,
		sessions: sessions,
		log:      log,
	}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/product/{id:[0-9]+}", h.productDetail).Methods(http.MethodGet)

	r.HandleFunc("/register", h.registerPage).Methods(http.MethodGet)
	r.HandleFunc("/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.loginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodGet)

	r.HandleFunc("/cart", h.requirePage(h.cart)).Methods(http.MethodGet)
	r.HandleFunc("/add-to-cart/{product_id:[0-9]+}", h.requireJSON(h.addToCart)).Methods(http.MethodPost)
	r.HandleFunc("/remove-from-cart/{cart_item_id:[0-9]+}", h.requirePage(h.removeFromCart)).Methods(http.MethodPost)
	r.HandleFunc("/checkout", h.requirePage(h.checkoutPage)).Methods(http.MethodGet)
	r.HandleFunc("/checkout", h.requirePage(h.checkout)).Methods(http.MethodPost)
	r.HandleFunc("/order-success/{id:[0-9]+}", h.requirePage(h.orderSuccess)).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.requirePage(h.myOrders)).Methods(http.MethodGet)

	r.HandleFunc("/admin", h.requireAdminPage(h.adminDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/admin/add-product", h.requireAdminJSON(h.adminAddProduct)).Methods(http.MethodPost)
	r.HandleFunc("/admin/update-product/{id:[0-9]+}", h.requireAdminJSON(h.adminUpdateProduct)).Methods(http.MethodPost)
	r.HandleFunc("/admin/delete-product/{id:[0-9]+}", h.requireAdminJSON(h.adminDeleteProduct)).Methods(http.MethodPost)
	r.HandleFunc("/admin/update-order-status/{id:[0-9]+}", h.requireAdminJSON(h.adminUpdateOrderStatus)).Methods(http.MethodPost)
	r.HandleFunc("/admin/order/{id:[0-9]+}", h.requireAdminJSON(h.adminOrderDetail)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(h.notFound)

	return h.logMiddleware(h.sessionMiddleware(r))
}
