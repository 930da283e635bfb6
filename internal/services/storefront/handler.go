// Package storefront serves the customer side: menu, cart, checkout and order tracking.
package storefront

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"foodstall/internal/cart"
	"foodstall/internal/catalog"
	"foodstall/internal/livequery"
	"foodstall/internal/logger"
	"foodstall/internal/models"
	"foodstall/internal/orders"
	"foodstall/internal/sse"
	"foodstall/internal/views"
	"foodstall/internal/web"
)

const defaultKeepalive = 25 * time.Second

// Handler handles HTTP requests for the customer pages
type Handler struct {
	catalog   *catalog.Catalog
	carts     *cart.Registry
	orders    *orders.Store
	logger    *logger.Logger
	cartTTL   time.Duration
	keepalive time.Duration
}

// NewHandler creates a new storefront handler
func NewHandler(cat *catalog.Catalog, carts *cart.Registry, store *orders.Store, cartTTL time.Duration, log *logger.Logger) *Handler {
	return &Handler{
		catalog:   cat,
		carts:     carts,
		orders:    store,
		logger:    log,
		cartTTL:   cartTTL,
		keepalive: defaultKeepalive,
	}
}

// Routes registers the storefront endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Landing)
	r.Get("/menu", h.MenuRedirect)
	r.Get("/order-success", h.OrderSuccess)

	r.Get("/api/menu", h.Menu)
	r.Get("/api/menu/stream", h.MenuStream)

	r.Get("/api/cart", h.Cart)
	r.Post("/api/cart/items", h.AddCartItem)
	r.Put("/api/cart/items/{id}", h.SetCartQuantity)
	r.Delete("/api/cart/items/{id}", h.RemoveCartItem)
	r.Post("/api/checkout", h.Checkout)

	r.Get("/api/orders/{id}", h.Order)
	r.Get("/api/orders/{id}/stream", h.OrderStream)
}

// Landing handles GET /
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":  "foodstall",
		"menu":  "/api/menu",
		"cart":  "/api/cart",
		"admin": "/admin",
	})
}

// MenuRedirect handles GET /menu
func (h *Handler) MenuRedirect(w http.ResponseWriter, r *http.Request) {
	target := "/api/menu"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// OrderSuccess handles GET /order-success?order=<id>
func (h *Handler) OrderSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order")
	if orderID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	web.WriteJSON(w, http.StatusOK, views.NewTracker(orderID, h.orders.Lookup(r.Context(), orderID)))
}

// Menu handles GET /api/menu
func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategory(r.URL.Query())
	if err != nil {
		web.WriteError(w, r, h.logger, "menu_failed", err)
		return
	}

	c := h.cart(w, r)
	items := h.catalog.Items(r.Context())
	web.WriteJSON(w, http.StatusOK, views.NewMenu(items, category, c.TotalCount(), c.TotalPrice()))
}

// MenuStream handles GET /api/menu/stream. Each menu change sends a "menu" event.
func (h *Handler) MenuStream(w http.ResponseWriter, r *http.Request) {
	category, err := parseCategory(r.URL.Query())
	if err != nil {
		web.WriteError(w, r, h.logger, "menu_stream_failed", err)
		return
	}

	c := h.cart(w, r)
	stream, err := sse.New(w, r)
	if err != nil {
		web.WriteError(w, r, h.logger, "menu_stream_failed", err)
		return
	}

	latest := livequery.NewLatest[[]models.MenuItem]()
	sub := h.catalog.Subscribe(latest.Put)
	defer sub.Close()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case items := <-latest.C():
			if err := stream.Send("menu", views.NewMenu(items, category, c.TotalCount(), c.TotalPrice())); err != nil {
				return
			}
		case <-keepalive.C:
			if err := stream.Comment("keepalive"); err != nil {
				return
			}
		}
	}
}

// Cart handles GET /api/cart
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, h.cart(w, r))
}

type addItemRequest struct {
	ItemID string `json:"itemId"`
}

// AddCartItem handles POST /api/cart/items
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, h.logger, "cart_add_failed", err)
		return
	}
	if req.ItemID == "" {
		web.WriteError(w, r, h.logger, "cart_add_failed", models.ValidationError{Field: "itemId", Message: "is required"})
		return
	}

	item, err := h.catalog.Item(r.Context(), req.ItemID)
	if err != nil {
		web.WriteError(w, r, h.logger, "cart_add_failed", err)
		return
	}
	if !item.Available {
		web.WriteError(w, r, h.logger, "cart_add_failed", models.ValidationError{Field: "itemId", Message: item.Name + " is unavailable"})
		return
	}

	c := h.cart(w, r)
	c.AddItem(item)
	h.writeCart(w, c)
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// SetCartQuantity handles PUT /api/cart/items/{id}
func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteError(w, r, h.logger, "cart_update_failed", err)
		return
	}
	if req.Quantity == nil {
		web.WriteError(w, r, h.logger, "cart_update_failed", models.ValidationError{Field: "quantity", Message: "is required"})
		return
	}

	c := h.cart(w, r)
	c.SetQuantity(chi.URLParam(r, "id"), *req.Quantity)
	h.writeCart(w, c)
}

// RemoveCartItem handles DELETE /api/cart/items/{id}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c := h.cart(w, r)
	c.RemoveItem(chi.URLParam(r, "id"))
	h.writeCart(w, c)
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout handles POST /api/checkout. An empty body pays cash.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	requestID := web.RequestID(r.Context())

	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := web.DecodeJSON(w, r, &req); err != nil {
			web.WriteError(w, r, h.logger, "checkout_failed", err)
			return
		}
	}

	c := h.cart(w, r)
	placed, err := c.PlaceOrder(r.Context(), req.PaymentMethod)
	if err != nil {
		web.WriteError(w, r, h.logger, "checkout_failed", err)
		return
	}

	h.logger.Info("order_placed", "Order placed", requestID, map[string]interface{}{
		"order_id":     placed.ID,
		"order_number": placed.OrderNumber,
	})
	web.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":          placed.ID,
		"orderNumber": placed.OrderNumber,
		"tracker":     "/order-success?order=" + url.QueryEscape(placed.ID),
	})
}

// Order handles GET /api/orders/{id}. A missing or unreadable order is 404.
func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	o := h.orders.Lookup(r.Context(), orderID)
	if o == nil {
		web.WriteError(w, r, h.logger, "order_lookup_failed", models.ErrNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, views.NewTracker(orderID, o))
}

// OrderStream handles GET /api/orders/{id}/stream. It sends "order" events
// until the order disappears, then one "not_found" event and closes.
func (h *Handler) OrderStream(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	stream, err := sse.New(w, r)
	if err != nil {
		web.WriteError(w, r, h.logger, "order_stream_failed", err)
		return
	}

	latest := livequery.NewLatest[*models.Order]()
	sub := h.orders.SubscribeOne(orderID, latest.Put)
	defer sub.Close()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case o := <-latest.C():
			if o == nil {
				stream.Send("not_found", views.NewTracker(orderID, nil))
				return
			}
			if err := stream.Send("order", views.NewTracker(orderID, o)); err != nil {
				return
			}
		case <-keepalive.C:
			if err := stream.Comment("keepalive"); err != nil {
				return
			}
		}
	}
}

func (h *Handler) cart(w http.ResponseWriter, r *http.Request) *cart.Cart {
	return h.carts.Get(web.CartSession(w, r, h.cartTTL))
}

func (h *Handler) writeCart(w http.ResponseWriter, c *cart.Cart) {
	web.WriteJSON(w, http.StatusOK, views.NewCart(c.Lines(), c.TotalPrice(), c.TotalCount()))
}

func parseCategory(q url.Values) (models.Category, error) {
	raw := q.Get("category")
	if raw == "" {
		return models.CategoryAll, nil
	}
	category := models.Category(raw)
	if category != models.CategoryAll && !category.Valid() {
		return "", models.ValidationError{Field: "category", Message: "unknown category " + raw}
	}
	return category, nil
}
