package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pawonsalam/restosuite/internal/cart"
	"github.com/pawonsalam/restosuite/internal/catalog"
	"github.com/pawonsalam/restosuite/internal/dataurl"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/metrics"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/orders"
	"github.com/pawonsalam/restosuite/internal/upload"
	"github.com/pkg/errors"
)

const (
	msgMenuNotFound     = "Menu tidak ditemukan."
	msgAdminRequired    = "Mode kelola belum aktif."
	msgBadRequest       = "Permintaan tidak valid."
	msgCartFailed       = "Keranjang gagal disimpan. Silakan coba lagi."
	msgCartEmpty        = "Keranjang masih kosong."
	msgMinQuantity      = "Jumlah minimal 1."
	msgOrderNotFound    = "Pesanan tidak ditemukan."
	msgServerError      = "Terjadi kesalahan server."
	msgCategoryEmpty    = "Nama kategori tidak boleh kosong."
	msgCategoryExists   = "Kategori tersebut sudah ada!"
	msgSaveSuccess      = "Sukses! Semua perubahan telah disimpan."
	msgSaveSuperseded   = "Perubahan ini sudah digantikan oleh penyimpanan yang lebih baru."
	msgSaveInvalidImage = "Gambar menu tidak valid."
	msgSaveFailed       = "Terjadi kesalahan saat menyimpan. Perubahan mungkin tidak tersimpan."
	msgHeaderSaved      = "Foto Header Berhasil Diperbarui!"
	msgHeaderInvalid    = "Format gambar base64 tidak valid."
	msgHeaderFailed     = "Gagal menyimpan foto header. Mungkin penyimpanan penuh."
	msgResetDone        = "Data lokal berhasil di-reset!"
	msgNoImage          = "Tidak ada data gambar yang diberikan."
	msgInvalidBase64    = "Format gambar base64 tidak valid."
	msgUnsupportedImage = "Tipe gambar tidak didukung."
	msgUploadFailed     = "Terjadi kesalahan server saat mengunggah file."
)

// MenuDeps are the services behind the guest menu and its admin panel.
type MenuDeps struct {
	Catalog   *catalog.Service
	AdminMode *catalog.AdminMode
	Carts     *cart.Registry
	Orders    *orders.Service
	Uploads   *upload.Service
	// UploadDir is served at /uploads/ when images are stored locally.
	UploadDir string
	Metrics   *metrics.Metrics
}

type MenuServer struct {
	MenuDeps
	router *mux.Router
}

func NewMenuServer(deps MenuDeps) *MenuServer {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New("menu")
	}
	s := &MenuServer{MenuDeps: deps, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *MenuServer) Handler() http.Handler {
	return wrap(s.router)
}

func (s *MenuServer) routes() {
	r := s.router
	r.Use(s.Metrics.Middleware)

	r.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.Metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/menu", s.handleMenu).Methods(http.MethodGet)
	r.HandleFunc("/api/menu/{id}", s.handleMenuItem).Methods(http.MethodGet)
	r.HandleFunc("/api/categories", s.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/api/categories/shortcuts", s.handleShortcuts).Methods(http.MethodGet)
	r.HandleFunc("/api/session", s.handleSession).Methods(http.MethodGet)
	r.HandleFunc("/api/header-image", s.handleHeaderImage).Methods(http.MethodGet)
	r.HandleFunc("/assets/{key}", s.handleAsset).Methods(http.MethodGet)

	r.HandleFunc("/api/carts/{cartID}", s.handleGetCart).Methods(http.MethodGet)
	r.HandleFunc("/api/carts/{cartID}", s.handleClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/api/carts/{cartID}/items", s.handleAddCartItem).Methods(http.MethodPost)
	r.HandleFunc("/api/carts/{cartID}/items/{itemID}", s.handleUpdateCartItem).Methods(http.MethodPatch)
	r.HandleFunc("/api/carts/{cartID}/items/{itemID}", s.handleRemoveCartItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/carts/{cartID}/checkout", s.handleCheckout).Methods(http.MethodPost)

	r.HandleFunc("/api/orders", s.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/complete", s.handleCompleteOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/tables", s.handleTables).Methods(http.MethodGet)

	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	if s.UploadDir != "" {
		r.PathPrefix(upload.PublicPrefix).Handler(
			http.StripPrefix(upload.PublicPrefix, http.FileServer(http.Dir(s.UploadDir))))
	}

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.requireAdminMode)
	admin.HandleFunc("/mode", s.handleAdminMode).Methods(http.MethodPost)
	admin.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)
	admin.HandleFunc("/menu/draft", s.handleDraftItem).Methods(http.MethodPost)
	admin.HandleFunc("/menu", s.handleCommitMenu).Methods(http.MethodPut)
	admin.HandleFunc("/menu/preview/{id}", s.handlePreviewItem).Methods(http.MethodPatch)
	admin.HandleFunc("/header-image", s.handleSetHeaderImage).Methods(http.MethodPut)
	admin.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
}

func (s *MenuServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Pawon Salam menu API is running!"))
}

type menuResponse struct {
	Items    []models.MenuItem `json:"items"`
	Degraded bool              `json:"degraded,omitempty"`
}

func (s *MenuServer) handleMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.Catalog.Load(r.Context())
	resp := menuResponse{Items: catalog.Filter(items, r.URL.Query().Get("category"))}
	if err != nil {
		logger.GetLogger().Warnw("serving default menu", "error", err)
		resp.Degraded = true
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *MenuServer) handleMenuItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.Catalog.Item(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, catalog.ErrItemNotFound):
		respondError(w, http.StatusNotFound, msgMenuNotFound)
	case err != nil:
		respondServerError(w, r, err, msgServerError)
	default:
		respondJSON(w, http.StatusOK, item)
	}
}

func (s *MenuServer) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Catalog.Categories(r.Context())
	if err != nil {
		logger.GetLogger().Warnw("serving default categories", "error", err)
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *MenuServer) handleShortcuts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.ShortcutCategories)
}

type sessionResponse struct {
	AdminMode   bool   `json:"adminMode"`
	TableNumber string `json:"tableNumber"`
}

// handleSession reads the launch parameters of a guest device. ?mode=admin
// switches the device into admin mode until it is turned off again.
func (s *MenuServer) handleSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("mode") == "admin" {
		if err := s.AdminMode.Enable(r.Context()); err != nil {
			respondServerError(w, r, err, msgServerError)
			return
		}
	}
	enabled, err := s.AdminMode.Enabled(r.Context())
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{AdminMode: enabled, TableNumber: q.Get("meja")})
}

type urlResponse struct {
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
}

func (s *MenuServer) handleHeaderImage(w http.ResponseWriter, r *http.Request) {
	url, err := s.Catalog.HeaderImage(r.Context())
	if err != nil {
		logger.GetLogger().Warnw("serving default header image", "error", err)
	}
	respondJSON(w, http.StatusOK, urlResponse{URL: url})
}

func (s *MenuServer) handleAsset(w http.ResponseWriter, r *http.Request) {
	blob, ok, err := s.Catalog.Asset(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(blob.Data)
}

// cart acquires the cart named in the route. Callers defer the returned
// release func.
func (s *MenuServer) cart(w http.ResponseWriter, r *http.Request) (*cart.Store, func(), bool) {
	c, release, err := s.Carts.Acquire(r.Context(), mux.Vars(r)["cartID"])
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return nil, nil, false
	}
	return c, release, true
}

// respondCart writes the cart state or the persistence failure for it.
func respondCart(w http.ResponseWriter, r *http.Request, c models.Cart, err error) {
	if err != nil {
		if errors.Is(err, cart.ErrPersist) {
			respondServerError(w, r, err, msgCartFailed)
			return
		}
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *MenuServer) handleGetCart(w http.ResponseWriter, r *http.Request) {
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	respondJSON(w, http.StatusOK, c.Snapshot())
}

type addCartItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (s *MenuServer) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, msgMinQuantity)
		return
	}
	item, err := s.Catalog.Item(r.Context(), req.ItemID)
	if errors.Is(err, catalog.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, msgMenuNotFound)
		return
	}
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	snapshot, err := c.AddItem(r.Context(), item, req.Quantity, strings.TrimSpace(req.Notes))
	respondCart(w, r, snapshot, err)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *MenuServer) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	snapshot, err := c.UpdateQuantity(r.Context(), mux.Vars(r)["itemID"], req.Quantity)
	respondCart(w, r, snapshot, err)
}

func (s *MenuServer) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	snapshot, err := c.RemoveItem(r.Context(), mux.Vars(r)["itemID"])
	respondCart(w, r, snapshot, err)
}

func (s *MenuServer) handleClearCart(w http.ResponseWriter, r *http.Request) {
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	snapshot, err := c.Clear(r.Context())
	respondCart(w, r, snapshot, err)
}

type checkoutRequest struct {
	TableNumber string `json:"tableNumber"`
}

type checkoutResponse struct {
	Order   models.Order `json:"order"`
	Message string       `json:"message"`
}

func (s *MenuServer) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
	}
	c, release, ok := s.cart(w, r)
	if !ok {
		return
	}
	defer release()
	var (
		order   models.Order
		message string
	)
	_, err := c.Checkout(r.Context(), func(snapshot models.Cart) error {
		var err error
		order, message, err = s.Orders.Place(r.Context(), strings.TrimSpace(req.TableNumber), snapshot)
		return err
	})
	if errors.Is(err, orders.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, msgCartEmpty)
		return
	}
	if err != nil && !errors.Is(err, cart.ErrPersist) {
		respondServerError(w, r, err, msgServerError)
		return
	}
	s.Metrics.Event(models.EventOrderPlaced)

	// The order is on the board; a cart that fails to clear is only logged.
	if err != nil {
		logger.GetLogger().Warnw("failed to clear cart after checkout", "order", order.ID, "error", err)
	}
	respondJSON(w, http.StatusCreated, checkoutResponse{Order: order, Message: message})
}

func (s *MenuServer) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.Orders.List(r.Context(), orders.Filter{Table: q.Get("table"), Status: q.Get("status")})
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *MenuServer) handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.Orders.Complete(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, msgOrderNotFound)
	case err != nil:
		respondServerError(w, r, err, msgServerError)
	default:
		s.Metrics.Event(models.EventOrderCompleted)
		respondJSON(w, http.StatusOK, order)
	}
}

func (s *MenuServer) handleTables(w http.ResponseWriter, r *http.Request) {
	board, err := s.Orders.Board(r.Context())
	if err != nil {
		respondServerError(w, r, err, msgServerError)
		return
	}
	respondJSON(w, http.StatusOK, board)
}

type imageRequest struct {
	Image string `json:"image"`
}

func (s *MenuServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgNoImage)
		return
	}
	url, err := s.Uploads.Upload(r.Context(), req.Image)
	switch {
	case errors.Is(err, upload.ErrNoImage):
		respondError(w, http.StatusBadRequest, msgNoImage)
	case errors.Is(err, dataurl.ErrMalformed):
		respondError(w, http.StatusBadRequest, msgInvalidBase64)
	case errors.Is(err, upload.ErrUnsupported):
		respondError(w, http.StatusBadRequest, msgUnsupportedImage)
	case err != nil:
		respondServerError(w, r, err, msgUploadFailed)
	default:
		respondJSON(w, http.StatusCreated, urlResponse{URL: url})
	}
}
