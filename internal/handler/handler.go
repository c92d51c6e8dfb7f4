// Package handler exposes the storefront as a JSON HTTP API.
package handler

import (
	"net/http"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/session"
	"github.com/xenking/storefront/internal/storage/files"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to image references in responses. When
	// empty, references are served from this server's /images/ route.
	ImageBaseURL string
	// CookieName names the session cookie. Defaults to "session".
	CookieName string
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
	// MaxUploadBytes bounds the multipart body of a product edit.
	MaxUploadBytes int64
	// SignInLimit, when set, wraps the sign-in route.
	SignInLimit httpmiddleware.Middleware
}

// Deps are the services the Handler delegates to.
type Deps struct {
	Products product.Repository
	Catalog  *product.Service
	Users    *user.Service
	Carts    *cart.Service
	Orders   *order.Service
	Sessions *session.Manager
	Images   *files.Store
}

// Handler serves the storefront routes.
type Handler struct {
	products product.Repository
	catalog  *product.Service
	users    *user.Service
	carts    *cart.Service
	orders   *order.Service
	sessions *session.Manager
	images   *files.Store

	imageBaseURL   string
	cookieName     string
	secureCookie   bool
	maxUploadBytes int64
	signInLimit    httpmiddleware.Middleware
}

// New creates a Handler.
func New(cfg Config, deps Deps) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.SignInLimit == nil {
		cfg.SignInLimit = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{
		products:       deps.Products,
		catalog:        deps.Catalog,
		users:          deps.Users,
		carts:          deps.Carts,
		orders:         deps.Orders,
		sessions:       deps.Sessions,
		images:         deps.Images,
		imageBaseURL:   cfg.ImageBaseURL,
		cookieName:     cfg.CookieName,
		secureCookie:   cfg.SecureCookie,
		maxUploadBytes: cfg.MaxUploadBytes,
		signInLimit:    cfg.SignInLimit,
	}
}

// Register adds the storefront routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.public(h.listProducts))
	mux.HandleFunc("GET /api/products/{id}", h.public(h.getProduct))

	mux.HandleFunc("POST /api/auth/register", h.guest(h.register))
	mux.Handle("POST /api/auth/signin", h.signInLimit(h.guest(h.signIn)))
	mux.HandleFunc("POST /api/auth/logout", h.authenticated(h.logout))
	mux.HandleFunc("GET /api/me", h.authenticated(h.me))

	mux.HandleFunc("GET /api/cart", h.authenticated(h.getCart))
	mux.HandleFunc("POST /api/cart/{productID}/{action}", h.authenticated(h.mutateCart))

	mux.HandleFunc("POST /api/checkout/shipping", h.authenticated(h.selectShipping))
	mux.HandleFunc("POST /api/checkout/address", h.authenticated(h.setAddress))
	mux.HandleFunc("POST /api/checkout/place", h.authenticated(h.placeOrder))

	mux.HandleFunc("GET /api/orders", h.authenticated(h.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.authenticated(h.getOrder))

	mux.HandleFunc("GET /api/admin/products", h.admin(h.adminListProducts))
	mux.HandleFunc("POST /api/admin/products", h.admin(h.adminCreateProduct))
	mux.HandleFunc("GET /api/admin/products/export", h.admin(h.adminExportProducts))
	mux.HandleFunc("POST /api/admin/products/{id}", h.admin(h.adminEditProduct))
	mux.HandleFunc("DELETE /api/admin/products/{id}", h.admin(h.adminDeleteProduct))
	mux.HandleFunc("GET /api/admin/users", h.admin(h.adminListUsers))
	mux.HandleFunc("GET /api/admin/orders", h.admin(h.adminListOrders))

	mux.HandleFunc("GET /images/{name}", h.public(h.serveImage))
}
