package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/storage/files"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// requestError is malformed client input.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func statusOf(err error) int {
	var reqErr *requestError
	switch {
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrPasswordMismatch):
		return http.StatusConflict
	case errors.Is(err, cart.ErrEmpty),
		errors.Is(err, order.ErrShippingNotSelected),
		errors.Is(err, order.ErrShippingInfoMissing):
		return http.StatusPreconditionFailed
	case errors.As(err, &reqErr),
		errors.Is(err, product.ErrInvalid),
		errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, cart.ErrUnknownAction),
		errors.Is(err, order.ErrInvalidShipping),
		errors.Is(err, order.ErrInvalidAddress),
		errors.Is(err, files.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail answers err. Server errors are logged and their details withheld.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrAlreadyAuthenticated) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	code := statusOf(err)
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		httpmiddleware.WriteError(w, code, "internal error")
		return
	}
	httpmiddleware.WriteError(w, code, err.Error())
}
