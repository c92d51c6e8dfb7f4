package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/user"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, u *user.User) error {
	c, err := h.carts.Get(r.Context(), u.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeCart(e, c) })
	return nil
}

func (h *Handler) mutateCart(w http.ResponseWriter, r *http.Request, u *user.User) error {
	productID, err := pathID(r, "productID")
	if err != nil {
		return err
	}
	action, err := cart.ParseAction(r.PathValue("action"))
	if err != nil {
		return err
	}

	c, err := h.carts.Mutate(r.Context(), u.ID, productID, action)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeCart(e, c) })
	return nil
}
