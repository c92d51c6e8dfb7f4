package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/user"
)

func (h *Handler) selectShipping(w http.ResponseWriter, r *http.Request, u *user.User) error {
	var (
		price decimal.Decimal
		set   bool
	)
	if err := readObject(w, r, func(d *jx.Decoder, key string) error {
		if key != "price" {
			return d.Skip()
		}
		v, err := readDecimal(d)
		price, set = v, true
		return err
	}); err != nil {
		return err
	}
	if !set {
		return badRequest("price is required")
	}

	c, err := h.orders.SelectShipping(r.Context(), u.ID, price)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeCart(e, c) })
	return nil
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request, u *user.User) error {
	var addr order.Address
	if err := readObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "first_name":
			addr.FirstName, err = d.Str()
		case "last_name":
			addr.LastName, err = d.Str()
		case "street", "address":
			addr.Street, err = d.Str()
		case "city":
			addr.City, err = d.Str()
		case "country":
			addr.Country, err = d.Str()
		case "zip":
			addr.Zip, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return err
	}

	p, err := h.orders.SetShippingInfo(r.Context(), u.ID, addr)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodePreview(e, p) })
	return nil
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, u *user.User) error {
	o, err := h.orders.PlaceOrder(r.Context(), u.ID)
	if err != nil {
		return err
	}
	w.Header().Set("Location", "/api/orders/"+strconv.FormatInt(o.ID, 10))
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { h.encodeOrder(e, o) })
	return nil
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, u *user.User) error {
	orders, err := h.orders.List(r.Context(), u.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrders(e, orders) })
	return nil
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, u *user.User) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	o, err := h.orders.Get(r.Context(), order.Viewer{UserID: u.ID, Admin: u.IsAdmin}, id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrder(e, o) })
	return nil
}
