package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.products.List(r.Context())
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProducts(e, products) })
	return nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProduct(e, p) })
	return nil
}

func (h *Handler) serveImage(w http.ResponseWriter, r *http.Request) error {
	name := r.PathValue("name")
	f, err := h.images.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return nil
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "stat image")
	}
	http.ServeContent(w, r, name, st.ModTime(), f)
	return nil
}
