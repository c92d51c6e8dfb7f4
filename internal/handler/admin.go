package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
	"github.com/xenking/storefront/internal/export"
)

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request, _ *user.User) error {
	return h.listProducts(w, r)
}

// adminCreateProduct inserts a product. Every body field is optional; a
// request without a body creates a product with the catalog defaults.
func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request, admin *user.User) error {
	var patch product.Patch
	if err := readObject(w, r, func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			patch.Name = &v
			return err
		case "description":
			v, err := d.Str()
			patch.Description = &v
			return err
		case "qty":
			v, err := d.Int()
			patch.Qty = &v
			return err
		case "price":
			v, err := readDecimal(d)
			patch.Price = &v
			return err
		case "price_off":
			v, err := readDecimal(d)
			patch.PriceOff = &v
			return err
		default:
			return d.Skip()
		}
	}); err != nil {
		return err
	}

	p, err := h.catalog.Create(r.Context(), patch)
	if err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("admin_id", admin.ID),
	)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { h.encodeProduct(e, p) })
	return nil
}

// adminEditProduct updates a product from a multipart or urlencoded form
// with the fields name, desc, price, price_off, qty and an optional img file.
// Absent fields keep their current value.
func (h *Handler) adminEditProduct(w http.ResponseWriter, r *http.Request, admin *user.User) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return badRequest("malformed form: %v", err)
		}
		if err := r.ParseForm(); err != nil {
			return badRequest("malformed form: %v", err)
		}
	}

	patch, err := parsePatch(r)
	if err != nil {
		return err
	}

	var img *product.Image
	if r.MultipartForm != nil {
		f, fh, err := r.FormFile("img")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return badRequest("malformed img: %v", err)
		default:
			defer func() { _ = f.Close() }()
			if fh.Filename != "" {
				img = &product.Image{Filename: fh.Filename, Body: f}
			}
		}
	}

	p, err := h.catalog.Update(r.Context(), id, patch, img)
	if err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Product updated",
		zap.Int64("product_id", p.ID),
		zap.Int64("admin_id", admin.ID),
		zap.Bool("image", img != nil),
	)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeProduct(e, p) })
	return nil
}

func formValue(r *http.Request, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r.Form[k]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0]), true
		}
	}
	return "", false
}

func parsePatch(r *http.Request) (product.Patch, error) {
	var patch product.Patch
	if v, ok := formValue(r, "name"); ok {
		patch.Name = &v
	}
	if v, ok := formValue(r, "desc", "description"); ok {
		patch.Description = &v
	}
	if v, ok := formValue(r, "qty"); ok {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return patch, badRequest("invalid qty %q", v)
		}
		patch.Qty = &qty
	}
	for _, f := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"price", &patch.Price},
		{"price_off", &patch.PriceOff},
	} {
		v, ok := formValue(r, f.key)
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return patch, badRequest("invalid %s %q", f.key, v)
		}
		*f.dst = &d
	}
	return patch, nil
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request, admin *user.User) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		return err
	}
	zctx.From(r.Context()).Info("Product deleted",
		zap.Int64("product_id", id),
		zap.Int64("admin_id", admin.ID),
	)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) adminExportProducts(w http.ResponseWriter, r *http.Request, _ *user.User) error {
	products, err := h.products.List(r.Context())
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	var buf bytes.Buffer
	if err := export.Catalog(&buf, products); err != nil {
		return errors.Wrap(err, "export catalog")
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}

func (h *Handler) adminListUsers(w http.ResponseWriter, r *http.Request, _ *user.User) error {
	users, err := h.users.List(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range users {
				encodeUser(e, &users[i])
			}
		})
	})
	return nil
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request, _ *user.User) error {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeOrders(e, orders) })
	return nil
}
