package handler

import (
	"strings"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/user"
)

// imageURL resolves a stored image reference against ImageBaseURL.
func (h *Handler) imageURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case h.imageBaseURL == "":
		return "/" + strings.TrimPrefix(ref, "/")
	default:
		return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimPrefix(ref, "/")
	}
}

func (h *Handler) encodeProduct(e *jx.Encoder, p *product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("qty", func(e *jx.Encoder) { e.Int(p.Qty) })
		e.Field("price", func(e *jx.Encoder) { money(e, p.Price) })
		e.Field("price_off", func(e *jx.Encoder) { money(e, p.PriceOff) })
		e.Field("img", func(e *jx.Encoder) { e.Str(h.imageURL(p.Img)) })
	})
}

func (h *Handler) encodeProducts(e *jx.Encoder, products []product.Product) {
	e.Arr(func(e *jx.Encoder) {
		for i := range products {
			h.encodeProduct(e, &products[i])
		}
	})
}

func encodeUser(e *jx.Encoder, u *user.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(u.Name) })
		e.Field("last_name", func(e *jx.Encoder) { e.Str(u.LastName) })
		e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
		e.Field("is_admin", func(e *jx.Encoder) { e.Bool(u.IsAdmin) })
		e.Field("created_at", func(e *jx.Encoder) { timestamp(e, u.CreatedAt) })
	})
}

// encodeLine writes a cart line or an order item; both carry the same
// snapshot fields.
func (h *Handler) encodeLine(e *jx.Encoder, it order.Item) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product_id", func(e *jx.Encoder) { e.Int64(it.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(it.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(it.Description) })
		e.Field("price", func(e *jx.Encoder) { money(e, it.Price) })
		e.Field("img", func(e *jx.Encoder) { e.Str(h.imageURL(it.Img)) })
		e.Field("qty", func(e *jx.Encoder) { e.Int(it.Qty) })
		e.Field("total", func(e *jx.Encoder) { money(e, it.Total) })
	})
}

func (h *Handler) encodeItems(e *jx.Encoder, items []order.Item) {
	e.Arr(func(e *jx.Encoder) {
		for _, it := range items {
			h.encodeLine(e, it)
		}
	})
}

func (h *Handler) encodeCart(e *jx.Encoder, c *cart.Cart) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, order.Snapshot(c.Items)) })
		e.Field("items_price", func(e *jx.Encoder) { money(e, c.ItemsPrice()) })
		e.Field("shipping", func(e *jx.Encoder) {
			if c.Shipping == nil {
				e.Null()
				return
			}
			e.Obj(func(e *jx.Encoder) {
				e.Field("price", func(e *jx.Encoder) { money(e, c.Shipping.Price) })
				e.Field("info", func(e *jx.Encoder) {
					info := c.Shipping.Info
					if info == nil {
						e.Null()
						return
					}
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(info.Name) })
						e.Field("address", func(e *jx.Encoder) { e.Str(info.Address) })
					})
				})
			})
		})
	})
}

func (h *Handler) encodePreview(e *jx.Encoder, p *order.Preview) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("address", func(e *jx.Encoder) { e.Str(p.Address) })
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, p.Items) })
		e.Field("items_price", func(e *jx.Encoder) { money(e, p.ItemsPrice) })
		e.Field("shipping_price", func(e *jx.Encoder) { money(e, p.ShippingPrice) })
		e.Field("total", func(e *jx.Encoder) { money(e, p.Total) })
	})
}

func (h *Handler) encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(o.ID) })
		e.Field("user_id", func(e *jx.Encoder) { e.Int64(o.UserID) })
		e.Field("ordered_at", func(e *jx.Encoder) { timestamp(e, o.OrderedAt) })
		e.Field("name", func(e *jx.Encoder) { e.Str(o.Name) })
		e.Field("address", func(e *jx.Encoder) { e.Str(o.Address) })
		e.Field("items", func(e *jx.Encoder) { h.encodeItems(e, o.Items) })
		e.Field("items_price", func(e *jx.Encoder) { money(e, o.ItemsPrice) })
		e.Field("shipping_price", func(e *jx.Encoder) { money(e, o.ShippingPrice) })
		e.Field("total", func(e *jx.Encoder) { money(e, o.Total) })
	})
}

func (h *Handler) encodeOrders(e *jx.Encoder, orders []order.Order) {
	e.Arr(func(e *jx.Encoder) {
		for i := range orders {
			h.encodeOrder(e, &orders[i])
		}
	})
}
