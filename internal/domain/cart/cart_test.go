package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/product"
)

func newProduct(id int64, qty int, price string) *product.Product {
	return &product.Product{
		ID:          id,
		Name:        "Product",
		Description: "Description",
		Qty:         qty,
		Price:       decimal.RequireFromString(price),
		PriceOff:    decimal.Zero,
	}
}

func TestParseAction(t *testing.T) {
	for _, s := range []string{"add", "increment", "decrement", "remove"} {
		a, err := ParseAction(s)
		require.NoError(t, err)
		assert.Equal(t, Action(s), a)
	}
	for _, s := range []string{"", "Add", "explode"} {
		_, err := ParseAction(s)
		assert.ErrorIs(t, err, ErrUnknownAction, s)
	}
}

func TestAdd_ClampsToStock(t *testing.T) {
	c := New(1)
	p := newProduct(10, 5, "10.00")

	for range 7 {
		assert.True(t, c.Add(p))
	}
	l, ok := c.Line(10)
	require.True(t, ok)
	assert.Equal(t, 5, l.Qty)
	assert.True(t, decimal.RequireFromString("50.00").Equal(c.ItemsPrice()))
}

func TestAdd_OutOfStock(t *testing.T) {
	c := New(1)
	assert.False(t, c.Add(newProduct(10, 0, "10.00")))
	assert.True(t, c.Empty())
}

func TestAdd_RefreshesSnapshot(t *testing.T) {
	c := New(1)
	p := newProduct(10, 5, "10.00")
	c.Add(p)

	p.Name = "Renamed"
	p.Price = decimal.RequireFromString("12.00")
	c.Add(p)

	l, _ := c.Line(10)
	assert.Equal(t, "Renamed", l.Name)
	assert.Equal(t, 2, l.Qty)
	assert.True(t, decimal.RequireFromString("24.00").Equal(l.Total()))
}

func TestAdd_KeepsInsertionOrder(t *testing.T) {
	c := New(1)
	c.Add(newProduct(3, 5, "1"))
	c.Add(newProduct(1, 5, "1"))
	c.Add(newProduct(2, 5, "1"))
	c.Add(newProduct(1, 5, "1"))

	var ids []int64
	for _, l := range c.Lines() {
		ids = append(ids, l.ProductID)
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestDecrement_FloorsAtZero(t *testing.T) {
	c := New(1)
	p := newProduct(10, 5, "10.00")
	c.Add(p)

	assert.True(t, c.Decrement(p))
	assert.True(t, c.Decrement(p))

	l, ok := c.Line(10)
	require.True(t, ok, "line stays at zero")
	assert.Equal(t, 0, l.Qty)
	assert.True(t, decimal.Zero.Equal(c.ItemsPrice()))
	assert.False(t, c.Empty())
}

func TestDecrement_Absent(t *testing.T) {
	c := New(1)
	assert.False(t, c.Decrement(newProduct(10, 5, "10.00")))
	assert.True(t, c.Empty())
}

func TestRemove(t *testing.T) {
	c := New(1)
	c.Add(newProduct(1, 5, "2"))
	c.Add(newProduct(2, 5, "3"))
	c.Add(newProduct(2, 5, "3"))

	assert.True(t, c.Remove(2))
	assert.False(t, c.Remove(2))
	require.Len(t, c.Items, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(c.ItemsPrice()))
}

func TestItemsPrice(t *testing.T) {
	c := New(1)
	c.Add(newProduct(1, 5, "10.50"))
	c.Add(newProduct(1, 5, "10.50"))
	c.Add(newProduct(2, 5, "0.25"))
	assert.True(t, decimal.RequireFromString("21.25").Equal(c.ItemsPrice()))
}

func TestApply(t *testing.T) {
	t.Run("RemoveStale", func(t *testing.T) {
		c := New(1)
		c.Add(newProduct(10, 5, "1"))
		changed, err := Apply(c, 10, nil, ActionRemove)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.True(t, c.Empty())
	})
	t.Run("MissingProduct", func(t *testing.T) {
		for _, a := range []Action{ActionAdd, ActionIncrement, ActionDecrement} {
			_, err := Apply(New(1), 10, nil, a)
			assert.ErrorIs(t, err, product.ErrNotFound, a)
		}
	})
	t.Run("MismatchedProduct", func(t *testing.T) {
		_, err := Apply(New(1), 10, newProduct(11, 5, "1"), ActionAdd)
		assert.ErrorIs(t, err, product.ErrNotFound)
	})
	t.Run("UnknownAction", func(t *testing.T) {
		_, err := Apply(New(1), 10, newProduct(10, 5, "1"), "explode")
		assert.ErrorIs(t, err, ErrUnknownAction)
	})
	t.Run("IncrementAddsLine", func(t *testing.T) {
		c := New(1)
		changed, err := Apply(c, 10, newProduct(10, 5, "1"), ActionIncrement)
		require.NoError(t, err)
		assert.True(t, changed)
		l, _ := c.Line(10)
		assert.Equal(t, 1, l.Qty)
	})
	t.Run("Decrement", func(t *testing.T) {
		c := New(1)
		p := newProduct(10, 5, "1")
		c.Add(p)
		c.Add(p)
		_, err := Apply(c, 10, p, ActionDecrement)
		require.NoError(t, err)
		l, _ := c.Line(10)
		assert.Equal(t, 1, l.Qty)
	})
}

func TestShippingInfo_Complete(t *testing.T) {
	var nilInfo *ShippingInfo
	assert.False(t, nilInfo.Complete())
	assert.False(t, (&ShippingInfo{Name: "Ada"}).Complete())
	assert.True(t, (&ShippingInfo{Name: "Ada", Address: "1 Main St"}).Complete())
}
