package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id string, price float64, stock int) Product {
	return Product{
		ID:             id,
		Name:           "Product " + id,
		Price:          price,
		AvailableStock: stock,
		Weight:         0.25,
		Variant:        "Frasco 250g",
		Category:       "Infusiones",
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}

func assertConsistent(t *testing.T, s State) {
	t.Helper()
	var subtotal float64
	count := 0
	for _, l := range s.Lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
		count += l.Quantity
		assert.GreaterOrEqual(t, l.Quantity, 1)
	}
	assert.InDelta(t, subtotal, s.Subtotal, 0.005)
	assert.Equal(t, count, s.ItemCount)
	assert.GreaterOrEqual(t, s.Discount, 0.0)
	assert.LessOrEqual(t, s.Discount, s.Subtotal)
	assert.InDelta(t, max(0, s.Subtotal-s.Discount), s.Total, 0.005)
}

func TestReduce_AddItem_NewLine(t *testing.T) {
	p := testProduct("p1", 12.5, 10)

	s, err := Reduce(Empty(), AddItem{Product: p, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, "p1", s.Lines[0].ProductID)
	assert.Equal(t, 12.5, s.Lines[0].UnitPrice)
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, 10, s.Lines[0].Stock)
	assert.Equal(t, "Frasco 250g", s.Lines[0].Variant)
	assert.Equal(t, 25.0, s.Subtotal)
	assert.Equal(t, 2, s.ItemCount)
	assert.Equal(t, 25.0, s.Total)
}

func TestReduce_AddItem_MergesExistingLine(t *testing.T) {
	p := testProduct("p1", 10, 10)

	s, err := Reduce(Empty(), AddItem{Product: p, Quantity: 2})
	require.NoError(t, err)
	s, err = Reduce(s, AddItem{Product: p, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 5, s.Lines[0].Quantity)
	assert.Equal(t, 5, s.ItemCount)
}

func TestReduce_AddItem_KeepsCapturedPrice(t *testing.T) {
	p := testProduct("p1", 10, 10)
	s, err := Reduce(Empty(), AddItem{Product: p, Quantity: 1})
	require.NoError(t, err)

	repriced := p
	repriced.Price = 99
	repriced.Name = "Renamed"
	repriced.AvailableStock = 20
	s, err = Reduce(s, AddItem{Product: repriced, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 10.0, s.Lines[0].UnitPrice)
	assert.Equal(t, "Product p1", s.Lines[0].Name)
	assert.Equal(t, 20, s.Lines[0].Stock)
	assert.Equal(t, 20.0, s.Subtotal)
}

func TestReduce_AddItem_PreservesInsertionOrder(t *testing.T) {
	s := Empty()
	for _, id := range []string{"a", "b", "c"} {
		var err error
		s, err = Reduce(s, AddItem{Product: testProduct(id, 1, 5), Quantity: 1})
		require.NoError(t, err)
	}
	s, err := Reduce(s, AddItem{Product: testProduct("a", 1, 5), Quantity: 1})
	require.NoError(t, err)

	ids := []string{s.Lines[0].ProductID, s.Lines[1].ProductID, s.Lines[2].ProductID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestReduce_AddItem_InsufficientStock(t *testing.T) {
	p := testProduct("p1", 10, 5)

	s, err := Reduce(Empty(), AddItem{Product: p, Quantity: 6})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.True(t, s.IsEmpty())

	s, err = Reduce(Empty(), AddItem{Product: p, Quantity: 4})
	require.NoError(t, err)
	after, err := Reduce(s, AddItem{Product: p, Quantity: 2})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, s, after)
}

func TestReduce_AddItem_InvalidInput(t *testing.T) {
	_, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 10, 5), Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = Reduce(Empty(), AddItem{Product: testProduct("", 10, 5), Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = Reduce(Empty(), AddItem{Product: testProduct("p1", -1, 5), Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestReduce_RemoveItem(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 10, 5), Quantity: 1})
	require.NoError(t, err)

	unchanged, err := Reduce(s, RemoveItem{ProductID: "missing"})
	require.NoError(t, err)
	assert.Equal(t, s, unchanged)

	s, err = Reduce(s, RemoveItem{ProductID: "p1"})
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0.0, s.Total)
}

func TestReduce_UpdateQuantity(t *testing.T) {
	p := testProduct("p1", 10, 5)
	s, err := Reduce(Empty(), AddItem{Product: p, Quantity: 5})
	require.NoError(t, err)

	after, err := Reduce(s, UpdateQuantity{ProductID: "p1", Quantity: 6})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, after.Lines[0].Quantity)

	s, err = Reduce(s, UpdateQuantity{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, 20.0, s.Subtotal)

	_, err = Reduce(s, UpdateQuantity{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestReduce_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 10, 5), Quantity: 3})
	require.NoError(t, err)

	s, err = Reduce(s, UpdateQuantity{ProductID: "p1", Quantity: 0})
	require.NoError(t, err)
	assert.Len(t, s.Lines, 0)
	assert.Equal(t, 0, s.ItemCount)
}

func TestReduce_CouponLifecycle(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 1000, 5), Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, 2000.0, s.Subtotal)

	s, err = Reduce(s, SetCoupon{Coupon: Coupon{Code: "SAVE10", DiscountPercentage: 10, MaxDiscount: float64Ptr(100)}})
	require.NoError(t, err)
	assert.Equal(t, 100.0, s.Discount)
	assert.Equal(t, 1900.0, s.Total)

	s, err = Reduce(s, RemoveCoupon{})
	require.NoError(t, err)
	assert.Nil(t, s.Coupon)
	assert.Equal(t, 0.0, s.Discount)
	assert.Equal(t, s.Subtotal, s.Total)
}

func TestReduce_CouponDiscountFollowsSubtotal(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 100, 10), Quantity: 1})
	require.NoError(t, err)
	s, err = Reduce(s, SetCoupon{Coupon: Coupon{Code: "TEN", DiscountPercentage: 10}})
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Discount)

	s, err = Reduce(s, UpdateQuantity{ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 30.0, s.Discount)
	assert.Equal(t, 270.0, s.Total)
}

func TestReduce_SetCoupon_Invalid(t *testing.T) {
	_, err := Reduce(Empty(), SetCoupon{Coupon: Coupon{Code: " "}})
	assert.ErrorIs(t, err, ErrInvalidCoupon)

	_, err = Reduce(Empty(), SetCoupon{Coupon: Coupon{Code: "X", DiscountPercentage: 150}})
	assert.ErrorIs(t, err, ErrInvalidCoupon)
}

func TestReduce_Clear(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 10, 5), Quantity: 3})
	require.NoError(t, err)
	s, err = Reduce(s, SetCoupon{Coupon: Coupon{Code: "TEN", DiscountPercentage: 10}})
	require.NoError(t, err)

	s, err = Reduce(s, Clear{})
	require.NoError(t, err)
	assert.Equal(t, Empty(), s)
}

func TestReduce_TotalsStayConsistent(t *testing.T) {
	tea := testProduct("tea", 4.35, 50)
	honey := testProduct("honey", 12.99, 8)
	oil := testProduct("oil", 0.1, 100)

	cmds := []Command{
		AddItem{Product: tea, Quantity: 3},
		AddItem{Product: honey, Quantity: 2},
		AddItem{Product: oil, Quantity: 7},
		SetCoupon{Coupon: Coupon{Code: "Q", DiscountPercentage: 15, MaxDiscount: float64Ptr(5)}},
		UpdateQuantity{ProductID: "honey", Quantity: 9},
		AddItem{Product: tea, Quantity: 4},
		RemoveItem{ProductID: "oil"},
		UpdateQuantity{ProductID: "tea", Quantity: 1},
		RemoveCoupon{},
		AddItem{Product: oil, Quantity: 3},
		UpdateQuantity{ProductID: "honey", Quantity: 0},
	}

	s := Empty()
	for _, cmd := range cmds {
		next, err := Reduce(s, cmd)
		if err != nil {
			assert.Equal(t, s, next, "failed %s must not change state", cmd.Name())
		}
		s = next
		assertConsistent(t, s)
	}
	assert.Len(t, s.Lines, 2)
}

func TestReduce_DoesNotAliasInput(t *testing.T) {
	s, err := Reduce(Empty(), AddItem{Product: testProduct("p1", 10, 5), Quantity: 1})
	require.NoError(t, err)

	next, err := Reduce(s, UpdateQuantity{ProductID: "p1", Quantity: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, s.Lines[0].Quantity)
	assert.Equal(t, 4, next.Lines[0].Quantity)
}
