package cart

// Product is the catalog snapshot handed to AddItem. The engine never
// mutates it and never re-fetches it mid-command.
type Product struct {
	ID             string
	Name           string
	Price          float64
	AvailableStock int
	Weight         float64
	ImageURL       string
	Variant        string
	Category       string
}

// Line is one product entry in the cart.
type Line struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	// Stock is the ceiling recorded from the last product snapshot.
	Stock    int     `json:"stock"`
	Weight   float64 `json:"weight"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Variant  string  `json:"variant,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Coupon is a validated discount descriptor.
type Coupon struct {
	Code               string   `json:"code"`
	DiscountPercentage float64  `json:"discountPercentage"`
	MaxDiscount        *float64 `json:"maxDiscount,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// State is the cart aggregate. ItemCount, Subtotal, Discount and Total are
// derived from Lines and Coupon by Recalculate and are never set directly.
type State struct {
	Lines     []Line  `json:"lines"`
	Coupon    *Coupon `json:"coupon"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
	Discount  float64 `json:"discount"`
	Total     float64 `json:"total"`
}

// Empty returns a cart with no lines, no coupon and zero totals.
func Empty() State {
	return State{Lines: []Line{}}
}

// Find returns the index of the line for productID, or -1.
func (s State) Find(productID string) int {
	for i, l := range s.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Lines) == 0
}

// clone copies the line slice and coupon so reducer output never aliases
// its input.
func (s State) clone() State {
	out := s
	out.Lines = make([]Line, len(s.Lines))
	copy(out.Lines, s.Lines)
	if s.Coupon != nil {
		c := *s.Coupon
		if s.Coupon.MaxDiscount != nil {
			m := *s.Coupon.MaxDiscount
			c.MaxDiscount = &m
		}
		out.Coupon = &c
	}
	return out
}
