package cart

// Command is a cart mutation. The set of variants is closed: Reduce
// handles each one explicitly.
type Command interface {
	Name() string
	isCommand()
}

// AddItem adds Quantity units of Product, merging into an existing line.
type AddItem struct {
	Product  Product
	Quantity int
}

// RemoveItem drops the line for ProductID. Absent lines are ignored.
type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

// Clear empties the cart and drops any coupon.
type Clear struct{}

// SetCoupon attaches an already validated coupon.
type SetCoupon struct {
	Coupon Coupon
}

// RemoveCoupon detaches the current coupon, if any.
type RemoveCoupon struct{}

func (AddItem) Name() string        { return "add_item" }
func (RemoveItem) Name() string     { return "remove_item" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (Clear) Name() string          { return "clear" }
func (SetCoupon) Name() string      { return "apply_coupon" }
func (RemoveCoupon) Name() string   { return "remove_coupon" }

func (AddItem) isCommand()        {}
func (RemoveItem) isCommand()     {}
func (UpdateQuantity) isCommand() {}
func (Clear) isCommand()          {}
func (SetCoupon) isCommand()      {}
func (RemoveCoupon) isCommand()   {}
