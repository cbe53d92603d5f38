package cart

import (
	"fmt"
	"math"
	"strings"
)

// Reduce applies cmd to s and returns the resulting state with totals
// recomputed. On error the returned state is s, untouched.
func Reduce(s State, cmd Command) (State, error) {
	switch c := cmd.(type) {
	case AddItem:
		return addItem(s, c)
	case RemoveItem:
		return removeItem(s, c.ProductID), nil
	case UpdateQuantity:
		return updateQuantity(s, c)
	case Clear:
		return Empty(), nil
	case SetCoupon:
		return setCoupon(s, c.Coupon)
	case RemoveCoupon:
		next := s.clone()
		next.Coupon = nil
		return Recalculate(next), nil
	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

func addItem(s State, c AddItem) (State, error) {
	if c.Quantity < 1 {
		return s, ErrInvalidQuantity
	}
	p := c.Product
	if err := validateProduct(p); err != nil {
		return s, err
	}

	idx := s.Find(p.ID)
	requested := c.Quantity
	if idx >= 0 {
		requested += s.Lines[idx].Quantity
	}
	if requested > p.AvailableStock {
		return s, fmt.Errorf("%w: product %s requested %d, available %d",
			ErrInsufficientStock, p.ID, requested, p.AvailableStock)
	}

	next := s.clone()
	if idx >= 0 {
		// Price and presentation stay as captured on the first add.
		next.Lines[idx].Quantity = requested
		next.Lines[idx].Stock = p.AvailableStock
	} else {
		next.Lines = append(next.Lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  c.Quantity,
			Stock:     p.AvailableStock,
			Weight:    math.Max(p.Weight, 0),
			ImageURL:  p.ImageURL,
			Variant:   p.Variant,
			Category:  p.Category,
		})
	}
	return Recalculate(next), nil
}

func validateProduct(p Product) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product %s has no name", ErrInvalidProduct, p.ID)
	case p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0):
		return fmt.Errorf("%w: product %s has invalid price", ErrInvalidProduct, p.ID)
	}
	return nil
}

func removeItem(s State, productID string) State {
	idx := s.Find(productID)
	if idx < 0 {
		return s
	}
	next := s.clone()
	lines := make([]Line, 0, len(next.Lines)-1)
	lines = append(lines, next.Lines[:idx]...)
	lines = append(lines, next.Lines[idx+1:]...)
	next.Lines = lines
	return Recalculate(next)
}

func updateQuantity(s State, c UpdateQuantity) (State, error) {
	if c.Quantity <= 0 {
		return removeItem(s, c.ProductID), nil
	}
	idx := s.Find(c.ProductID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrLineNotFound, c.ProductID)
	}
	if c.Quantity > s.Lines[idx].Stock {
		return s, fmt.Errorf("%w: product %s requested %d, available %d",
			ErrInsufficientStock, c.ProductID, c.Quantity, s.Lines[idx].Stock)
	}
	next := s.clone()
	next.Lines[idx].Quantity = c.Quantity
	return Recalculate(next), nil
}

func setCoupon(s State, c Coupon) (State, error) {
	if strings.TrimSpace(c.Code) == "" {
		return s, fmt.Errorf("%w: empty code", ErrInvalidCoupon)
	}
	if c.DiscountPercentage < 0 || c.DiscountPercentage > 100 || math.IsNaN(c.DiscountPercentage) {
		return s, fmt.Errorf("%w: discount percentage %v out of range", ErrInvalidCoupon, c.DiscountPercentage)
	}
	next := s.clone()
	next.Coupon = &c
	return Recalculate(next), nil
}
