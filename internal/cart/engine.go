package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verdantia/storefront-backend/pkg/logger"
)

// Options wires an Engine to its collaborators. Only Store and Key are
// required.
type Options struct {
	SessionID string
	Store     BlobStore
	Key       string
	Coupons   CouponValidator
	Notifier  Notifier
	Observer  Observer
}

// Engine owns one cart. Every command runs under the engine lock from
// validation to persistence, so commands on the same cart never interleave.
type Engine struct {
	mu        sync.Mutex
	sessionID string
	state     State
	persist   *Persistence
	coupons   CouponValidator
	notifier  Notifier
	observer  Observer
}

// NewEngine loads the persisted cart through Repair. A blob that was found
// is written back immediately so it is not repaired again on the next load.
func NewEngine(ctx context.Context, opts Options) *Engine {
	observer := opts.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}

	e := &Engine{
		sessionID: opts.SessionID,
		persist:   NewPersistence(opts.Store, opts.Key, observer),
		coupons:   opts.Coupons,
		notifier:  notifier,
		observer:  observer,
	}

	blob := e.persist.Load(ctx)
	e.state = Repair(blob)
	if blob != nil {
		e.persist.Save(ctx, e.state)
	}

	logger.Debug("Cart engine loaded", map[string]interface{}{
		"session_id": e.sessionID,
		"key":        e.persist.Key(),
		"lines":      len(e.state.Lines),
		"restored":   blob != nil,
	})
	return e
}

// State returns a copy of the current cart.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Dispatch applies cmd and persists the result on success.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, cmd)
}

func (e *Engine) AddItem(ctx context.Context, p Product, quantity int) (State, error) {
	return e.Dispatch(ctx, AddItem{Product: p, Quantity: quantity})
}

func (e *Engine) RemoveItem(ctx context.Context, productID string) (State, error) {
	return e.Dispatch(ctx, RemoveItem{ProductID: productID})
}

func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) (State, error) {
	return e.Dispatch(ctx, UpdateQuantity{ProductID: productID, Quantity: quantity})
}

func (e *Engine) Clear(ctx context.Context) (State, error) {
	return e.Dispatch(ctx, Clear{})
}

func (e *Engine) RemoveCoupon(ctx context.Context) (State, error) {
	return e.Dispatch(ctx, RemoveCoupon{})
}

// ApplyCoupon validates code with the coupon collaborator and attaches the
// resulting coupon. The engine lock is held across the validation call.
func (e *Engine) ApplyCoupon(ctx context.Context, code string) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	coupon, err := e.resolveCoupon(ctx, code)
	if err != nil {
		e.report(ctx, SetCoupon{Coupon: Coupon{Code: code}}, err)
		return e.state.clone(), err
	}
	return e.apply(ctx, SetCoupon{Coupon: coupon})
}

// EstimateShipping returns the advisory shipping cost for the current lines.
func (e *Engine) EstimateShipping(dest Destination, rates ShippingRates) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return EstimateShipping(e.state.Lines, dest, rates)
}

func (e *Engine) resolveCoupon(ctx context.Context, code string) (Coupon, error) {
	if e.coupons == nil {
		return Coupon{}, fmt.Errorf("%w: no coupon validator configured", ErrInvalidCoupon)
	}
	res, err := e.coupons.ValidateCoupon(ctx, code)
	if err != nil {
		logger.Warn("Coupon validation call failed", map[string]interface{}{
			"session_id": e.sessionID,
			"code":       code,
			"error":      err.Error(),
		})
		return Coupon{}, fmt.Errorf("%w: %v", ErrInvalidCoupon, err)
	}
	if res == nil || !res.Valid {
		msg := "rejected"
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		return Coupon{}, fmt.Errorf("%w: %s", ErrInvalidCoupon, msg)
	}

	c := Coupon{
		Code:               code,
		DiscountPercentage: res.DiscountPercentage,
		Description:        res.Description,
	}
	if res.MaxDiscount != nil {
		capped := *res.MaxDiscount
		c.MaxDiscount = &capped
	}
	if res.Code != "" {
		c.Code = res.Code
	}
	return c, nil
}

// apply must be called with e.mu held.
func (e *Engine) apply(ctx context.Context, cmd Command) (State, error) {
	next, err := Reduce(e.state, cmd)
	if err != nil {
		e.report(ctx, cmd, err)
		return e.state.clone(), err
	}

	e.state = next
	e.persist.Save(ctx, e.state)
	e.report(ctx, cmd, nil)
	return e.state.clone(), nil
}

func (e *Engine) report(ctx context.Context, cmd Command, err error) {
	e.observer.CommandApplied(cmd.Name(), err)

	n := Notification{
		SessionID: e.sessionID,
		Command:   cmd.Name(),
		Level:     LevelSuccess,
		Message:   describe(cmd),
	}
	if err != nil {
		n.Level = LevelError
		n.Message = explain(cmd, err)
		logger.Warn("Cart command rejected", map[string]interface{}{
			"session_id": e.sessionID,
			"command":    cmd.Name(),
			"error":      err.Error(),
		})
	}
	e.notifier.Notify(ctx, n)
}

func describe(cmd Command) string {
	switch c := cmd.(type) {
	case AddItem:
		return fmt.Sprintf("Se agregaron %d × %s al carrito", c.Quantity, c.Product.Name)
	case RemoveItem:
		return "Producto eliminado del carrito"
	case UpdateQuantity:
		if c.Quantity <= 0 {
			return "Producto eliminado del carrito"
		}
		return fmt.Sprintf("Cantidad actualizada a %d", c.Quantity)
	case Clear:
		return "Tu carrito está vacío"
	case SetCoupon:
		return fmt.Sprintf("Cupón %s aplicado", c.Coupon.Code)
	case RemoveCoupon:
		return "Cupón eliminado"
	}
	return "Carrito actualizado"
}

func explain(cmd Command, err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		if c, ok := cmd.(AddItem); ok {
			return fmt.Sprintf("No hay stock suficiente de %s", c.Product.Name)
		}
		return "No hay stock suficiente para la cantidad solicitada"
	case errors.Is(err, ErrInvalidCoupon):
		return "El cupón no es válido"
	case errors.Is(err, ErrInvalidQuantity):
		return "La cantidad debe ser al menos 1"
	case errors.Is(err, ErrLineNotFound):
		return "Ese producto no está en tu carrito"
	case errors.Is(err, ErrInvalidProduct):
		return "Ese producto no se puede agregar al carrito"
	}
	return "No se pudo actualizar tu carrito"
}
