package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/verdantia/storefront-backend/internal/app/model"
	"github.com/verdantia/storefront-backend/internal/app/repository"
	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidSession = errors.New("invalid cart session")
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (cart.State, error)
	AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (cart.State, error)
	UpdateCartItem(ctx context.Context, sessionID, productID string, quantity int) (cart.State, error)
	RemoveFromCart(ctx context.Context, sessionID, productID string) (cart.State, error)
	ClearCart(ctx context.Context, sessionID string) (cart.State, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (cart.State, error)
	RemoveCoupon(ctx context.Context, sessionID string) (cart.State, error)
	EstimateShipping(ctx context.Context, sessionID string, dest cart.Destination) (float64, error)
	// EvictIdle drops engines unused for olderThan. Their blobs stay in the
	// store and are reloaded on the next request. Carts holding a coupon
	// are kept, since a reload cannot carry the coupon over.
	EvictIdle(olderThan time.Duration) int
}

type CartServiceOptions struct {
	KeyPrefix string
	Rates     cart.ShippingRates
	Notifier  cart.Notifier
	Observer  cart.Observer
}

// cartEntry is registered before its engine loads. engine is written once,
// before ready is closed; lastUsed is guarded by cartService.mu.
type cartEntry struct {
	ready    chan struct{}
	engine   *cart.Engine
	lastUsed time.Time
}

func (e *cartEntry) loaded() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

type cartService struct {
	store       cart.BlobStore
	productRepo repository.ProductRepository
	coupons     cart.CouponValidator
	opts        CartServiceOptions
	now         func() time.Time

	mu      sync.Mutex
	engines map[string]*cartEntry
}

func NewCartService(
	store cart.BlobStore,
	productRepo repository.ProductRepository,
	coupons cart.CouponValidator,
	opts CartServiceOptions,
) CartService {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "cart"
	}
	return &cartService{
		store:       store,
		productRepo: productRepo,
		coupons:     coupons,
		opts:        opts,
		now:         time.Now,
		engines:     make(map[string]*cartEntry),
	}
}

// CartKey namespaces a session id for the blob store.
func CartKey(prefix, sessionID string) string {
	return prefix + ":" + sessionID
}

// engineFor returns the session's engine, loading it on first use. The
// load runs outside the registry lock; concurrent callers for the same
// session wait for it, other sessions are not blocked.
func (s *cartService) engineFor(ctx context.Context, sessionID string) (*cart.Engine, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	entry, found := s.engines[sessionID]
	if !found {
		entry = &cartEntry{ready: make(chan struct{})}
		s.engines[sessionID] = entry
	}
	entry.lastUsed = s.now()
	s.mu.Unlock()

	if !found {
		// A cancelled request must not leave a half-loaded cart behind.
		entry.engine = cart.NewEngine(context.WithoutCancel(ctx), cart.Options{
			SessionID: sessionID,
			Store:     s.store,
			Key:       CartKey(s.opts.KeyPrefix, sessionID),
			Coupons:   s.coupons,
			Notifier:  s.opts.Notifier,
			Observer:  s.opts.Observer,
		})
		close(entry.ready)
		return entry.engine, nil
	}

	select {
	case <-entry.ready:
		return entry.engine, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.State(), nil
}

func (s *cartService) AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (cart.State, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
	})

	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
				"session_id": sessionID,
				"product_id": productID,
			})
			return engine.State(), ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
		})
		return engine.State(), err
	}

	return engine.AddItem(ctx, productSnapshot(product), quantity)
}

func (s *cartService) UpdateCartItem(ctx context.Context, sessionID, productID string, quantity int) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.UpdateQuantity(ctx, productID, quantity)
}

func (s *cartService) RemoveFromCart(ctx context.Context, sessionID, productID string) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.RemoveItem(ctx, productID)
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.Clear(ctx)
}

func (s *cartService) ApplyCoupon(ctx context.Context, sessionID, code string) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.ApplyCoupon(ctx, strings.TrimSpace(code))
}

func (s *cartService) RemoveCoupon(ctx context.Context, sessionID string) (cart.State, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return cart.State{}, err
	}
	return engine.RemoveCoupon(ctx)
}

func (s *cartService) EstimateShipping(ctx context.Context, sessionID string, dest cart.Destination) (float64, error) {
	engine, err := s.engineFor(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return engine.EstimateShipping(dest, s.opts.Rates), nil
}

func (s *cartService) EvictIdle(olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	candidates := make(map[string]*cartEntry)
	for id, entry := range s.engines {
		if entry.loaded() && entry.lastUsed.Before(cutoff) {
			candidates[id] = entry
		}
	}
	s.mu.Unlock()

	// Engine state is read without the registry lock held.
	for id, entry := range candidates {
		if entry.engine.State().Coupon != nil {
			delete(candidates, id)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range candidates {
		if current, ok := s.engines[id]; ok && current == entry && entry.lastUsed.Before(cutoff) {
			delete(s.engines, id)
			evicted++
		}
	}

	if evicted > 0 {
		logger.Info("Evicted idle cart engines", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(s.engines),
		})
	}
	return evicted
}

func productSnapshot(p *model.Product) cart.Product {
	return cart.Product{
		ID:             p.CartKey(),
		Name:           p.Name,
		Price:          p.Price,
		AvailableStock: p.StockQuantity,
		Weight:         p.Weight,
		ImageURL:       p.ImageURL,
		Variant:        p.Presentation,
		Category:       string(p.Category),
	}
}
