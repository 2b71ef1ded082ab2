package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/offlinecart"
	"storefront/internal/repository"
	"storefront/internal/variant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrCartUnavailable = errors.New("cart is unavailable while offline")
	ErrInvalidFacet    = errors.New("unknown facet kind")
)

// SelectionView is a selection together with per-facet availability
type SelectionView struct {
	ProductID    uuid.UUID            `json:"product_id"`
	Selection    variant.Selection    `json:"selection"`
	Availability variant.Availability `json:"availability"`
	Purchasable  bool                 `json:"purchasable"`
}

// SelectionRequest carries facets chosen by the client. When Explicit is
// false the initial selection of the product is returned.
type SelectionRequest struct {
	Size     string
	Color    string
	Quantity int
	Explicit bool
}

// StorefrontService defines the interface for storefront business logic
type StorefrontService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)
	Selection(ctx context.Context, productID uuid.UUID, req SelectionRequest) (*SelectionView, error)
	ToggleOption(ctx context.Context, productID uuid.UUID, current SelectionRequest, kind variant.Kind, value string) (*SelectionView, error)
	AddSelectionToCart(ctx context.Context, productID uuid.UUID, req SelectionRequest) (domain.MutationOutcome, *SelectionView, error)
	AddToCart(ctx context.Context, intent domain.Intent) (domain.MutationOutcome, error)
	GetCart(ctx context.Context) (*domain.Cart, error)
	PendingIntents(ctx context.Context) ([]domain.Intent, error)
	ReplayOffline(ctx context.Context) (offlinecart.DrainResult, error)
}

// CartReader reads the upstream cart
type CartReader interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
}

// QueryCache caches query results by key
type QueryCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
}

// OfflineQueue is the read and replay side of the offline cart queue
type OfflineQueue interface {
	Pending(ctx context.Context) ([]domain.Intent, error)
	DrainAndReplay(ctx context.Context) (offlinecart.DrainResult, error)
}

// ConnectivityChecker reports whether the upstream is reachable
type ConnectivityChecker interface {
	IsOnline() bool
}

type storefrontService struct {
	products repository.ProductRepository
	cart     variant.CartMutator
	reader   CartReader
	cache    QueryCache
	queue    OfflineQueue
	network  ConnectivityChecker
	logger   *zap.Logger
}

// NewStorefrontService creates a new instance of StorefrontService
func NewStorefrontService(
	products repository.ProductRepository,
	cart variant.CartMutator,
	reader CartReader,
	cache QueryCache,
	queue OfflineQueue,
	network ConnectivityChecker,
	logger *zap.Logger,
) StorefrontService {
	return &storefrontService{
		products: products,
		cart:     cart,
		reader:   reader,
		cache:    cache,
		queue:    queue,
		network:  network,
		logger:   logger,
	}
}

// GetProduct retrieves a product with its variants
func (s *storefrontService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts retrieves a page of products
func (s *storefrontService) ListProducts(ctx context.Context, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products, total, err := s.products.List(ctx, page, pageSize, sortBy, sortOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// Selection resolves the requested facets of a product
func (s *storefrontService) Selection(ctx context.Context, productID uuid.UUID, req SelectionRequest) (*SelectionView, error) {
	product, selector, err := s.selectorFor(ctx, productID, req)
	if err != nil {
		return nil, err
	}
	return viewOf(product, selector), nil
}

// ToggleOption applies a size or color toggle to the current selection
func (s *storefrontService) ToggleOption(ctx context.Context, productID uuid.UUID, current SelectionRequest, kind variant.Kind, value string) (*SelectionView, error) {
	if !kind.Valid() {
		return nil, ErrInvalidFacet
	}

	current.Explicit = true
	product, selector, err := s.selectorFor(ctx, productID, current)
	if err != nil {
		return nil, err
	}

	switch kind {
	case variant.KindSize:
		selector.SelectSize(value)
	case variant.KindColor:
		selector.SelectColor(value)
	}
	return viewOf(product, selector), nil
}

// AddSelectionToCart resolves the facets and adds the resolved variant
func (s *storefrontService) AddSelectionToCart(ctx context.Context, productID uuid.UUID, req SelectionRequest) (domain.MutationOutcome, *SelectionView, error) {
	req.Explicit = true
	product, selector, err := s.selectorFor(ctx, productID, req)
	if err != nil {
		return "", nil, err
	}

	view := viewOf(product, selector)
	outcome, err := selector.AddToCart(ctx)
	if err != nil {
		return "", view, err
	}
	return outcome, view, nil
}

// AddToCart applies a cart mutation directly or through the offline queue.
// The variant must exist in the catalog and be purchasable.
func (s *storefrontService) AddToCart(ctx context.Context, intent domain.Intent) (domain.MutationOutcome, error) {
	v, err := s.products.FindVariant(ctx, intent.VariantID)
	if err != nil {
		return "", fmt.Errorf("failed to get variant: %w", err)
	}
	if !v.Purchasable() {
		return "", variant.ErrVariantUnavailable
	}
	return s.cart.Add(ctx, intent)
}

// GetCart serves the cached cart view, refreshing it from upstream on a miss
func (s *storefrontService) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cached domain.Cart
	hit, err := s.cache.Get(ctx, offlinecart.CacheKeyCart, &cached)
	if err != nil {
		s.logger.Warn("Failed to read cart cache", zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	if !s.network.IsOnline() {
		return nil, ErrCartUnavailable
	}

	cart, err := s.reader.GetCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	if err := s.cache.Set(ctx, offlinecart.CacheKeyCart, cart); err != nil {
		s.logger.Warn("Failed to cache cart", zap.Error(err))
	}
	return cart, nil
}

// PendingIntents lists mutations waiting for connectivity
func (s *storefrontService) PendingIntents(ctx context.Context) ([]domain.Intent, error) {
	return s.queue.Pending(ctx)
}

// ReplayOffline drains the offline queue on demand
func (s *storefrontService) ReplayOffline(ctx context.Context) (offlinecart.DrainResult, error) {
	if !s.network.IsOnline() {
		return offlinecart.DrainResult{}, ErrCartUnavailable
	}
	return s.queue.DrainAndReplay(ctx)
}

func (s *storefrontService) selectorFor(ctx context.Context, productID uuid.UUID, req SelectionRequest) (*domain.Product, *variant.Selector, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get product: %w", err)
	}

	selector := variant.NewSelector(product.Variants, s.cart)
	if req.Explicit {
		selector.Restore(req.Size, req.Color)
	}
	if req.Quantity != 0 {
		if err := selector.SetQuantity(req.Quantity); err != nil {
			return nil, nil, err
		}
	}
	return product, selector, nil
}

func viewOf(product *domain.Product, selector *variant.Selector) *SelectionView {
	sel := selector.Selection()
	return &SelectionView{
		ProductID:    product.ID,
		Selection:    sel,
		Availability: selector.Availability(),
		Purchasable:  sel.Resolved != nil && sel.Resolved.Purchasable(),
	}
}
