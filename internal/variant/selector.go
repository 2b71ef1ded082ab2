package variant

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

var (
	ErrNoVariantSelected  = errors.New("no variant matches the current selection")
	ErrVariantUnavailable = errors.New("selected variant is out of stock")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
)

// CartMutator applies a cart mutation, either directly upstream or by
// queueing it while offline
type CartMutator interface {
	Add(ctx context.Context, intent domain.Intent) (domain.MutationOutcome, error)
}

// Selector holds the selection for one product view. It is not safe for
// concurrent use.
type Selector struct {
	variants []domain.Variant
	sel      Selection
	cart     CartMutator
}

// NewSelector creates a Selector seeded with the initial selection
func NewSelector(variants []domain.Variant, cart CartMutator) *Selector {
	return &Selector{
		variants: variants,
		sel:      NewSelection(variants),
		cart:     cart,
	}
}

// Selection returns the current selection
func (s *Selector) Selection() Selection {
	return s.sel
}

// Restore replaces the facets of the selection and re-resolves the variant
func (s *Selector) Restore(size, color string) {
	if len(s.variants) == 0 {
		return
	}
	s.sel.Size = size
	s.sel.Color = color
	s.sel = resolveSelection(s.sel, s.variants)
}

// SelectSize toggles the given size
func (s *Selector) SelectSize(size string) Selection {
	s.sel = ApplySize(s.sel, s.variants, size)
	return s.sel
}

// SelectColor toggles the given color
func (s *Selector) SelectColor(color string) Selection {
	s.sel = ApplyColor(s.sel, s.variants, color)
	return s.sel
}

// SetQuantity sets the quantity used by AddToCart
func (s *Selector) SetQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	s.sel.Quantity = quantity
	return nil
}

// IsOptionAvailable reports whether value can be selected for kind
func (s *Selector) IsOptionAvailable(kind Kind, value string) bool {
	return IsOptionAvailable(s.variants, s.sel, kind, value)
}

// Availability returns availability for every facet value of the product
func (s *Selector) Availability() Availability {
	return AvailabilityFor(s.variants, s.sel)
}

// AddToCart sends the resolved variant and quantity to the cart. It does
// nothing when no variant is resolved or the resolved variant cannot be
// purchased.
func (s *Selector) AddToCart(ctx context.Context) (domain.MutationOutcome, error) {
	v := s.sel.Resolved
	if v == nil {
		return "", ErrNoVariantSelected
	}
	if !v.Purchasable() {
		return "", ErrVariantUnavailable
	}

	outcome, err := s.cart.Add(ctx, domain.Intent{VariantID: v.ID, Quantity: s.sel.Quantity})
	if err != nil {
		return "", fmt.Errorf("failed to add variant %d to cart: %w", v.ID, err)
	}
	return outcome, nil
}
