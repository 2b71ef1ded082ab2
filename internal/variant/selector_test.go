package variant

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
)

type recordingCart struct {
	intents []domain.Intent
	outcome domain.MutationOutcome
	err     error
}

func (c *recordingCart) Add(ctx context.Context, intent domain.Intent) (domain.MutationOutcome, error) {
	if c.err != nil {
		return "", c.err
	}
	c.intents = append(c.intents, intent)
	return c.outcome, nil
}

func TestAddToCartSendsResolvedVariant(t *testing.T) {
	variants := []domain.Variant{
		{ID: 42, Size: "S", Color: "Red", Status: domain.StatusInStock, Inventory: 5},
	}
	cart := &recordingCart{outcome: domain.OutcomeQueuedOffline}
	selector := NewSelector(variants, cart)

	if err := selector.SetQuantity(2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	outcome, err := selector.AddToCart(context.Background())
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	if outcome != domain.OutcomeQueuedOffline {
		t.Errorf("Expected outcome from the cart, got %s", outcome)
	}
	if len(cart.intents) != 1 || cart.intents[0] != (domain.Intent{VariantID: 42, Quantity: 2}) {
		t.Errorf("Unexpected intents %+v", cart.intents)
	}
}

func TestAddToCartIsGuarded(t *testing.T) {
	cart := &recordingCart{outcome: domain.OutcomeApplied}

	empty := NewSelector(nil, cart)
	if _, err := empty.AddToCart(context.Background()); !errors.Is(err, ErrNoVariantSelected) {
		t.Errorf("Expected ErrNoVariantSelected, got %v", err)
	}

	selector := NewSelector(mixedStockVariants(), cart)
	selector.SelectSize("M")
	if _, err := selector.AddToCart(context.Background()); !errors.Is(err, ErrVariantUnavailable) {
		t.Errorf("Expected ErrVariantUnavailable, got %v", err)
	}

	selector.SelectColor("Red") // clears color, nothing resolves
	if selector.Selection().Resolved != nil {
		t.Fatalf("Expected no resolved variant, got %+v", selector.Selection().Resolved)
	}
	if _, err := selector.AddToCart(context.Background()); !errors.Is(err, ErrNoVariantSelected) {
		t.Errorf("Expected ErrNoVariantSelected, got %v", err)
	}

	if len(cart.intents) != 0 {
		t.Errorf("Guarded calls must not reach the cart, got %+v", cart.intents)
	}
}

func TestAddToCartWrapsCartErrors(t *testing.T) {
	upstream := errors.New("upstream down")
	selector := NewSelector(mixedStockVariants(), &recordingCart{err: upstream})

	if _, err := selector.AddToCart(context.Background()); !errors.Is(err, upstream) {
		t.Errorf("Expected wrapped upstream error, got %v", err)
	}
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	selector := NewSelector(mixedStockVariants(), &recordingCart{})
	for _, q := range []int{0, -1} {
		if err := selector.SetQuantity(q); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("Expected ErrInvalidQuantity for %d, got %v", q, err)
		}
	}
	if selector.Selection().Quantity != 1 {
		t.Errorf("Expected quantity to stay 1, got %d", selector.Selection().Quantity)
	}
}

func TestRestoreReResolves(t *testing.T) {
	selector := NewSelector(mixedStockVariants(), &recordingCart{})
	selector.Restore("M", "Red")

	if got := selector.Selection().Resolved; got == nil || got.ID != 2 {
		t.Errorf("Expected M/Red after restore, got %+v", got)
	}
	if selector.IsOptionAvailable(KindColor, "Red") {
		t.Error("Red is not purchasable in size M")
	}
}
