package domain

import "github.com/shopspring/decimal"

// Intent is a cart mutation: add quantity units of a variant.
// Its JSON form is the body of POST /cart/items and the element type of the
// offline queue record.
type Intent struct {
	VariantID int64 `json:"variant_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// Cart is the cart representation returned by the upstream cart API
type Cart struct {
	ID    string          `json:"id"`
	Items []CartItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CartItem is a single line of a Cart
type CartItem struct {
	VariantID int64           `json:"variant_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// MutationOutcome describes how a cart mutation was handled
type MutationOutcome string

const (
	// OutcomeApplied means the upstream cart accepted the mutation
	OutcomeApplied MutationOutcome = "applied"
	// OutcomeQueuedOffline means the mutation was stored for later replay
	OutcomeQueuedOffline MutationOutcome = "queued_offline"
)
