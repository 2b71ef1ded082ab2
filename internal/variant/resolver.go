// Package variant maps facet selections (size, color) onto the variants of
// a product.
//
// Everything except Selector is a pure function over a variant list and a
// Selection value, so the same inputs always give the same result.
package variant

import "storefront/internal/domain"

// Kind names a selectable facet
type Kind string

const (
	KindSize  Kind = "size"
	KindColor Kind = "color"
)

// Valid reports whether k is a known facet kind
func (k Kind) Valid() bool {
	return k == KindSize || k == KindColor
}

// Selection is the facet selection for one product. An empty Size or Color
// means nothing is selected for that facet.
type Selection struct {
	Size     string          `json:"size,omitempty"`
	Color    string          `json:"color,omitempty"`
	Quantity int             `json:"quantity"`
	Resolved *domain.Variant `json:"resolved_variant,omitempty"`
}

// NewSelection builds the initial selection: the first in-stock variant, or
// the first variant when none is in stock. Its facets seed the selection.
func NewSelection(variants []domain.Variant) Selection {
	sel := Selection{Quantity: 1}
	if len(variants) == 0 {
		return sel
	}

	initial := &variants[0]
	for i := range variants {
		if variants[i].Status == domain.StatusInStock {
			initial = &variants[i]
			break
		}
	}

	v := *initial
	sel.Size = v.Size
	sel.Color = v.Color
	sel.Resolved = &v
	return sel
}

// Resolve returns the first variant whose size and color equal the given
// values. A facet the variant leaves undefined matches any value.
func Resolve(variants []domain.Variant, size, color string) (domain.Variant, bool) {
	for _, v := range variants {
		if facetMatches(v.Size, size) && facetMatches(v.Color, color) {
			return v, true
		}
	}
	return domain.Variant{}, false
}

func facetMatches(defined, selected string) bool {
	return defined == "" || defined == selected
}

// ApplySize toggles size: selecting the active size clears it. The resolved
// variant is recomputed from the new facets.
func ApplySize(sel Selection, variants []domain.Variant, size string) Selection {
	if len(variants) == 0 {
		return sel
	}
	if sel.Size == size {
		sel.Size = ""
	} else {
		sel.Size = size
	}
	return resolveSelection(sel, variants)
}

// ApplyColor toggles color the same way ApplySize toggles size
func ApplyColor(sel Selection, variants []domain.Variant, color string) Selection {
	if len(variants) == 0 {
		return sel
	}
	if sel.Color == color {
		sel.Color = ""
	} else {
		sel.Color = color
	}
	return resolveSelection(sel, variants)
}

// Apply dispatches to ApplySize or ApplyColor. Unknown kinds leave the
// selection unchanged.
func Apply(sel Selection, variants []domain.Variant, kind Kind, value string) Selection {
	switch kind {
	case KindSize:
		return ApplySize(sel, variants, value)
	case KindColor:
		return ApplyColor(sel, variants, value)
	default:
		return sel
	}
}

func resolveSelection(sel Selection, variants []domain.Variant) Selection {
	if v, ok := Resolve(variants, sel.Size, sel.Color); ok {
		sel.Resolved = &v
	} else {
		sel.Resolved = nil
	}
	return sel
}

// IsOptionAvailable reports whether a facet value can be selected given the
// other facet of the current selection. For KindSize it is true iff some
// purchasable variant has that size and matches the selected color (if any)
// the way Resolve matches it, so an undefined variant color matches too.
func IsOptionAvailable(variants []domain.Variant, sel Selection, kind Kind, value string) bool {
	for _, v := range variants {
		if !v.Purchasable() {
			continue
		}
		switch kind {
		case KindSize:
			if v.Size == value && (sel.Color == "" || facetMatches(v.Color, sel.Color)) {
				return true
			}
		case KindColor:
			if v.Color == value && (sel.Size == "" || facetMatches(v.Size, sel.Size)) {
				return true
			}
		}
	}
	return false
}

// Availability lists every distinct size and color with its availability
type Availability struct {
	Sizes  []Option `json:"sizes"`
	Colors []Option `json:"colors"`
}

// Option is one facet value and whether it can currently be selected
type Option struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Selected  bool   `json:"selected"`
}

// AvailabilityFor computes Availability for the current selection. Values
// keep the order of their first appearance in the variant list.
func AvailabilityFor(variants []domain.Variant, sel Selection) Availability {
	sizes := distinct(variants, func(v domain.Variant) string { return v.Size })
	colors := distinct(variants, func(v domain.Variant) string { return v.Color })

	avail := Availability{
		Sizes:  make([]Option, 0, len(sizes)),
		Colors: make([]Option, 0, len(colors)),
	}
	for _, s := range sizes {
		avail.Sizes = append(avail.Sizes, Option{
			Value:     s,
			Available: IsOptionAvailable(variants, sel, KindSize, s),
			Selected:  sel.Size == s,
		})
	}
	for _, c := range colors {
		avail.Colors = append(avail.Colors, Option{
			Value:     c,
			Available: IsOptionAvailable(variants, sel, KindColor, c),
			Selected:  sel.Color == c,
		})
	}
	return avail
}

func distinct(variants []domain.Variant, facet func(domain.Variant) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, v := range variants {
		f := facet(v)
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		values = append(values, f)
	}
	return values
}
