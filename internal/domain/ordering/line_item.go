package ordering

import (
	"sort"
	"strings"
	"time"

	"github.com/tableside/backend/internal/domain/shared"
	"github.com/tableside/backend/internal/domain/shared/valueobject"
)

// keySeparator joins sorted customization IDs inside a line key.
// Catalog slugs never contain '|' or ':' so keys cannot collide.
const (
	keySeparator     = "|"
	keyProductSuffix = "::"
)

// DeriveLineKey builds the composite identity of a line item from a product ID
// and its customization set. The same product with the same customizations
// always resolves to the same key regardless of selection order.
func DeriveLineKey(productID string, customizationIDs []string) string {
	ids := make([]string, len(customizationIDs))
	copy(ids, customizationIDs)
	sort.Strings(ids)
	return productID + keyProductSuffix + strings.Join(ids, keySeparator)
}

// Customization is a single selected product modifier (e.g. "oat milk").
// Group marks mutually exclusive choices: a line item can carry at most one
// customization per group.
type Customization struct {
	ID    string
	Name  string
	Price valueobject.Money
	Group string
}

// Product is the read-only catalog snapshot captured into a line item at
// add-time. Later catalog changes never affect an existing line item.
type Product struct {
	ID       string
	Name     string
	Price    valueobject.Money
	Category string
	ImageURL string
}

// ApplyCustomization adds a customization to a not-yet-added selection set.
// If the set already holds a customization from the same non-empty group,
// the prior one is replaced. Re-applying the same customization is a no-op.
func ApplyCustomization(set []Customization, c Customization) []Customization {
	result := make([]Customization, 0, len(set)+1)
	for _, existing := range set {
		if existing.ID == c.ID {
			return set
		}
		if c.Group != "" && existing.Group == c.Group {
			continue
		}
		result = append(result, existing)
	}
	return append(result, c)
}

// ValidateCustomizations rejects a customization set that carries two
// selections from the same group. Sets composed through ApplyCustomization
// always pass; this guards raw sets arriving from the API boundary.
func ValidateCustomizations(set []Customization) error {
	seen := make(map[string]string, len(set))
	for _, c := range set {
		if c.Group == "" {
			continue
		}
		if _, ok := seen[c.Group]; ok {
			return shared.ErrDuplicateGroup
		}
		seen[c.Group] = c.ID
	}
	return nil
}

// LineItem is one (product, customization-set) pairing with a quantity.
type LineItem struct {
	Key            string
	Product        Product
	Quantity       int
	Customizations []Customization
	AddedAt        time.Time
}

// NewLineItem creates a line item with the derived key. Quantity is clamped
// to a minimum of 1; a zero-quantity line item never exists.
func NewLineItem(product Product, quantity int, customizations []Customization) (*LineItem, error) {
	if err := ValidateCustomizations(customizations); err != nil {
		return nil, err
	}
	if quantity < 1 {
		quantity = 1
	}
	return &LineItem{
		Key:            DeriveLineKey(product.ID, customizationIDs(customizations)),
		Product:        product,
		Quantity:       quantity,
		Customizations: customizations,
		AddedAt:        time.Now(),
	}, nil
}

// CustomizationIDs returns the IDs of the selected customizations.
func (li *LineItem) CustomizationIDs() []string {
	return customizationIDs(li.Customizations)
}

// UnitPrice is the product snapshot price plus all customization prices,
// rounded to cents.
func (li *LineItem) UnitPrice() valueobject.Money {
	price := li.Product.Price
	for _, c := range li.Customizations {
		price = price.MustAdd(c.Price)
	}
	return price.RoundCents()
}

// ExtrasTotal is the customization surcharge for the whole line (unit
// customization prices multiplied by quantity), rounded to cents.
func (li *LineItem) ExtrasTotal() valueobject.Money {
	extras := valueobject.Zero(li.Product.Price.Currency())
	for _, c := range li.Customizations {
		extras = extras.MustAdd(c.Price)
	}
	return extras.MultiplyByInt(int64(li.Quantity)).RoundCents()
}

// LineTotal is the extended price of the line item: unit price times quantity,
// rounded to cents.
func (li *LineItem) LineTotal() valueobject.Money {
	return li.UnitPrice().MultiplyByInt(int64(li.Quantity)).RoundCents()
}

func customizationIDs(set []Customization) []string {
	ids := make([]string, len(set))
	for i, c := range set {
		ids[i] = c.ID
	}
	return ids
}
