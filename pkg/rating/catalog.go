package rating

import (
	"context"
	"fmt"
)

// ProductInfo carries the physical product attributes the packaging
// algorithm needs but order line items do not always carry themselves.
type ProductInfo struct {
	Length     float64
	Width      float64
	Height     float64
	LengthUnit LengthUnit

	// Container is the carrier packaging-type hint for this product.
	Container string

	// Origin is the product's default shipping-origin address.
	Origin Address
}

// Catalog looks up physical product attributes by product identifier.
// It is an external collaborator; the rating core never caches or
// mutates catalog data.
type Catalog interface {
	Product(ctx context.Context, productID string) (*ProductInfo, error)
}

// StaticCatalog is a map-backed Catalog, useful for tests and for
// callers that already hold product data in memory.
type StaticCatalog map[string]ProductInfo

// Product implements Catalog.
func (c StaticCatalog) Product(_ context.Context, productID string) (*ProductInfo, error) {
	info, ok := c[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not in catalog", productID)
	}
	return &info, nil
}

// ResolveLineItems populates missing physical attributes on each line
// item from the catalog, once, before packaging begins. Items that
// already carry dimensions keep them. With a nil catalog the items are
// returned as-is and packaging validation decides whether they are
// complete enough.
func ResolveLineItems(ctx context.Context, catalog Catalog, items []LineItem) ([]LineItem, error) {
	if catalog == nil {
		return items, nil
	}

	out := make([]LineItem, len(items))
	for i, item := range items {
		if item.Length > 0 && item.Width > 0 && item.Height > 0 && item.Container != "" {
			out[i] = item
			continue
		}

		info, err := catalog.Product(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingAttributes, err)
		}
		if item.Length <= 0 && item.Width <= 0 && item.Height <= 0 {
			item.Length = info.Length
			item.Width = info.Width
			item.Height = info.Height
			item.LengthUnit = info.LengthUnit
		}
		if item.Container == "" {
			item.Container = info.Container
		}
		if item.Origin == (Address{}) {
			item.Origin = info.Origin
		}
		out[i] = item
	}
	return out, nil
}
