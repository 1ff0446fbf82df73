package rating

import (
	"fmt"
	"math"
)

// DefaultContainer is the UPS customer-supplied packaging-type code,
// assumed for any product without a container hint.
const DefaultContainer = "02"

// BuildPackages organizes order line items into physical packages,
// grouped by the shipping-origin address of their products. Groups are
// returned in first-use order; knownAddresses seeds the address list so
// callers can pin group keys to addresses they already track.
//
// StrategyAllInOne is only honored for multi-item orders; a single line
// item is always packed per line item. Line items missing required
// physical attributes are rejected rather than packed as zero-weight
// packages.
func BuildPackages(items []LineItem, knownAddresses []Address, strategy PackagingStrategy, perPackageQty int) ([]PackageGroup, error) {
	g := newGrouper(knownAddresses)

	if strategy == StrategyAllInOne && len(items) > 1 {
		if err := packAllInOne(g, items); err != nil {
			return nil, err
		}
	} else {
		if err := packPerLineItem(g, items, perPackageQty); err != nil {
			return nil, err
		}
	}
	return g.result(), nil
}

// packAllInOne accumulates every line item of an origin address into
// that address group's single package, then normalizes the total
// weight into pounds and ounces.
func packAllInOne(g *grouper, items []LineItem) error {
	totals := make(map[int]float64) // group key -> accumulated weight in lb

	for i := range items {
		item := &items[i]
		if err := validateItem(item, false); err != nil {
			return err
		}

		key := g.keyFor(item.Origin)
		grp := g.group(key)
		if len(grp.Packages) == 0 {
			grp.Packages = append(grp.Packages, newPackage())
		}
		pkg := grp.Packages[0]

		lb, err := ConvertWeight(item.Weight, item.WeightUnit, Pound)
		if err != nil {
			return err
		}
		pkg.Price += item.Price * float64(item.Qty)
		totals[key] += lb * float64(item.Qty)
	}

	for key, weight := range totals {
		pkg := g.group(key).Packages[0]
		pkg.Pounds = math.Floor(weight)
		pkg.Ounces = (weight - pkg.Pounds) * ozPerLB
		pkg.Container = DefaultContainer
		pkg.Size = SizeRegular
		pkg.Machinable = machinableWeight(pkg.Pounds, pkg.Ounces)
		pkg.Qty = 1
	}
	return nil
}

// packPerLineItem splits each line item into ceil(qty/perPackageQty)
// identical full-package records plus a remainder record when the
// quantity does not divide evenly. Full-package records are sized from
// the item's own PkgQty units; the configured quantity only drives the
// split.
func packPerLineItem(g *grouper, items []LineItem, perPackageQty int) error {
	if perPackageQty <= 0 {
		perPackageQty = 1
	}

	for i := range items {
		item := &items[i]
		if err := validateItem(item, true); err != nil {
			return err
		}

		key := g.keyFor(item.Origin)
		grp := g.group(key)

		pkgQty := item.PkgQty
		if pkgQty <= 0 {
			pkgQty = 1
		}

		numPkgs := int(math.Ceil(float64(item.Qty) / float64(perPackageQty)))
		if numPkgs > 0 {
			pkg, err := buildItemPackage(item, pkgQty, item.Price*float64(item.Qty), numPkgs)
			if err != nil {
				return err
			}
			grp.Packages = append(grp.Packages, pkg)
		}

		remainder := item.Qty % perPackageQty
		if remainder != 0 {
			pkg, err := buildItemPackage(item, remainder, item.Price*float64(remainder), 1)
			if err != nil {
				return err
			}
			grp.Packages = append(grp.Packages, pkg)
		}
	}
	return nil
}

// buildItemPackage sizes one package record from a line item: weight of
// `units` product units, dimensions of a single unit normalized to
// inches. Orientation puts the longer of length/width first and then
// applies a single length/height swap if height still dominates.
func buildItemPackage(item *LineItem, units int, price float64, count int) (*Package, error) {
	pkg := newPackage()
	pkg.Description = item.Model
	pkg.Price = price
	pkg.Qty = count

	if item.Container != "" {
		pkg.Container = item.Container
	}

	var err error
	pkg.Pounds, pkg.Ounces, err = DecomposeWeight(item.Weight*float64(units), item.WeightUnit)
	if err != nil {
		return nil, err
	}

	factor, err := ConvertLength(1, item.LengthUnit, Inch)
	if err != nil {
		return nil, err
	}
	pkg.Length = math.Max(item.Length, item.Width) * factor
	pkg.Width = math.Min(item.Length, item.Width) * factor
	pkg.Height = item.Height * factor
	if pkg.Length < pkg.Height {
		pkg.Length, pkg.Height = pkg.Height, pkg.Length
	}
	pkg.Girth = 2*pkg.Width + 2*pkg.Height

	pkg.Size = SizeRegular
	if pkg.Length > 12 {
		pkg.Size = SizeLarge
	}

	pkg.Machinable = pkg.Length >= 6 && pkg.Length <= 34 &&
		pkg.Width >= 0.25 && pkg.Width <= 17 &&
		pkg.Height >= 3.5 && pkg.Height <= 17 &&
		machinableWeight(pkg.Pounds, pkg.Ounces)

	return pkg, nil
}

// machinableWeight implements the carrier's automated-sorting weight
// rule: heavier than 6 oz and no more than exactly 35 lb.
func machinableWeight(pounds, ounces float64) bool {
	if pounds == 0 && ounces < 6 {
		return false
	}
	if pounds > 35 {
		return false
	}
	if pounds == 35 && ounces != 0 {
		return false
	}
	return true
}

func newPackage() *Package {
	return &Package{
		Qty:       1,
		Container: DefaultContainer,
	}
}

func validateItem(item *LineItem, needDimensions bool) error {
	if item.Qty <= 0 {
		return fmt.Errorf("%w: product %s has no quantity", ErrMissingAttributes, item.ProductID)
	}
	if item.Weight <= 0 {
		return fmt.Errorf("%w: product %s has no weight", ErrMissingAttributes, item.ProductID)
	}
	if needDimensions && (item.Length <= 0 || item.Width <= 0 || item.Height <= 0) {
		return fmt.Errorf("%w: product %s has no dimensions", ErrMissingAttributes, item.ProductID)
	}
	return nil
}

// grouper tracks origin addresses and their package groups, matching
// new addresses against seen ones by physical location.
type grouper struct {
	addresses []Address
	groups    map[int]*PackageGroup
	order     []int
}

func newGrouper(known []Address) *grouper {
	return &grouper{
		addresses: append([]Address(nil), known...),
		groups:    make(map[int]*PackageGroup),
	}
}

func (g *grouper) keyFor(addr Address) int {
	for i, seen := range g.addresses {
		if addr.SamePhysicalLocation(seen) {
			return i
		}
	}
	g.addresses = append(g.addresses, addr)
	return len(g.addresses) - 1
}

func (g *grouper) group(key int) *PackageGroup {
	grp, ok := g.groups[key]
	if !ok {
		grp = &PackageGroup{Origin: g.addresses[key]}
		g.groups[key] = grp
		g.order = append(g.order, key)
	}
	return grp
}

func (g *grouper) result() []PackageGroup {
	out := make([]PackageGroup, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, *g.groups[key])
	}
	return out
}
