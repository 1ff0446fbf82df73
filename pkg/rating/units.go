package rating

import (
	"fmt"
	"math"
)

// Conversion step factors. Weight units form the ordered chain
// g -> kg -> lb -> oz; length units form in -> cm. Converting between
// two units walks the chain, multiplying the step factors forward or
// dividing backward, so a gram value reaching pounds passes through
// the g->kg and kg->lb factors exactly once each.
const (
	gPerKG  = 1000.0
	lbPerKG = 2.204622622
	ozPerLB = 16.0
	cmPerIN = 2.54
)

var weightChain = []struct {
	unit WeightUnit
	next float64 // factor from this unit to the next in the chain
}{
	{Gram, 1 / gPerKG},
	{Kilogram, lbPerKG},
	{Pound, ozPerLB},
	{Ounce, 0},
}

var lengthChain = []struct {
	unit LengthUnit
	next float64
}{
	{Inch, cmPerIN},
	{Centimeter, 0},
}

// ConvertWeight converts a weight value between units. An unknown unit
// is a configuration error, never a silent pass-through.
func ConvertWeight(value float64, from, to WeightUnit) (float64, error) {
	fi, ti := -1, -1
	for i, s := range weightChain {
		if s.unit == from {
			fi = i
		}
		if s.unit == to {
			ti = i
		}
	}
	if fi < 0 || ti < 0 {
		return 0, fmt.Errorf("%w: weight %q -> %q", ErrUnknownUnit, from, to)
	}
	return walkChain(value, fi, ti, func(i int) float64 { return weightChain[i].next }), nil
}

// ConvertLength converts a length value between units.
func ConvertLength(value float64, from, to LengthUnit) (float64, error) {
	fi, ti := -1, -1
	for i, s := range lengthChain {
		if s.unit == from {
			fi = i
		}
		if s.unit == to {
			ti = i
		}
	}
	if fi < 0 || ti < 0 {
		return 0, fmt.Errorf("%w: length %q -> %q", ErrUnknownUnit, from, to)
	}
	return walkChain(value, fi, ti, func(i int) float64 { return lengthChain[i].next }), nil
}

func walkChain(value float64, from, to int, step func(int) float64) float64 {
	for from < to {
		value *= step(from)
		from++
	}
	for from > to {
		from--
		value /= step(from)
	}
	return value
}

// DecomposeWeight splits a weight into whole pounds and a fractional
// ounce remainder. Ounce inputs keep their sub-pound remainder in
// ounces directly; every other unit is converted to pounds first.
func DecomposeWeight(value float64, unit WeightUnit) (pounds, ounces float64, err error) {
	lb, err := ConvertWeight(value, unit, Pound)
	if err != nil {
		return 0, 0, err
	}
	pounds = math.Floor(lb)
	if unit == Ounce {
		ounces = value - pounds*ozPerLB
	} else {
		ounces = (lb - pounds) * ozPerLB
	}
	return pounds, ounces, nil
}
