package rating_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsrate/pkg/rating"
)

func TestConvertWeight_ForwardChain(t *testing.T) {
	// Grams reach pounds through the kilogram step.
	lb, err := rating.ConvertWeight(1000, rating.Gram, rating.Pound)
	require.NoError(t, err)
	assert.InDelta(t, 2.204622622, lb, 1e-9)

	oz, err := rating.ConvertWeight(2, rating.Pound, rating.Ounce)
	require.NoError(t, err)
	assert.InDelta(t, 32, oz, 1e-9)
}

func TestConvertWeight_BackwardChain(t *testing.T) {
	g, err := rating.ConvertWeight(2, rating.Kilogram, rating.Gram)
	require.NoError(t, err)
	assert.InDelta(t, 2000, g, 1e-9)

	kg, err := rating.ConvertWeight(32, rating.Ounce, rating.Kilogram)
	require.NoError(t, err)
	assert.InDelta(t, 0.907184, kg, 1e-4)
}

func TestConvertWeight_SameUnit(t *testing.T) {
	v, err := rating.ConvertWeight(3.5, rating.Pound, rating.Pound)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestConvertWeight_UnknownUnit(t *testing.T) {
	_, err := rating.ConvertWeight(1, rating.WeightUnit("stone"), rating.Pound)
	assert.ErrorIs(t, err, rating.ErrUnknownUnit)

	_, err = rating.ConvertWeight(1, rating.Pound, rating.WeightUnit(""))
	assert.ErrorIs(t, err, rating.ErrUnknownUnit)
}

func TestConvertLength(t *testing.T) {
	cm, err := rating.ConvertLength(2, rating.Inch, rating.Centimeter)
	require.NoError(t, err)
	assert.InDelta(t, 5.08, cm, 1e-9)

	in, err := rating.ConvertLength(5.08, rating.Centimeter, rating.Inch)
	require.NoError(t, err)
	assert.InDelta(t, 2, in, 1e-9)

	_, err = rating.ConvertLength(1, rating.LengthUnit("ft"), rating.Inch)
	assert.ErrorIs(t, err, rating.ErrUnknownUnit)
}

func TestDecomposeWeight_Pounds(t *testing.T) {
	pounds, ounces, err := rating.DecomposeWeight(2.5, rating.Pound)
	require.NoError(t, err)
	assert.Equal(t, 2.0, pounds)
	assert.InDelta(t, 8, ounces, 1e-9)
}

func TestDecomposeWeight_Grams(t *testing.T) {
	// 500 g is 1.102311311 lb.
	pounds, ounces, err := rating.DecomposeWeight(500, rating.Gram)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pounds)
	assert.InDelta(t, 1.637, ounces, 1e-3)
}

func TestDecomposeWeight_OuncesKeepRemainder(t *testing.T) {
	// An ounce input keeps its sub-pound remainder exact instead of
	// round-tripping through pounds.
	pounds, ounces, err := rating.DecomposeWeight(20, rating.Ounce)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pounds)
	assert.Equal(t, 4.0, ounces)

	pounds, ounces, err = rating.DecomposeWeight(5, rating.Ounce)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pounds)
	assert.Equal(t, 5.0, ounces)
}

func TestDecomposeWeight_UnknownUnit(t *testing.T) {
	_, _, err := rating.DecomposeWeight(1, rating.WeightUnit("stone"))
	assert.ErrorIs(t, err, rating.ErrUnknownUnit)
}
