package utils

import (
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestScaledMulDivExact(t *testing.T) {
	// 0.2 * 3000 at 18 decimals divides evenly: no rounding at all.
	a := sdkmath.NewIntWithDecimal(2, 17)
	b := sdkmath.NewIntWithDecimal(3000, 18)
	c := sdkmath.NewIntWithDecimal(1, 18)

	result, err := ScaledMulDiv(a, b, c)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntWithDecimal(600, 18), result)
}

func TestScaledMulDivFloors(t *testing.T) {
	result, err := ScaledMulDiv(sdkmath.NewInt(10), sdkmath.NewInt(10), sdkmath.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(33), result)
}

func TestScaledMulDivZeroDivisor(t *testing.T) {
	result, err := ScaledMulDiv(sdkmath.NewInt(5), sdkmath.NewInt(7), sdkmath.ZeroInt())
	require.NoError(t, err)
	require.True(t, result.IsZero())
}

func TestScaledMulDivZeroFactor(t *testing.T) {
	result, err := ScaledMulDiv(sdkmath.ZeroInt(), sdkmath.NewInt(7), sdkmath.NewInt(3))
	require.NoError(t, err)
	require.True(t, result.IsZero())
}

func TestScaledMulDivOverflow(t *testing.T) {
	wide := sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))

	_, err := ScaledMulDiv(wide, wide, sdkmath.OneInt())
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestScaledMulDivNilInput(t *testing.T) {
	_, err := ScaledMulDiv(sdkmath.Int{}, sdkmath.NewInt(1), sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrAmountNil)
}

func TestScaledMulDivNegativeInput(t *testing.T) {
	_, err := ScaledMulDiv(sdkmath.NewInt(-1), sdkmath.NewInt(1), sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrAmountNegative)
}

func TestScaledMulDivLargeIntermediate(t *testing.T) {
	// a*b*10^36 runs far past 256 bits, but the final quotient fits.
	a := sdkmath.NewIntWithDecimal(1, 30)
	b := sdkmath.NewIntWithDecimal(1, 30)
	c := sdkmath.NewIntWithDecimal(1, 30)

	result, err := ScaledMulDiv(a, b, c)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntWithDecimal(1, 30), result)
}

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd(sdkmath.NewInt(2), sdkmath.NewInt(40))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(42), sum)
}

func TestCheckedAddOverflow(t *testing.T) {
	max := sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	_, err := CheckedAdd(max, sdkmath.OneInt())
	require.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestCheckedAddNil(t *testing.T) {
	_, err := CheckedAdd(sdkmath.Int{}, sdkmath.OneInt())
	require.ErrorIs(t, err, ErrAmountNil)
}
