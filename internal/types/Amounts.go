/*

Shared fixed-point constants for the census. Every monetary quantity in the system
is an 18-decimal unsigned fixed-point value carried in a cosmossdk.io/math Int,
which traps at 256 bits instead of wrapping.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

var (
	// OneUnit is one whole token at 18 decimals (10^18).
	OneUnit = sdkmath.NewIntWithDecimal(1, 18)

	// MinLPThreshold is the static dust floor: LP quantities strictly below this
	// are never priced. Probing a pool's withdrawal simulation with a vanishing
	// quantity can return a wildly inflated per-unit rate, so such quantities
	// are valued at zero outright.
	MinLPThreshold = sdkmath.NewIntWithDecimal(1, 15)

	// USDDustFloor is the USD value (18 decimals) below which an LP position is
	// not worth valuing; one US cent.
	USDDustFloor = sdkmath.NewIntWithDecimal(1, 16)

	// MaxQuantity is the ceiling for caller-supplied LP quantities (10^30).
	// Bounds the intermediate products in downstream rate math.
	MaxQuantity = sdkmath.NewIntWithDecimal(1, 30)

	// OutlierClampFactor caps how far a rate computed at a large quantity may
	// exceed the one-unit baseline rate before it is clamped back to baseline.
	OutlierClampFactor = sdkmath.NewInt(10)
)
