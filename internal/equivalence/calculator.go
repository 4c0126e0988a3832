/*

Turns an LP-token quantity into a per-unit base-token exchange rate by
simulating a single-sided withdrawal against the pool. This is the census's
anti-manipulation core: quantities under the dust floor are never priced, and
rates computed at large quantities are clamped against the pool's own one-unit
baseline so pool curvature or a transient poke cannot inflate them.

*/

package equivalence

import (
	"context"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/squid-dao/census/internal/logger"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/utils"
)

var equivLogger = logger.GetForComponent("lp_equivalence")

// Calculator computes per-unit LP rates. Immutable after construction.
type Calculator struct {
	baseToken common.Address
}

// NewCalculator returns a calculator that asserts every priced pool actually
// holds the given base token at the expected coin slot.
func NewCalculator(baseToken common.Address) (*Calculator, error) {
	if baseToken == (common.Address{}) {
		return nil, fmt.Errorf("base token cannot be the zero address")
	}
	return &Calculator{baseToken: baseToken}, nil
}

// LPRate returns the 18-decimal rate from one LP-token unit to base-token
// units, derived from a simulated single-sided withdrawal of quantity at
// baseIndex. Returns zero for quantities under the dust floor and for any
// unpriceable stage. A coin-slot mismatch is a wiring error and aborts the
// query; proceeding would misprice the whole family.
func (c *Calculator) LPRate(ctx context.Context, pool types.TwoAssetPool, baseIndex int, quantity sdkmath.Int) (sdkmath.Int, error) {
	if quantity.IsNil() {
		return sdkmath.ZeroInt(), utils.ErrAmountNil
	}
	if quantity.IsNegative() {
		return sdkmath.ZeroInt(), utils.ErrAmountNegative
	}

	coin, err := pool.Coin(ctx, baseIndex)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool coin lookup: %w", types.ErrProviderUnavailable, err)
	}
	if coin != c.baseToken {
		equivLogger.Error().
			Int("baseIndex", baseIndex).
			Str("expected", c.baseToken.Hex()).
			Str("got", coin.Hex()).
			Msg("Pool coin does not match configured base token")
		return sdkmath.ZeroInt(), fmt.Errorf("%w: index %d holds %s, expected %s",
			types.ErrConfigurationMismatch, baseIndex, coin.Hex(), c.baseToken.Hex())
	}

	// Dust floor: a tiny probe can extract a disproportionate per-unit rate
	// from pool rounding. Covers quantity == 0 as well.
	if quantity.LT(types.MinLPThreshold) {
		return sdkmath.ZeroInt(), nil
	}

	out, err := pool.CalcWithdrawOneCoin(ctx, quantity, baseIndex)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: withdrawal quote: %w", types.ErrProviderUnavailable, err)
	}
	if out.IsNil() || out.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool returned an invalid withdrawal quote", types.ErrProviderUnavailable)
	}
	if out.IsZero() {
		// Unpriceable, not an error: a zero quote must not become a confident rate.
		return sdkmath.ZeroInt(), nil
	}

	rate, err := utils.ScaledMulDiv(out, types.OneUnit, quantity)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	// Outlier clamp, only for full-unit-or-larger probes: bound the rate by ten
	// times what the pool reports for exactly one unit. Quantities between the
	// dust floor and one unit bypass this; the aggregation layer's USD dust
	// threshold is the remaining defense there.
	if quantity.GTE(types.OneUnit) {
		baselineOut, err := pool.CalcWithdrawOneCoin(ctx, types.OneUnit, baseIndex)
		if err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: baseline withdrawal quote: %w", types.ErrProviderUnavailable, err)
		}
		if baselineOut.IsNil() || baselineOut.IsNegative() {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: pool returned an invalid baseline quote", types.ErrProviderUnavailable)
		}

		baselineRate, err := utils.ScaledMulDiv(baselineOut, types.OneUnit, types.OneUnit)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}

		limit := new(big.Int).Mul(baselineRate.BigInt(), types.OutlierClampFactor.BigInt())
		if rate.BigInt().Cmp(limit) > 0 {
			equivLogger.Warn().
				Str("rate", rate.String()).
				Str("baselineRate", baselineRate.String()).
				Str("quantity", quantity.String()).
				Msg("Rate exceeds outlier limit, clamping to baseline")
			return baselineRate, nil
		}
	}

	return rate, nil
}
