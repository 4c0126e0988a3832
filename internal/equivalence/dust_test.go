package equivalence

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/squid-dao/census/internal/oracle"
	"github.com/squid-dao/census/internal/types"
)

type stubTriPool struct {
	prices map[int]sdkmath.Int
}

func (s *stubTriPool) SpotPriceAt(_ context.Context, k int) (sdkmath.Int, error) {
	price, ok := s.prices[k]
	if !ok {
		return sdkmath.ZeroInt(), nil
	}
	return price, nil
}

func newTestEngine(t *testing.T, reference *stubTriPool, poolA *stubPool) (*Engine, *types.LPFamily) {
	t.Helper()
	poolB := &stubPool{spot: types.OneUnit, coin: baseToken, withdrawFn: proportional(types.OneUnit)}
	composer, err := oracle.NewComposer(reference, 1, poolA, poolB)
	require.NoError(t, err)
	engine, err := NewEngine(composer, newTestCalculator(t))
	require.NoError(t, err)
	family := &types.LPFamily{ID: types.FamilyA, Pool: poolA, BaseToken: baseToken, BaseIndex: 0}
	return engine, family
}

func TestMinUnitsToValueComputedFloor(t *testing.T) {
	// Quote currency at 2000 USD, base/quote spot 0.3: the base token is worth
	// 600 USD. One LP unit withdraws to 2 base, so the unit is worth 1200 USD
	// and the one-cent floor lands at 10^16 / 1200 of a unit.
	reference := &stubTriPool{prices: map[int]sdkmath.Int{1: sdkmath.NewIntWithDecimal(2000, 18)}}
	poolA := &stubPool{
		spot:       sdkmath.NewIntWithDecimal(3, 17),
		coin:       baseToken,
		withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18)),
	}
	engine, family := newTestEngine(t, reference, poolA)

	minUnits, err := engine.MinUnitsToValue(context.Background(), family)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(8333333333333), minUnits)
}

func TestMinUnitsToValueFallbackOnMissingPrice(t *testing.T) {
	// The reference pool has no quote price, so the chain composes to zero and
	// the engine falls back to the static floor.
	reference := &stubTriPool{prices: map[int]sdkmath.Int{}}
	poolA := &stubPool{
		spot:       sdkmath.NewIntWithDecimal(3, 17),
		coin:       baseToken,
		withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18)),
	}
	engine, family := newTestEngine(t, reference, poolA)

	minUnits, err := engine.MinUnitsToValue(context.Background(), family)
	require.NoError(t, err)
	require.Equal(t, types.MinLPThreshold, minUnits)
}

func TestMinUnitsToValueFallbackOnUnpriceableUnit(t *testing.T) {
	// Prices are fine but the pool quotes zero for a one-unit withdrawal: the
	// LP unit itself is unpriceable and the static floor applies.
	reference := &stubTriPool{prices: map[int]sdkmath.Int{1: sdkmath.NewIntWithDecimal(2000, 18)}}
	poolA := &stubPool{
		spot: sdkmath.NewIntWithDecimal(3, 17),
		coin: baseToken,
		withdrawFn: func(sdkmath.Int, int) (sdkmath.Int, error) {
			return sdkmath.ZeroInt(), nil
		},
	}
	engine, family := newTestEngine(t, reference, poolA)

	minUnits, err := engine.MinUnitsToValue(context.Background(), family)
	require.NoError(t, err)
	require.Equal(t, types.MinLPThreshold, minUnits)
}

func TestMinUnitsToValueConfigurationMismatch(t *testing.T) {
	reference := &stubTriPool{prices: map[int]sdkmath.Int{1: sdkmath.NewIntWithDecimal(2000, 18)}}
	poolA := &stubPool{
		spot:       sdkmath.NewIntWithDecimal(3, 17),
		coin:       otherToken,
		withdrawFn: proportional(types.OneUnit),
	}
	engine, family := newTestEngine(t, reference, poolA)

	_, err := engine.MinUnitsToValue(context.Background(), family)
	require.ErrorIs(t, err, types.ErrConfigurationMismatch)
}
