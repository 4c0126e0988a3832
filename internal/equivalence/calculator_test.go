package equivalence

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/squid-dao/census/internal/types"
)

var (
	baseToken  = common.HexToAddress("0x6e58089d8E8f664823d26454f49A5A0f2fF697Fe")
	otherToken = common.HexToAddress("0x0000000000000000000000000000000000000bad")
)

type stubPool struct {
	spot          sdkmath.Int
	coin          common.Address
	coinErr       error
	withdrawFn    func(quantity sdkmath.Int, index int) (sdkmath.Int, error)
	withdrawCalls []sdkmath.Int
}

func (s *stubPool) SpotPrice(_ context.Context) (sdkmath.Int, error) {
	if s.spot.IsNil() {
		return sdkmath.ZeroInt(), nil
	}
	return s.spot, nil
}

func (s *stubPool) CalcWithdrawOneCoin(_ context.Context, quantity sdkmath.Int, index int) (sdkmath.Int, error) {
	s.withdrawCalls = append(s.withdrawCalls, quantity)
	return s.withdrawFn(quantity, index)
}

func (s *stubPool) Coin(_ context.Context, _ int) (common.Address, error) {
	if s.coinErr != nil {
		return common.Address{}, s.coinErr
	}
	return s.coin, nil
}

// proportional returns a withdraw simulation paying out `perUnit` base tokens
// per full LP unit, linearly.
func proportional(perUnit sdkmath.Int) func(sdkmath.Int, int) (sdkmath.Int, error) {
	return func(quantity sdkmath.Int, _ int) (sdkmath.Int, error) {
		return quantity.Mul(perUnit).Quo(types.OneUnit), nil
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(baseToken)
	require.NoError(t, err)
	return calc
}

func TestLPRateZeroQuantity(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coin: baseToken, withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18))}

	rate, err := calc.LPRate(context.Background(), pool, 0, sdkmath.ZeroInt())
	require.NoError(t, err)
	require.True(t, rate.IsZero())
	require.Empty(t, pool.withdrawCalls, "dust quantities must never reach the pool")
}

func TestLPRateDustFloor(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coin: baseToken, withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18))}

	// One below the floor returns zero, the floor itself is priced.
	below := types.MinLPThreshold.Sub(sdkmath.OneInt())
	rate, err := calc.LPRate(context.Background(), pool, 0, below)
	require.NoError(t, err)
	require.True(t, rate.IsZero())
	require.Empty(t, pool.withdrawCalls)

	rate, err = calc.LPRate(context.Background(), pool, 0, types.MinLPThreshold)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntWithDecimal(2, 18), rate)
}

func TestLPRateConfigurationMismatch(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coin: otherToken, withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18))}

	// Fails for every quantity, dust or not: a miswired pool must never price.
	for _, quantity := range []sdkmath.Int{sdkmath.ZeroInt(), types.OneUnit, sdkmath.NewIntWithDecimal(5, 20)} {
		_, err := calc.LPRate(context.Background(), pool, 0, quantity)
		require.ErrorIs(t, err, types.ErrConfigurationMismatch)
	}
	require.Empty(t, pool.withdrawCalls)
}

func TestLPRateZeroWithdrawQuote(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coin: baseToken, withdrawFn: func(sdkmath.Int, int) (sdkmath.Int, error) {
		return sdkmath.ZeroInt(), nil
	}}

	rate, err := calc.LPRate(context.Background(), pool, 0, types.OneUnit)
	require.NoError(t, err)
	require.True(t, rate.IsZero())
}

func TestLPRateSubUnitQuantity(t *testing.T) {
	// Withdrawing 2*10^15 LP yields 2.52*10^16 base: the per-unit rate is
	// 1.26*10^19. Below one unit, so the outlier clamp must not engage.
	calc := newTestCalculator(t)
	quantity := sdkmath.NewIntWithDecimal(2, 15)
	pool := &stubPool{coin: baseToken, withdrawFn: func(q sdkmath.Int, _ int) (sdkmath.Int, error) {
		require.True(t, q.Equal(quantity), "sub-unit probes must not trigger a baseline lookup")
		return sdkmath.NewIntWithDecimal(252, 14), nil
	}}

	rate, err := calc.LPRate(context.Background(), pool, 0, quantity)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntWithDecimal(126, 17), rate)
	require.Len(t, pool.withdrawCalls, 1)
}

func TestLPRateOutlierClamp(t *testing.T) {
	// The pool pays X for one unit but 11X for the probed quantity, pushing
	// the raw rate past ten times baseline. The clamp returns the baseline.
	calc := newTestCalculator(t)
	baselineOut := sdkmath.NewIntWithDecimal(1, 18)
	quantity := sdkmath.NewIntWithDecimal(105, 16) // 1.05 units

	pool := &stubPool{coin: baseToken, withdrawFn: func(q sdkmath.Int, _ int) (sdkmath.Int, error) {
		if q.Equal(types.OneUnit) {
			return baselineOut, nil
		}
		return baselineOut.Mul(sdkmath.NewInt(11)), nil
	}}

	rate, err := calc.LPRate(context.Background(), pool, 0, quantity)
	require.NoError(t, err)
	require.Equal(t, baselineOut, rate)
	require.Len(t, pool.withdrawCalls, 2)
}

func TestLPRateNoClampWithinBounds(t *testing.T) {
	// Linear payout: large-quantity rate equals baseline, clamp stays idle.
	calc := newTestCalculator(t)
	pool := &stubPool{coin: baseToken, withdrawFn: proportional(sdkmath.NewIntWithDecimal(2, 18))}

	rate, err := calc.LPRate(context.Background(), pool, 0, sdkmath.NewIntWithDecimal(100, 18))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntWithDecimal(2, 18), rate)
}

func TestLPRateProviderFailure(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coin: baseToken, withdrawFn: func(sdkmath.Int, int) (sdkmath.Int, error) {
		return sdkmath.ZeroInt(), errors.New("rpc failure")
	}}

	_, err := calc.LPRate(context.Background(), pool, 0, types.OneUnit)
	require.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestLPRateCoinLookupFailure(t *testing.T) {
	calc := newTestCalculator(t)
	pool := &stubPool{coinErr: errors.New("rpc failure"), withdrawFn: proportional(types.OneUnit)}

	_, err := calc.LPRate(context.Background(), pool, 0, types.OneUnit)
	require.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestNewCalculatorRejectsZeroToken(t *testing.T) {
	_, err := NewCalculator(common.Address{})
	require.Error(t, err)
}
