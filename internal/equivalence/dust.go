package equivalence

import (
	"context"
	"errors"

	sdkmath "cosmossdk.io/math"
	"github.com/squid-dao/census/internal/oracle"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/utils"
)

// Engine converts the fixed USD dust floor into an LP-token-unit floor using
// live prices. A fixed wei floor loses meaning as the token price moves; tying
// it to a USD reference keeps "too small to value" economically stable.
type Engine struct {
	composer *oracle.Composer
	calc     *Calculator
}

// NewEngine wires the dust engine to its price sources.
func NewEngine(composer *oracle.Composer, calc *Calculator) (*Engine, error) {
	if composer == nil {
		return nil, errors.New("composer cannot be nil")
	}
	if calc == nil {
		return nil, errors.New("calculator cannot be nil")
	}
	return &Engine{composer: composer, calc: calc}, nil
}

// MinUnitsToValue returns the minimum LP-token quantity worth valuing for the
// family: the USD dust floor divided by the LP unit's current USD price. When
// any stage of the price chain is unavailable the static MinLPThreshold floor
// is used instead.
func (e *Engine) MinUnitsToValue(ctx context.Context, family *types.LPFamily) (sdkmath.Int, error) {
	rate, err := e.calc.LPRate(ctx, family.Pool, family.BaseIndex, types.OneUnit)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	baseUSD, err := e.composer.FamilyAUSDPrice(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	perUnitUSD, err := e.composer.ComposedPrice(rate, baseUSD)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if perUnitUSD.IsZero() {
		equivLogger.Debug().
			Str("family", string(family.ID)).
			Msg("LP unit price unavailable, falling back to static dust floor")
		return types.MinLPThreshold, nil
	}

	return utils.ScaledMulDiv(types.USDDustFloor, types.OneUnit, perUnitUSD)
}
