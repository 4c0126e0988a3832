/*

Price composition across pools. One pool prices the base token directly against
the quote currency, the other prices its token against the base token, and the
reference pool supplies the quote currency's USD price. Chaining two of these
spot reads yields a USD price for each family. A zero anywhere in the chain
means "price unavailable" and propagates as zero, never as a division error.

*/

package oracle

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/squid-dao/census/internal/logger"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/utils"
)

var oracleLogger = logger.GetForComponent("price_oracle")

// Composer resolves the three external base prices and composes them into
// derived two-hop prices. Immutable after construction.
type Composer struct {
	reference  types.ThreeAssetPool
	quoteIndex int
	poolA      types.TwoAssetPool
	poolB      types.TwoAssetPool
}

// NewComposer wires the composer to its price sources.
func NewComposer(reference types.ThreeAssetPool, quoteIndex int, poolA, poolB types.TwoAssetPool) (*Composer, error) {
	if reference == nil {
		return nil, errors.New("reference pool cannot be nil")
	}
	if quoteIndex < 0 {
		return nil, errors.New("quote price index cannot be negative")
	}
	if poolA == nil || poolB == nil {
		return nil, errors.New("family pools cannot be nil")
	}
	return &Composer{
		reference:  reference,
		quoteIndex: quoteIndex,
		poolA:      poolA,
		poolB:      poolB,
	}, nil
}

// BaseQuotePrice returns the quote currency's USD price from the reference
// pool. Zero is a valid result meaning the price is currently unavailable.
func (c *Composer) BaseQuotePrice(ctx context.Context) (sdkmath.Int, error) {
	price, err := c.reference.SpotPriceAt(ctx, c.quoteIndex)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: reference pool spot price: %w", types.ErrProviderUnavailable, err)
	}
	if price.IsNil() || price.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: reference pool returned an invalid price", types.ErrProviderUnavailable)
	}
	return price, nil
}

// SpotPrice returns a two-asset pool's internal exchange rate.
func (c *Composer) SpotPrice(ctx context.Context, pool types.TwoAssetPool) (sdkmath.Int, error) {
	price, err := pool.SpotPrice(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool spot price: %w", types.ErrProviderUnavailable, err)
	}
	if price.IsNil() || price.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: pool returned an invalid price", types.ErrProviderUnavailable)
	}
	return price, nil
}

// ComposedPrice chains two 18-decimal prices into one. Short-circuits to zero
// when either factor is zero: multiplying through would only dress up an
// unavailable price as a confident one.
func (c *Composer) ComposedPrice(first, second sdkmath.Int) (sdkmath.Int, error) {
	if first.IsNil() || second.IsNil() {
		return sdkmath.ZeroInt(), utils.ErrAmountNil
	}
	if first.IsZero() || second.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	return utils.ScaledMulDiv(first, second, types.OneUnit)
}

// FamilyAUSDPrice derives the base token's USD price: the base/quote spot from
// pool A multiplied by the quote currency's USD price.
func (c *Composer) FamilyAUSDPrice(ctx context.Context) (sdkmath.Int, error) {
	spot, err := c.SpotPrice(ctx, c.poolA)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	quote, err := c.BaseQuotePrice(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	price, err := c.ComposedPrice(spot, quote)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if price.IsZero() {
		oracleLogger.Warn().Msg("Family A USD price is unavailable")
	}
	return price, nil
}

// FamilyBUSDPrice derives the secondary token's USD price: the secondary pool's
// spot (priced against the base token) multiplied by the base token's USD price.
func (c *Composer) FamilyBUSDPrice(ctx context.Context) (sdkmath.Int, error) {
	spot, err := c.SpotPrice(ctx, c.poolB)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	base, err := c.FamilyAUSDPrice(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	price, err := c.ComposedPrice(spot, base)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if price.IsZero() {
		oracleLogger.Warn().Msg("Family B USD price is unavailable")
	}
	return price, nil
}
