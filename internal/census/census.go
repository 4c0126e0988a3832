/*

The census core: assembles a holder's voting power from direct base-token
holdings plus the base-token equivalent of two LP families. Every query is a
pure function of current external state; nothing is cached or mutated, so
concurrent queries need no coordination.

*/

package census

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/squid-dao/census/internal/equivalence"
	"github.com/squid-dao/census/internal/logger"
	"github.com/squid-dao/census/internal/oracle"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/utils"
)

// Census computes voting power for holders. All fields are fixed at
// construction and never mutated.
type Census struct {
	logger   zerolog.Logger
	direct   types.BalanceProvider
	familyA  *types.LPFamily
	familyB  *types.LPFamily
	composer *oracle.Composer
	calc     *equivalence.Calculator
	dust     *equivalence.Engine
}

// Config holds the dependencies for creating a new Census instance.
type Config struct {
	DirectBalance types.BalanceProvider
	FamilyA       *types.LPFamily
	FamilyB       *types.LPFamily
	Composer      *oracle.Composer
	Calculator    *equivalence.Calculator
	DustEngine    *equivalence.Engine
}

// New creates a Census with dependency injection.
func New(cfg Config) (*Census, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("census configuration validation failed: %w", err)
	}

	c := &Census{
		logger:   logger.GetForComponent("census_core"),
		direct:   cfg.DirectBalance,
		familyA:  cfg.FamilyA,
		familyB:  cfg.FamilyB,
		composer: cfg.Composer,
		calc:     cfg.Calculator,
		dust:     cfg.DustEngine,
	}

	c.logger.Info().Msg("Census instance created successfully")
	return c, nil
}

// validateConfig validates the census configuration.
func validateConfig(cfg Config) error {
	if cfg.DirectBalance == nil {
		return fmt.Errorf("direct balance provider cannot be nil")
	}
	if cfg.FamilyA == nil || cfg.FamilyB == nil {
		return fmt.Errorf("both LP families must be configured")
	}
	if err := cfg.FamilyA.Validate(); err != nil {
		return err
	}
	if err := cfg.FamilyB.Validate(); err != nil {
		return err
	}
	if cfg.Composer == nil {
		return fmt.Errorf("price composer cannot be nil")
	}
	if cfg.Calculator == nil {
		return fmt.Errorf("equivalence calculator cannot be nil")
	}
	if cfg.DustEngine == nil {
		return fmt.Errorf("dust engine cannot be nil")
	}
	return nil
}

// family resolves a family selector.
func (c *Census) family(id types.FamilyID) (*types.LPFamily, error) {
	switch id {
	case types.FamilyA:
		return c.familyA, nil
	case types.FamilyB:
		return c.familyB, nil
	default:
		return nil, fmt.Errorf("unknown LP family %q", id)
	}
}

// validateHolder rejects the zero address at the boundary.
func validateHolder(holder common.Address) error {
	if holder == (common.Address{}) {
		return types.ErrInvalidHolder
	}
	return nil
}

// DirectBalance returns the holder's raw base-token balance.
func (c *Census) DirectBalance(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	if err := validateHolder(holder); err != nil {
		return sdkmath.ZeroInt(), err
	}

	bal, err := c.direct.BalanceOf(ctx, holder)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: base token balance: %w", types.ErrProviderUnavailable, err)
	}
	if bal.IsNil() || bal.IsNegative() {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: provider returned an invalid balance", types.ErrProviderUnavailable)
	}
	return bal, nil
}

// FamilyBalance sums the holder's balance across the family's LP token and its
// staked/wrapped variants. All sources count equally; they are fungible claims
// on the same pool.
func (c *Census) FamilyBalance(ctx context.Context, id types.FamilyID, holder common.Address) (sdkmath.Int, error) {
	if err := validateHolder(holder); err != nil {
		return sdkmath.ZeroInt(), err
	}
	family, err := c.family(id)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return c.familyBalance(ctx, family, holder)
}

func (c *Census) familyBalance(ctx context.Context, family *types.LPFamily, holder common.Address) (sdkmath.Int, error) {
	total := sdkmath.ZeroInt()
	for _, src := range family.Sources {
		bal, err := src.BalanceOf(ctx, holder)
		if err != nil {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: family %s balance: %w", types.ErrProviderUnavailable, family.ID, err)
		}
		if bal.IsNil() || bal.IsNegative() {
			return sdkmath.ZeroInt(), fmt.Errorf("%w: provider returned an invalid balance", types.ErrProviderUnavailable)
		}
		total, err = utils.CheckedAdd(total, bal)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
	}
	return total, nil
}

// FamilyValueInBase values the holder's whole family position in base-token
// units. Positions under the USD dust threshold are worth zero. The rate is
// computed at the holder's actual balance, not a fixed probe, so the quantity
// being monetized and the quantity being priced are the same one.
func (c *Census) FamilyValueInBase(ctx context.Context, id types.FamilyID, holder common.Address) (sdkmath.Int, error) {
	if err := validateHolder(holder); err != nil {
		return sdkmath.ZeroInt(), err
	}
	family, err := c.family(id)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return c.familyValueInBase(ctx, family, holder)
}

func (c *Census) familyValueInBase(ctx context.Context, family *types.LPFamily, holder common.Address) (sdkmath.Int, error) {
	balance, err := c.familyBalance(ctx, family, holder)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if balance.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	minUnits, err := c.dust.MinUnitsToValue(ctx, family)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if balance.LT(minUnits) {
		return sdkmath.ZeroInt(), nil
	}

	rate, err := c.calc.LPRate(ctx, family.Pool, family.BaseIndex, balance)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if rate.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	return utils.ScaledMulDiv(balance, rate, types.OneUnit)
}

// TotalVotingPower returns the holder's full voting power: direct base-token
// balance plus both LP family equivalents.
func (c *Census) TotalVotingPower(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	if err := validateHolder(holder); err != nil {
		return sdkmath.ZeroInt(), err
	}

	queryLogger := c.logger.With().Str("query_id", uuid.New().String()).Str("holder", holder.Hex()).Logger()
	queryLogger.Debug().Msg("Computing total voting power")

	direct, err := c.DirectBalance(ctx, holder)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	valueA, err := c.familyValueInBase(ctx, c.familyA, holder)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	valueB, err := c.familyValueInBase(ctx, c.familyB, holder)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	total, err := utils.CheckedAdd(direct, valueA)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	total, err = utils.CheckedAdd(total, valueB)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	queryLogger.Debug().
		Str("direct", direct.String()).
		Str("familyA", valueA.String()).
		Str("familyB", valueB.String()).
		Str("total", total.String()).
		Msg("Voting power computed")

	return total, nil
}

// BaseQuotePrice returns the quote currency's USD price.
func (c *Census) BaseQuotePrice(ctx context.Context) (sdkmath.Int, error) {
	return c.composer.BaseQuotePrice(ctx)
}

// FamilyAUSDPrice returns the base token's derived USD price.
func (c *Census) FamilyAUSDPrice(ctx context.Context) (sdkmath.Int, error) {
	return c.composer.FamilyAUSDPrice(ctx)
}

// FamilyBUSDPrice returns the secondary token's derived USD price.
func (c *Census) FamilyBUSDPrice(ctx context.Context) (sdkmath.Int, error) {
	return c.composer.FamilyBUSDPrice(ctx)
}

// LPRate returns a family's per-unit base-token rate for the given quantity.
// A nil quantity defaults to one full unit (10^18); quantities above
// MaxQuantity are rejected to bound downstream multiplications.
func (c *Census) LPRate(ctx context.Context, id types.FamilyID, quantity sdkmath.Int) (sdkmath.Int, error) {
	family, err := c.family(id)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	if quantity.IsNil() {
		quantity = types.OneUnit
	}
	if quantity.IsNegative() {
		return sdkmath.ZeroInt(), utils.ErrAmountNegative
	}
	if quantity.GT(types.MaxQuantity) {
		return sdkmath.ZeroInt(), types.ErrQuantityTooLarge
	}

	return c.calc.LPRate(ctx, family.Pool, family.BaseIndex, quantity)
}
