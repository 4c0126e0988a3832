package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// CurveTwoPool reads a two-coin Curve-style pool: scalar spot price from its
// internal oracle, single-sided withdrawal quotes, and coin identities.
// Implements types.TwoAssetPool.
type CurveTwoPool struct {
	caller ContractCaller
	pool   common.Address
}

// NewCurveTwoPool creates a reader for the given pool contract.
func NewCurveTwoPool(caller ContractCaller, pool common.Address) (*CurveTwoPool, error) {
	if caller == nil {
		return nil, errors.New("contract caller cannot be nil")
	}
	if pool == (common.Address{}) {
		return nil, errors.New("pool address cannot be zero")
	}
	return &CurveTwoPool{caller: caller, pool: pool}, nil
}

// Address returns the pool contract address.
func (p *CurveTwoPool) Address() common.Address {
	return p.pool
}

// SpotPrice returns the pool's internal price oracle value.
func (p *CurveTwoPool) SpotPrice(ctx context.Context) (sdkmath.Int, error) {
	data, err := twoPoolABI.Pack("price_oracle")
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("packing price_oracle call: %w", err)
	}

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &p.pool, Data: data}, nil)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("price_oracle call to %s: %w", p.pool.Hex(), err)
	}

	price, err := unpackUint256(twoPoolABI, "price_oracle", out)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("decoding price_oracle result from %s: %w", p.pool.Hex(), err)
	}
	return price, nil
}

// CalcWithdrawOneCoin simulates redeeming quantity LP tokens entirely into the
// coin at index and returns the amount obtained.
func (p *CurveTwoPool) CalcWithdrawOneCoin(ctx context.Context, quantity sdkmath.Int, index int) (sdkmath.Int, error) {
	if quantity.IsNil() || quantity.IsNegative() {
		return sdkmath.ZeroInt(), errors.New("withdrawal quantity must be non-negative")
	}
	if index < 0 {
		return sdkmath.ZeroInt(), errors.New("coin index cannot be negative")
	}

	data, err := twoPoolABI.Pack("calc_withdraw_one_coin", quantity.BigInt(), big.NewInt(int64(index)))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("packing calc_withdraw_one_coin call: %w", err)
	}

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &p.pool, Data: data}, nil)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("calc_withdraw_one_coin call to %s: %w", p.pool.Hex(), err)
	}

	amount, err := unpackUint256(twoPoolABI, "calc_withdraw_one_coin", out)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("decoding calc_withdraw_one_coin result from %s: %w", p.pool.Hex(), err)
	}

	fetcherLogger.Debug().
		Str("pool", p.pool.Hex()).
		Str("quantity", quantity.String()).
		Int("index", index).
		Str("out", amount.String()).
		Msg("Simulated single-sided withdrawal")

	return amount, nil
}

// Coin returns the address of the pool's coin at the given index.
func (p *CurveTwoPool) Coin(ctx context.Context, index int) (common.Address, error) {
	if index < 0 {
		return common.Address{}, errors.New("coin index cannot be negative")
	}

	data, err := twoPoolABI.Pack("coins", big.NewInt(int64(index)))
	if err != nil {
		return common.Address{}, fmt.Errorf("packing coins call: %w", err)
	}

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &p.pool, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("coins call to %s: %w", p.pool.Hex(), err)
	}

	results, err := twoPoolABI.Unpack("coins", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("decoding coins result from %s: %w", p.pool.Hex(), err)
	}
	if len(results) != 1 {
		return common.Address{}, fmt.Errorf("expected one return value, got %d", len(results))
	}
	coin, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("coins return value is not an address")
	}
	return coin, nil
}

// CurveTriPool reads a three-coin pool whose price oracle is indexed by coin
// slot. Implements types.ThreeAssetPool.
type CurveTriPool struct {
	caller ContractCaller
	pool   common.Address
}

// NewCurveTriPool creates a reader for the given pool contract.
func NewCurveTriPool(caller ContractCaller, pool common.Address) (*CurveTriPool, error) {
	if caller == nil {
		return nil, errors.New("contract caller cannot be nil")
	}
	if pool == (common.Address{}) {
		return nil, errors.New("pool address cannot be zero")
	}
	return &CurveTriPool{caller: caller, pool: pool}, nil
}

// SpotPriceAt returns the pool's price oracle value for the coin at slot k.
func (p *CurveTriPool) SpotPriceAt(ctx context.Context, k int) (sdkmath.Int, error) {
	if k < 0 {
		return sdkmath.ZeroInt(), errors.New("price index cannot be negative")
	}

	data, err := triPoolABI.Pack("price_oracle", big.NewInt(int64(k)))
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("packing price_oracle call: %w", err)
	}

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &p.pool, Data: data}, nil)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("price_oracle call to %s: %w", p.pool.Hex(), err)
	}

	price, err := unpackUint256(triPoolABI, "price_oracle", out)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("decoding price_oracle result from %s: %w", p.pool.Hex(), err)
	}
	return price, nil
}
