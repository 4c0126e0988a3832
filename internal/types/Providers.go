/*

Interfaces for the external collaborators the census reads from. Every call is a
synchronous read of current chain state; implementations live in the datafetcher
package and tests substitute deterministic stubs.

*/

package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// BalanceProvider reports a holder's balance of one token.
type BalanceProvider interface {
	// BalanceOf returns the holder's current balance, 18-decimal fixed point.
	BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error)
}

// TwoAssetPool is a two-coin pool exposing a scalar spot price, a simulated
// single-sided withdrawal quote, and the identity of its coins.
type TwoAssetPool interface {
	// SpotPrice returns the pool's current internal exchange rate between its
	// two coins, 18-decimal fixed point. Zero means the price is unavailable.
	SpotPrice(ctx context.Context) (sdkmath.Int, error)

	// CalcWithdrawOneCoin returns the amount of the coin at index obtainable by
	// redeeming quantity LP tokens entirely into that coin.
	CalcWithdrawOneCoin(ctx context.Context, quantity sdkmath.Int, index int) (sdkmath.Int, error)

	// Coin returns the address of the pool's coin at the given index.
	Coin(ctx context.Context, index int) (common.Address, error)
}

// ThreeAssetPool is a three-coin pool whose spot price is indexed by coin slot.
// Used as the quote-currency USD reference.
type ThreeAssetPool interface {
	// SpotPriceAt returns the pool's current price for the coin at index k,
	// 18-decimal fixed point. Zero means the price is unavailable.
	SpotPriceAt(ctx context.Context, k int) (sdkmath.Int, error)
}
