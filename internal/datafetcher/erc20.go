package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ERC20Balance reads a holder's balance of one token contract. Implements
// types.BalanceProvider.
type ERC20Balance struct {
	caller ContractCaller
	token  common.Address
}

// NewERC20Balance creates a balance provider for the given token.
func NewERC20Balance(caller ContractCaller, token common.Address) (*ERC20Balance, error) {
	if caller == nil {
		return nil, errors.New("contract caller cannot be nil")
	}
	if token == (common.Address{}) {
		return nil, errors.New("token address cannot be zero")
	}
	return &ERC20Balance{caller: caller, token: token}, nil
}

// Token returns the token contract address this provider reads.
func (e *ERC20Balance) Token() common.Address {
	return e.token
}

// BalanceOf returns the holder's current token balance.
func (e *ERC20Balance) BalanceOf(ctx context.Context, holder common.Address) (sdkmath.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", holder)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("packing balanceOf call: %w", err)
	}

	out, err := e.caller.CallContract(ctx, ethereum.CallMsg{To: &e.token, Data: data}, nil)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("balanceOf call to %s: %w", e.token.Hex(), err)
	}

	balance, err := unpackUint256(erc20ABI, "balanceOf", out)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("decoding balanceOf result from %s: %w", e.token.Hex(), err)
	}

	fetcherLogger.Debug().
		Str("token", e.token.Hex()).
		Str("holder", holder.Hex()).
		Str("balance", balance.String()).
		Msg("Fetched token balance")

	return balance, nil
}

// unpackUint256 decodes a single uint256 return value into an sdkmath Int.
func unpackUint256(contractABI abi.ABI, method string, out []byte) (sdkmath.Int, error) {
	results, err := contractABI.Unpack(method, out)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if len(results) != 1 {
		return sdkmath.ZeroInt(), fmt.Errorf("expected one return value, got %d", len(results))
	}
	value, ok := results[0].(*big.Int)
	if !ok || value == nil {
		return sdkmath.ZeroInt(), errors.New("return value is not a uint256")
	}
	if value.Sign() < 0 {
		return sdkmath.ZeroInt(), errors.New("return value is negative")
	}
	return sdkmath.NewIntFromBigInt(value), nil
}
