package datafetcher

import (
	"context"
	"errors"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr  = common.HexToAddress("0x6e58089d8E8f664823d26454f49A5A0f2fF697Fe")
	poolAddr   = common.HexToAddress("0x277fa53c8a53c880e0625c92c92a62a9f60f3f04")
	holderAddr = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

// fakeCaller returns a canned ABI-encoded word per call and records the
// call data it received.
type fakeCaller struct {
	out      []byte
	err      error
	lastCall ethereum.CallMsg
}

func (f *fakeCaller) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.lastCall = call
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func encodeWord(value *big.Int) []byte {
	return common.LeftPadBytes(value.Bytes(), 32)
}

func TestERC20BalanceOf(t *testing.T) {
	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	caller := &fakeCaller{out: encodeWord(want)}

	provider, err := NewERC20Balance(caller, tokenAddr)
	require.NoError(t, err)

	balance, err := provider.BalanceOf(context.Background(), holderAddr)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntFromBigInt(want), balance)
	require.Equal(t, tokenAddr, *caller.lastCall.To)
	// balanceOf selector plus the padded holder argument.
	require.Len(t, caller.lastCall.Data, 4+32)
}

func TestERC20BalanceOfCallError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("rpc failure")}

	provider, err := NewERC20Balance(caller, tokenAddr)
	require.NoError(t, err)

	_, err = provider.BalanceOf(context.Background(), holderAddr)
	require.Error(t, err)
}

func TestCurveTwoPoolSpotPrice(t *testing.T) {
	want := new(big.Int).Mul(big.NewInt(3), new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	caller := &fakeCaller{out: encodeWord(want)}

	pool, err := NewCurveTwoPool(caller, poolAddr)
	require.NoError(t, err)

	price, err := pool.SpotPrice(context.Background())
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntFromBigInt(want), price)
	require.Equal(t, poolAddr, *caller.lastCall.To)
}

func TestCurveTwoPoolCalcWithdrawOneCoin(t *testing.T) {
	want := big.NewInt(2_520_000_000_000_000)
	caller := &fakeCaller{out: encodeWord(want)}

	pool, err := NewCurveTwoPool(caller, poolAddr)
	require.NoError(t, err)

	out, err := pool.CalcWithdrawOneCoin(context.Background(), sdkmath.NewIntWithDecimal(2, 15), 0)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntFromBigInt(want), out)
	// Selector plus quantity and index words.
	require.Len(t, caller.lastCall.Data, 4+64)
}

func TestCurveTwoPoolCalcWithdrawRejectsNegative(t *testing.T) {
	caller := &fakeCaller{out: encodeWord(big.NewInt(0))}

	pool, err := NewCurveTwoPool(caller, poolAddr)
	require.NoError(t, err)

	_, err = pool.CalcWithdrawOneCoin(context.Background(), sdkmath.NewInt(-1), 0)
	require.Error(t, err)
	_, err = pool.CalcWithdrawOneCoin(context.Background(), sdkmath.OneInt(), -1)
	require.Error(t, err)
}

func TestCurveTwoPoolCoin(t *testing.T) {
	caller := &fakeCaller{out: common.LeftPadBytes(tokenAddr.Bytes(), 32)}

	pool, err := NewCurveTwoPool(caller, poolAddr)
	require.NoError(t, err)

	coin, err := pool.Coin(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, tokenAddr, coin)
}

func TestCurveTriPoolSpotPriceAt(t *testing.T) {
	want := new(big.Int).Mul(big.NewInt(2000), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	caller := &fakeCaller{out: encodeWord(want)}

	pool, err := NewCurveTriPool(caller, poolAddr)
	require.NoError(t, err)

	price, err := pool.SpotPriceAt(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewIntFromBigInt(want), price)
}

func TestConstructorsRejectBadWiring(t *testing.T) {
	caller := &fakeCaller{}

	_, err := NewERC20Balance(nil, tokenAddr)
	require.Error(t, err)
	_, err = NewERC20Balance(caller, common.Address{})
	require.Error(t, err)
	_, err = NewCurveTwoPool(nil, poolAddr)
	require.Error(t, err)
	_, err = NewCurveTriPool(caller, common.Address{})
	require.Error(t, err)
}
