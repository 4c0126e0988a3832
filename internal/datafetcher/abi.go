/*

On-chain read providers. Everything here is a synchronous eth_call against
current state; there are no retries and no fallback values, since a default
answer for a failed read would silently corrupt voting power downstream.

*/

package datafetcher

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/squid-dao/census/internal/logger"
)

var fetcherLogger = logger.GetForComponent("datafetcher")

// ContractCaller is the slice of the eth client the providers need. Satisfied
// by *ethclient.Client; tests substitute deterministic fakes.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

const erc20ABIJSON = `[
	{"name":"balanceOf","type":"function","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

const twoPoolABIJSON = `[
	{"name":"price_oracle","type":"function","stateMutability":"view",
	 "inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"name":"calc_withdraw_one_coin","type":"function","stateMutability":"view",
	 "inputs":[{"name":"token_amount","type":"uint256"},{"name":"i","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"name":"coins","type":"function","stateMutability":"view",
	 "inputs":[{"name":"arg0","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]}
]`

const triPoolABIJSON = `[
	{"name":"price_oracle","type":"function","stateMutability":"view",
	 "inputs":[{"name":"k","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

var (
	erc20ABI   = mustParseABI(erc20ABIJSON)
	twoPoolABI = mustParseABI(twoPoolABIJSON)
	triPoolABI = mustParseABI(triPoolABIJSON)
)

// mustParseABI parses a compile-time ABI constant; a failure is a programming
// error, not a runtime condition.
func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic("invalid embedded ABI: " + err.Error())
	}
	return parsed
}
