package config

import (
	"errors"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Contract address configuration loaded from environment variables.
// These identify the base token, the USD reference pool, and the two LP
// families (pool + LP token + staked/wrapped variants) the census values.
var (
	// BaseToken is the governance token voting power is denominated in.
	BaseToken common.Address

	// ReferencePool is the three-asset pool supplying the quote-currency USD price.
	ReferencePool common.Address
	// QuotePriceIndex is the coin slot of the quote currency inside ReferencePool.
	QuotePriceIndex int

	// FamilyAPool is the base/quote two-asset pool.
	FamilyAPool common.Address
	// FamilyABaseIndex is the base token's coin slot inside FamilyAPool.
	FamilyABaseIndex int
	// FamilyALPToken is the pool's LP token.
	FamilyALPToken common.Address
	// FamilyAVariants are staked/wrapped forms of the LP token, up to three.
	FamilyAVariants []common.Address

	// FamilyBPool is the secondary two-asset pool, priced against the base token.
	FamilyBPool common.Address
	// FamilyBBaseIndex is the base token's coin slot inside FamilyBPool.
	FamilyBBaseIndex int
	// FamilyBLPToken is the pool's LP token.
	FamilyBLPToken common.Address
	// FamilyBVariants are staked/wrapped forms of the LP token, up to three.
	FamilyBVariants []common.Address
)

// loadAddressConfig loads token and pool addresses from environment variables.
// This function is called by LoadConfig() in General.go.
func loadAddressConfig() error {
	log.Info().Msg("Loading address configuration from environment variables...")

	var err error

	BaseToken, err = getEnvAsAddress("BASE_TOKEN_ADDRESS")
	if err != nil {
		return err
	}

	ReferencePool, err = getEnvAsAddress("REFERENCE_POOL_ADDRESS")
	if err != nil {
		return err
	}

	QuotePriceIndex, err = getEnvAsInt("QUOTE_PRICE_INDEX")
	if err != nil {
		return err
	}

	FamilyAPool, err = getEnvAsAddress("FAMILY_A_POOL_ADDRESS")
	if err != nil {
		return err
	}

	FamilyABaseIndex, err = getEnvAsInt("FAMILY_A_BASE_INDEX")
	if err != nil {
		return err
	}

	FamilyALPToken, err = getEnvAsAddress("FAMILY_A_LP_TOKEN_ADDRESS")
	if err != nil {
		return err
	}

	FamilyAVariants, err = getEnvAsAddressList("FAMILY_A_VARIANT_ADDRESSES")
	if err != nil {
		return err
	}

	FamilyBPool, err = getEnvAsAddress("FAMILY_B_POOL_ADDRESS")
	if err != nil {
		return err
	}

	FamilyBBaseIndex, err = getEnvAsInt("FAMILY_B_BASE_INDEX")
	if err != nil {
		return err
	}

	FamilyBLPToken, err = getEnvAsAddress("FAMILY_B_LP_TOKEN_ADDRESS")
	if err != nil {
		return err
	}

	FamilyBVariants, err = getEnvAsAddressList("FAMILY_B_VARIANT_ADDRESSES")
	if err != nil {
		return err
	}

	log.Debug().
		Str("BaseToken", BaseToken.Hex()).
		Str("ReferencePool", ReferencePool.Hex()).
		Int("FamilyAVariants", len(FamilyAVariants)).
		Int("FamilyBVariants", len(FamilyBVariants)).
		Msg("Address configuration loaded successfully.")

	return nil
}

// getEnvAsAddress retrieves an environment variable as a checksummed EVM address.
func getEnvAsAddress(key string) (common.Address, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(valueStr) {
		return common.Address{}, errors.New("environment variable " + key + " must be a valid address, got: " + valueStr)
	}
	addr := common.HexToAddress(valueStr)
	if addr == (common.Address{}) {
		return common.Address{}, errors.New("environment variable " + key + " cannot be the zero address")
	}
	return addr, nil
}

// getEnvAsAddressList retrieves an environment variable as a comma-separated
// address list. An empty or unset variable yields an empty list; at most three
// entries are accepted.
func getEnvAsAddressList(key string) ([]common.Address, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return nil, nil
	}

	parts := strings.Split(valueStr, ",")
	if len(parts) > 3 {
		return nil, errors.New("environment variable " + key + " accepts at most three addresses")
	}

	addrs := make([]common.Address, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !common.IsHexAddress(part) {
			return nil, errors.New("environment variable " + key + " contains an invalid address: " + part)
		}
		addr := common.HexToAddress(part)
		if addr == (common.Address{}) {
			return nil, errors.New("environment variable " + key + " contains the zero address")
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
