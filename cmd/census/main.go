package main

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/squid-dao/census/internal/census"
	"github.com/squid-dao/census/internal/config"
	"github.com/squid-dao/census/internal/datafetcher"
	"github.com/squid-dao/census/internal/equivalence"
	"github.com/squid-dao/census/internal/logger"
	"github.com/squid-dao/census/internal/oracle"
	"github.com/squid-dao/census/internal/types"
	"github.com/squid-dao/census/internal/web"
)

// main is the entry point for the census service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Census service starting...")

	// Initialize node connection
	client, err := ethclient.Dial(config.NodeRPC)
	if err != nil {
		log.Fatal().Err(err).Str("endpoint", config.NodeRPC).Msg("Node connection error")
	}
	defer client.Close()
	log.Info().Str("endpoint", config.NodeRPC).Msg("Node connected")

	// --- 2. Provider Wiring ---
	directBalance, err := datafetcher.NewERC20Balance(client, config.BaseToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create base token balance provider")
	}

	referencePool, err := datafetcher.NewCurveTriPool(client, config.ReferencePool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create reference pool reader")
	}

	poolA, err := datafetcher.NewCurveTwoPool(client, config.FamilyAPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create family A pool reader")
	}
	poolB, err := datafetcher.NewCurveTwoPool(client, config.FamilyBPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create family B pool reader")
	}

	familyA, err := buildFamily(client, types.FamilyA, poolA, config.FamilyABaseIndex, config.FamilyALPToken, config.FamilyAVariants)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire family A")
	}
	familyB, err := buildFamily(client, types.FamilyB, poolB, config.FamilyBBaseIndex, config.FamilyBLPToken, config.FamilyBVariants)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire family B")
	}

	// --- 3. Core Component Wiring ---
	composer, err := oracle.NewComposer(referencePool, config.QuotePriceIndex, poolA, poolB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create price composer")
	}

	calculator, err := equivalence.NewCalculator(config.BaseToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create equivalence calculator")
	}

	dustEngine, err := equivalence.NewEngine(composer, calculator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create dust engine")
	}

	censusInstance, err := census.New(census.Config{
		DirectBalance: directBalance,
		FamilyA:       familyA,
		FamilyB:       familyB,
		Composer:      composer,
		Calculator:    calculator,
		DustEngine:    dustEngine,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create census instance")
	}

	// --- 4. Serve the Query API ---
	ping := func(ctx context.Context) error {
		_, err := client.ChainID(ctx)
		return err
	}

	webServer, err := web.NewWebServer(config.WebPort, censusInstance, ping)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web server")
	}

	log.Info().Str("port", config.WebPort).Msg("Serving census query API")
	if err := webServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("Web server stopped")
	}
}

// buildFamily assembles one LP family: the pool, the base token's slot inside
// it, and balance providers for the LP token plus its staked/wrapped variants.
func buildFamily(client *ethclient.Client, id types.FamilyID, pool types.TwoAssetPool, baseIndex int, lpToken common.Address, variants []common.Address) (*types.LPFamily, error) {
	sources := make([]types.BalanceProvider, 0, 1+len(variants))

	direct, err := datafetcher.NewERC20Balance(client, lpToken)
	if err != nil {
		return nil, err
	}
	sources = append(sources, direct)

	for _, variant := range variants {
		provider, err := datafetcher.NewERC20Balance(client, variant)
		if err != nil {
			return nil, err
		}
		sources = append(sources, provider)
	}

	family := &types.LPFamily{
		ID:        id,
		Pool:      pool,
		BaseToken: config.BaseToken,
		BaseIndex: baseIndex,
		Sources:   sources,
	}
	if err := family.Validate(); err != nil {
		return nil, err
	}
	return family, nil
}
