package census

import (
	"context"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/squid-dao/census/internal/utils"
)

// Breakdown is a holder's voting power decomposed into its components.
// Total always equals Direct + FamilyA + FamilyB.
type Breakdown struct {
	Holder  common.Address `json:"holder"`
	Direct  sdkmath.Int    `json:"direct"`
	FamilyA sdkmath.Int    `json:"family_a"`
	FamilyB sdkmath.Int    `json:"family_b"`
	Total   sdkmath.Int    `json:"total"`
}

// HolderPower is one entry of a census report.
type HolderPower struct {
	Holder common.Address `json:"holder"`
	Power  sdkmath.Int    `json:"power"`
}

// Breakdown computes a holder's voting power with its per-component parts.
func (c *Census) Breakdown(ctx context.Context, holder common.Address) (Breakdown, error) {
	if err := validateHolder(holder); err != nil {
		return Breakdown{}, err
	}

	direct, err := c.DirectBalance(ctx, holder)
	if err != nil {
		return Breakdown{}, err
	}
	valueA, err := c.familyValueInBase(ctx, c.familyA, holder)
	if err != nil {
		return Breakdown{}, err
	}
	valueB, err := c.familyValueInBase(ctx, c.familyB, holder)
	if err != nil {
		return Breakdown{}, err
	}

	total, err := utils.CheckedAdd(direct, valueA)
	if err != nil {
		return Breakdown{}, err
	}
	total, err = utils.CheckedAdd(total, valueB)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Holder:  holder,
		Direct:  direct,
		FamilyA: valueA,
		FamilyB: valueB,
		Total:   total,
	}, nil
}

// Report computes voting power for a set of holders and returns them ordered
// by descending power. All holders are validated up front; one bad entry fails
// the whole batch rather than producing a partial census.
func (c *Census) Report(ctx context.Context, holders []common.Address) ([]HolderPower, error) {
	if len(holders) == 0 {
		return nil, fmt.Errorf("holder list cannot be empty")
	}
	for _, holder := range holders {
		if err := validateHolder(holder); err != nil {
			return nil, fmt.Errorf("%w: %s", err, holder.Hex())
		}
	}

	report := make([]HolderPower, 0, len(holders))
	for _, holder := range holders {
		power, err := c.TotalVotingPower(ctx, holder)
		if err != nil {
			return nil, fmt.Errorf("voting power for %s: %w", holder.Hex(), err)
		}
		report = append(report, HolderPower{Holder: holder, Power: power})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].Power.GT(report[j].Power)
	})

	return report, nil
}
