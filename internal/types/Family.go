/*

An LP family groups one pool with every balance source that represents the same
claim on it: the pool's LP token plus its staked and wrapped variants. All of it
is fixed at startup and never mutated.

*/

package types

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// FamilyID selects one of the two configured LP families.
type FamilyID string

const (
	FamilyA FamilyID = "a"
	FamilyB FamilyID = "b"
)

// LPFamily is one pool plus the balance sources that all hold economically
// equivalent claims on it. Sources[0] is the direct LP token; the rest are
// staked/wrapped variants, up to three of them.
type LPFamily struct {
	ID        FamilyID
	Pool      TwoAssetPool
	BaseToken common.Address
	BaseIndex int
	Sources   []BalanceProvider
}

// Validate checks the family's wiring. Called once at startup.
func (f *LPFamily) Validate() error {
	if f.Pool == nil {
		return errors.New("family " + string(f.ID) + ": pool cannot be nil")
	}
	if f.BaseToken == (common.Address{}) {
		return errors.New("family " + string(f.ID) + ": base token cannot be the zero address")
	}
	if f.BaseIndex < 0 {
		return errors.New("family " + string(f.ID) + ": base index cannot be negative")
	}
	if len(f.Sources) == 0 {
		return errors.New("family " + string(f.ID) + ": at least one balance source is required")
	}
	if len(f.Sources) > 4 {
		return errors.New("family " + string(f.ID) + ": at most four balance sources are supported")
	}
	for _, src := range f.Sources {
		if src == nil {
			return errors.New("family " + string(f.ID) + ": balance source cannot be nil")
		}
	}
	return nil
}
