package reward

import (
	"sort"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// tierBasis is the spend against which a tier's minimum is checked:
// total spend for cashback cards, the sum of the tier's bonus-eligible
// categories for miles cards.
func tierBasis(card catalog.Card, tier catalog.Tier, vec spend.Vector) float64 {
	if card.Kind == catalog.KindMiles {
		return vec.SumOf(tier.BonusCategories())
	}
	return vec.Total()
}

// qualifies reports whether the vector meets the tier's minimum spend.
func qualifies(card catalog.Card, tier catalog.Tier, vec spend.Vector) bool {
	return tierBasis(card, tier, vec) >= tier.MinSpend
}

// ascendingTiers returns the card's tiers sorted ascending by minimum
// spend. The sort is stable so equal minimums keep declaration order,
// which makes the "last evaluated wins" tie-break deterministic.
func ascendingTiers(card catalog.Card) []catalog.Tier {
	tiers := make([]catalog.Tier, len(card.Tiers))
	copy(tiers, card.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].MinSpend < tiers[j].MinSpend
	})
	return tiers
}

// SelectTier picks the tier that applies for the vector: the
// highest-minimum tier whose spend basis is met, evaluating ascending
// by minimum spend. When no tier qualifies it returns a synthetic
// fallback carrying only the lowest tier's base rate, and false.
func SelectTier(card catalog.Card, vec spend.Vector) (catalog.Tier, bool) {
	tiers := ascendingTiers(card)
	if len(tiers) == 0 {
		return catalog.Tier{}, false
	}
	selected := -1
	for i, t := range tiers {
		if qualifies(card, t, vec) {
			selected = i
		}
	}
	if selected < 0 {
		return fallbackTier(tiers[0]), false
	}
	return tiers[selected], true
}

// fallbackTier is what a non-qualifying user earns: the lowest tier's
// base rate with every bonus rate stripped.
func fallbackTier(lowest catalog.Tier) catalog.Tier {
	return catalog.Tier{
		Description: "Base rate (minimum spend not met)",
		BaseRate:    lowest.BaseRate,
	}
}
