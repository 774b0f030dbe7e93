package reward

import (
	"fmt"
	"math"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// policyFunc computes the breakdown for one tier under one policy.
type policyFunc func(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, cfg evalConfig) (*breakdown, error)

// resolvePolicy dispatches on the card's declared policy tag.
func resolvePolicy(p catalog.Policy) (policyFunc, error) {
	switch p {
	case catalog.PolicyDefault:
		return defaultBreakdown, nil
	case catalog.PolicyTopGroups:
		return topGroupsBreakdown, nil
	case catalog.PolicySingleTop:
		return singleTopBreakdown, nil
	case catalog.PolicyDualBucket:
		return dualBucketBreakdown, nil
	case catalog.PolicySharedCapTopUp:
		return sharedCapTopUpBreakdown, nil
	default:
		return nil, fmt.Errorf("policy %q: %w", p, ErrUnknownPolicy)
	}
}

// chosenGroups returns the bonus groups the card claims: the forced
// selection when the caller set one (the two-product allocator
// enumerates subsets this way), otherwise the Pick groups with the
// highest spend. Spend ties break toward earlier declaration order.
func chosenGroups(gb *catalog.GroupBonus, vec spend.Vector, forced []string) (map[string]bool, error) {
	chosen := make(map[string]bool, gb.Pick)
	if len(forced) > 0 {
		known := map[string]bool{}
		for _, g := range gb.Groups {
			known[g.Name] = true
		}
		for _, name := range forced {
			if !known[name] {
				return nil, fmt.Errorf("group %q: %w", name, ErrUnknownGroup)
			}
			chosen[name] = true
		}
		return chosen, nil
	}

	idx := make([]int, len(gb.Groups))
	for i := range idx {
		idx[i] = i
	}
	spendOf := func(i int) float64 { return vec.SumOf(gb.Groups[i].Members) }
	// Selection sort keeps the tie-break explicit for a handful of groups.
	for pos := 0; pos < gb.Pick && pos < len(idx); pos++ {
		best := pos
		for j := pos + 1; j < len(idx); j++ {
			if spendOf(idx[j]) > spendOf(idx[best]) {
				best = j
			}
		}
		idx[pos], idx[best] = idx[best], idx[pos]
		chosen[gb.Groups[idx[pos]].Name] = true
	}
	return chosen, nil
}

// topGroupsBreakdown implements the highest-spend-group bonus: the top
// K alias groups earn the bonus rate on up to the group cap of spend
// each; spend above the cap and all non-selected groups earn base rate.
func topGroupsBreakdown(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, cfg evalConfig) (*breakdown, error) {
	gb := card.GroupBonus
	if gb == nil {
		return nil, fmt.Errorf("card %q: top_groups: %w", card.Name, ErrPolicyConfig)
	}
	chosen, err := chosenGroups(gb, vec, cfg.forcedGroups)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", card.Name, err)
	}

	bd := newBreakdown()
	unitBonus := unitValue(card.Kind, gb.BonusRate, milesRate)
	unitBase := unitValue(card.Kind, tier.BaseRate, milesRate)
	grouped := map[spend.Category]bool{}

	for _, g := range gb.Groups {
		capLeft := math.Inf(1)
		if gb.GroupCap > 0 {
			capLeft = gb.GroupCap
		}
		for _, c := range g.Members {
			grouped[c] = true
			amt := vec.Amount(c)
			if amt == 0 {
				continue
			}
			if !chosen[g.Name] {
				bd.uncapped += amt * unitBase
				if tier.BaseRate > 0 {
					bd.add(c, amt, tier.BaseRate, amt*unitBase)
				}
				continue
			}
			bd.uncapped += amt * unitBonus
			bonusAmt := math.Min(amt, capLeft)
			capLeft -= bonusAmt
			if bonusAmt > 0 {
				bd.add(c, bonusAmt, gb.BonusRate, bonusAmt*unitBonus)
			}
			if rest := amt - bonusAmt; rest > 0 && tier.BaseRate > 0 {
				bd.add(c, rest, tier.BaseRate, rest*unitBase)
			}
		}
		if chosen[g.Name] && !math.IsInf(capLeft, 1) {
			bd.noteHeadroom(capLeft * (unitBonus - unitBase))
		}
	}

	for _, c := range spend.All() {
		if grouped[c] {
			continue
		}
		amt := vec.Amount(c)
		if amt == 0 || tier.BaseRate <= 0 {
			continue
		}
		bd.uncapped += amt * unitBase
		bd.add(c, amt, tier.BaseRate, amt*unitBase)
	}
	return bd, nil
}

// singleTopBreakdown implements the single-highest-category bonus: when
// the aggregate spend across the tier's bonus-eligible categories meets
// the tier minimum, only the eligible category with the largest spend
// earns its high rate; everything else earns the flat base rate.
func singleTopBreakdown(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, _ evalConfig) (*breakdown, error) {
	top, _ := topEligibleCategory(tier, vec)

	bd := newBreakdown()
	for _, c := range spend.All() {
		amt := vec.Amount(c)
		if amt == 0 {
			continue
		}
		rate := tier.BaseRate
		if c == top {
			r, _ := tier.RateFor(c)
			rate = r.Value
		}
		if rate <= 0 {
			continue
		}
		reward := lineReward(card.Kind, amt, rate, milesRate)
		bd.uncapped += reward
		bd.add(c, amt, rate, reward)
	}
	return bd, nil
}

// topEligibleCategory returns the bonus-eligible category with the
// largest spend, provided the eligible aggregate clears the tier
// minimum. Ties break toward rate-table order. The empty category
// means every category earns base rate.
func topEligibleCategory(tier catalog.Tier, vec spend.Vector) (spend.Category, bool) {
	eligible := tier.BonusCategories()
	if vec.SumOf(eligible) < tier.MinSpend {
		return "", false
	}
	var top spend.Category
	var topAmt float64
	for _, c := range eligible {
		if amt := vec.Amount(c); amt > topAmt {
			top, topAmt = c, amt
		}
	}
	return top, top != ""
}

// dualBucketBreakdown implements the dual-bucket minimum+cap: each
// bucket independently unlocks its bonus rate by clearing its own
// minimum, capped at its own spend cap; everything else earns base.
func dualBucketBreakdown(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, _ evalConfig) (*breakdown, error) {
	db := card.DualBucket
	if db == nil {
		return nil, fmt.Errorf("card %q: dual_bucket: %w", card.Name, ErrPolicyConfig)
	}

	bd := newBreakdown()
	unitBase := unitValue(card.Kind, tier.BaseRate, milesRate)
	bucketed := map[spend.Category]bool{}

	for _, b := range db.Buckets {
		unitBonus := unitValue(card.Kind, b.BonusRate, milesRate)
		bucketSpend := vec.SumOf(b.Members)
		minMet := bucketSpend >= b.MinSpend
		poolLeft := 0.0
		if minMet {
			poolLeft = math.Inf(1)
			if b.Cap > 0 {
				poolLeft = b.Cap
			}
			bd.uncapped += bucketSpend * unitBonus
		} else {
			bd.uncapped += bucketSpend * unitBase
		}
		for _, c := range b.Members {
			bucketed[c] = true
			amt := vec.Amount(c)
			if amt == 0 {
				continue
			}
			bonusAmt := math.Min(amt, poolLeft)
			poolLeft -= bonusAmt
			if bonusAmt > 0 {
				bd.add(c, bonusAmt, b.BonusRate, bonusAmt*unitBonus)
			}
			if rest := amt - bonusAmt; rest > 0 && tier.BaseRate > 0 {
				bd.add(c, rest, tier.BaseRate, rest*unitBase)
			}
		}
		if minMet && !math.IsInf(poolLeft, 1) {
			bd.noteHeadroom(poolLeft * (unitBonus - unitBase))
		}
	}

	for _, c := range spend.All() {
		if bucketed[c] {
			continue
		}
		amt := vec.Amount(c)
		if amt == 0 || tier.BaseRate <= 0 {
			continue
		}
		bd.uncapped += amt * unitBase
		bd.add(c, amt, tier.BaseRate, amt*unitBase)
	}
	return bd, nil
}

// sharedCapTopUpBreakdown implements the shared-cap bonus group: the
// member categories share one aggregate spend cap for the bonus rate,
// split proportionally; spend beyond the cap and all other categories
// earn base. Non-member spend may top up the required minimum without
// earning the bonus rate itself.
func sharedCapTopUpBreakdown(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, _ evalConfig) (*breakdown, error) {
	sc := card.SharedCap
	if sc == nil {
		return nil, fmt.Errorf("card %q: shared_cap_topup: %w", card.Name, ErrPolicyConfig)
	}

	bd := newBreakdown()
	unitBonus := unitValue(card.Kind, sc.BonusRate, milesRate)
	unitBase := unitValue(card.Kind, tier.BaseRate, milesRate)

	bonusSpend := vec.SumOf(sc.Members)
	withinCap := bonusSpend
	if sc.SpendCap > 0 {
		withinCap = math.Min(bonusSpend, sc.SpendCap)
	}
	nonBonusSpend := vec.Total() - bonusSpend
	// The minimum may be topped up by non-bonus spend; that spend is
	// redirected notionally and never earns the bonus rate.
	minMet := withinCap+nonBonusSpend >= sc.MinSpend

	member := map[spend.Category]bool{}
	for _, c := range sc.Members {
		member[c] = true
	}

	for _, c := range spend.All() {
		amt := vec.Amount(c)
		if amt == 0 {
			continue
		}
		if !member[c] || !minMet {
			if !member[c] || bonusSpend == 0 {
				bd.uncapped += amt * unitBase
			} else {
				bd.uncapped += amt * unitBonus
			}
			if tier.BaseRate > 0 {
				bd.add(c, amt, tier.BaseRate, amt*unitBase)
			}
			continue
		}
		bd.uncapped += amt * unitBonus
		bonusAmt := amt * (withinCap / bonusSpend)
		if bonusAmt > 0 {
			bd.add(c, bonusAmt, sc.BonusRate, bonusAmt*unitBonus)
		}
		if rest := amt - bonusAmt; rest > floatTolerance && tier.BaseRate > 0 {
			bd.add(c, rest, tier.BaseRate, rest*unitBase)
		}
	}
	if minMet && sc.SpendCap > 0 && bonusSpend < sc.SpendCap {
		bd.noteHeadroom((sc.SpendCap - bonusSpend) * (unitBonus - unitBase))
	}
	return bd, nil
}
