package reward

import (
	"math"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Quote is the marginal value of routing spend in one category to one
// card: PerDollar applies to the first SpendLimit dollars, then
// TailPerDollar to everything beyond. SpendLimit is +Inf when no
// category-level cap exists; tier-level caps are the caller's problem.
type Quote struct {
	PerDollar     float64
	SpendLimit    float64
	TailPerDollar float64
}

// QuoteCategory prices category c on the card under the given tier.
// The vec argument supplies the surrounding spend picture, which
// policies with minimums or top-spend selection need to settle rates;
// SpendLimit counts the dollars of c already present in vec.
func QuoteCategory(card catalog.Card, tier catalog.Tier, vec spend.Vector, c spend.Category, milesRate float64, opts ...EvalOption) Quote {
	cfg := evalConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	base := unitValue(card.Kind, tier.BaseRate, milesRate)

	switch card.Policy {
	case catalog.PolicyTopGroups:
		return quoteTopGroups(card, tier, vec, c, milesRate, cfg, base)
	case catalog.PolicySingleTop:
		if top, ok := topEligibleCategory(tier, vec); ok && c == top {
			r, _ := tier.RateFor(c)
			return flatQuote(unitValue(card.Kind, r.Value, milesRate))
		}
		return flatQuote(base)
	case catalog.PolicyDualBucket:
		return quoteDualBucket(card, vec, c, milesRate, base)
	case catalog.PolicySharedCapTopUp:
		return quoteSharedCap(card, vec, c, milesRate, base)
	default:
		return quoteDefault(card, tier, c, milesRate, base)
	}
}

func flatQuote(per float64) Quote {
	return Quote{PerDollar: per, SpendLimit: math.Inf(1), TailPerDollar: per}
}

func quoteDefault(card catalog.Card, tier catalog.Tier, c spend.Category, milesRate float64, base float64) Quote {
	r, ok := tier.RateFor(c)
	if !ok {
		return flatQuote(base)
	}
	if r.Value <= 0 {
		return flatQuote(0)
	}
	per := unitValue(card.Kind, r.Value, milesRate)
	switch {
	case r.CapAmount <= 0:
		return flatQuote(per)
	case r.CapType == catalog.CapEarned:
		return Quote{PerDollar: per, SpendLimit: r.CapAmount / per}
	case r.CapType == catalog.CapSpent:
		return Quote{PerDollar: per, SpendLimit: r.CapAmount}
	default:
		return flatQuote(per)
	}
}

func quoteTopGroups(card catalog.Card, tier catalog.Tier, vec spend.Vector, c spend.Category, milesRate float64, cfg evalConfig, base float64) Quote {
	gb := card.GroupBonus
	if gb == nil {
		return flatQuote(base)
	}
	chosen, err := chosenGroups(gb, vec, cfg.forcedGroups)
	if err != nil {
		return flatQuote(base)
	}
	for _, g := range gb.Groups {
		for _, m := range g.Members {
			if m != c {
				continue
			}
			if !chosen[g.Name] {
				return flatQuote(base)
			}
			per := unitValue(card.Kind, gb.BonusRate, milesRate)
			if gb.GroupCap <= 0 {
				return flatQuote(per)
			}
			left := gb.GroupCap - vec.SumOf(g.Members)
			if left < 0 {
				left = 0
			}
			return Quote{PerDollar: per, SpendLimit: left + vec.Amount(c), TailPerDollar: base}
		}
	}
	return flatQuote(base)
}

func quoteDualBucket(card catalog.Card, vec spend.Vector, c spend.Category, milesRate float64, base float64) Quote {
	db := card.DualBucket
	if db == nil {
		return flatQuote(base)
	}
	for _, b := range db.Buckets {
		for _, m := range b.Members {
			if m != c {
				continue
			}
			if vec.SumOf(b.Members) < b.MinSpend {
				return flatQuote(base)
			}
			per := unitValue(card.Kind, b.BonusRate, milesRate)
			if b.Cap <= 0 {
				return flatQuote(per)
			}
			left := b.Cap - vec.SumOf(b.Members)
			if left < 0 {
				left = 0
			}
			return Quote{PerDollar: per, SpendLimit: left + vec.Amount(c), TailPerDollar: base}
		}
	}
	return flatQuote(base)
}

func quoteSharedCap(card catalog.Card, vec spend.Vector, c spend.Category, milesRate float64, base float64) Quote {
	sc := card.SharedCap
	if sc == nil {
		return flatQuote(base)
	}
	member := false
	for _, m := range sc.Members {
		if m == c {
			member = true
			break
		}
	}
	if !member {
		return flatQuote(base)
	}
	bonusSpend := vec.SumOf(sc.Members)
	withinCap := bonusSpend
	if sc.SpendCap > 0 {
		withinCap = math.Min(bonusSpend, sc.SpendCap)
	}
	if withinCap+(vec.Total()-bonusSpend) < sc.MinSpend {
		return flatQuote(base)
	}
	per := unitValue(card.Kind, sc.BonusRate, milesRate)
	if sc.SpendCap <= 0 {
		return flatQuote(per)
	}
	left := sc.SpendCap - bonusSpend
	if left < 0 {
		left = 0
	}
	return Quote{PerDollar: per, SpendLimit: left + vec.Amount(c), TailPerDollar: base}
}
