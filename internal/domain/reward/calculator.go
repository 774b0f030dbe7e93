package reward

import (
	"math"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// floatTolerance absorbs accumulation error when comparing rewards.
const floatTolerance = 1e-9

// unitValue is the reward earned per dollar at the given rate:
// rate/100 for cashback, rate×milesRate for miles.
func unitValue(kind catalog.Kind, rate, milesRate float64) float64 {
	if kind == catalog.KindMiles {
		return rate * milesRate
	}
	return rate / 100
}

// lineReward computes the reward for amount of spend at rate.
func lineReward(kind catalog.Kind, amount, rate, milesRate float64) float64 {
	return amount * unitValue(kind, rate, milesRate)
}

// breakdown accumulates the lines of one tier evaluation. earned is
// the sum of line rewards after per-category and group caps; uncapped
// is the hypothetical total with every cap lifted; headroom tracks the
// smallest remaining distance (in reward units) to a cap that has not
// bound yet.
type breakdown struct {
	lines    []Line
	earned   float64
	uncapped float64
	headroom float64
}

func newBreakdown() *breakdown {
	return &breakdown{headroom: math.Inf(1)}
}

func (b *breakdown) add(c spend.Category, amount, rate, reward float64) {
	b.lines = append(b.lines, Line{Category: c, Amount: amount, Rate: rate, Reward: reward})
	b.earned += reward
}

// noteHeadroom records remaining room under a cap that did not bind.
func (b *breakdown) noteHeadroom(room float64) {
	if room >= 0 && room < b.headroom {
		b.headroom = room
	}
}

// cappedCategoryLine applies a single rate entry's own cap to one
// category and appends the resulting line. A cap amount without a
// valid cap type degrades to no cap at all. Returns the reward earned.
func (b *breakdown) cappedCategoryLine(kind catalog.Kind, c spend.Category, amount float64, r catalog.Rate, milesRate float64) float64 {
	raw := lineReward(kind, amount, r.Value, milesRate)
	reward := raw
	switch {
	case r.CapAmount <= 0:
		// uncapped
	case r.CapType == catalog.CapEarned:
		if raw > r.CapAmount {
			reward = r.CapAmount
		} else {
			b.noteHeadroom(r.CapAmount - raw)
		}
	case r.CapType == catalog.CapSpent:
		if amount > r.CapAmount {
			reward = lineReward(kind, r.CapAmount, r.Value, milesRate)
		} else {
			b.noteHeadroom(lineReward(kind, r.CapAmount-amount, r.Value, milesRate))
		}
	default:
		// cap amount without a cap type: treat the cap as absent
	}
	b.add(c, amount, r.Value, reward)
	return reward
}

// defaultBreakdown applies each category's tier rate independently —
// base rate for uncategorized spend — then settles shared cap groups
// with a proportional scale-down that preserves each member's share.
func defaultBreakdown(card catalog.Card, tier catalog.Tier, vec spend.Vector, milesRate float64, _ evalConfig) (*breakdown, error) {
	bd := newBreakdown()

	// Shared-group bookkeeping: member line indexes, group cap, and
	// insertion order for deterministic settlement.
	groupLines := map[string][]int{}
	groupCaps := map[string]float64{}
	var groupOrder []string

	for _, c := range spend.All() {
		amt := vec.Amount(c)
		if amt == 0 {
			continue
		}
		r, ok := tier.RateFor(c)
		switch {
		case ok && r.Value > 0:
			raw := lineReward(card.Kind, amt, r.Value, milesRate)
			bd.uncapped += raw
			if r.CapGroup != "" {
				if _, seen := groupLines[r.CapGroup]; !seen {
					groupOrder = append(groupOrder, r.CapGroup)
				}
				bd.add(c, amt, r.Value, raw)
				groupLines[r.CapGroup] = append(groupLines[r.CapGroup], len(bd.lines)-1)
				if _, have := groupCaps[r.CapGroup]; !have && r.CapAmount > 0 && r.CapType == catalog.CapEarned {
					groupCaps[r.CapGroup] = r.CapAmount
				}
				continue
			}
			bd.cappedCategoryLine(card.Kind, c, amt, r, milesRate)
		case ok:
			// Explicit zero rate excludes the category entirely.
		case tier.BaseRate > 0:
			raw := lineReward(card.Kind, amt, tier.BaseRate, milesRate)
			bd.uncapped += raw
			bd.add(c, amt, tier.BaseRate, raw)
		}
	}

	// Settle shared cap groups: scale every member by cap/sum so each
	// category keeps its relative share exactly. A group without a cap
	// row is a misconfiguration and degrades to uncapped.
	for _, g := range groupOrder {
		cap, ok := groupCaps[g]
		if !ok {
			continue
		}
		var sum float64
		for _, i := range groupLines[g] {
			sum += bd.lines[i].Reward
		}
		if sum <= cap {
			bd.noteHeadroom(cap - sum)
			continue
		}
		scale := cap / sum
		for _, i := range groupLines[g] {
			scaled := bd.lines[i].Reward * scale
			bd.earned -= bd.lines[i].Reward - scaled
			bd.lines[i].Reward = scaled
		}
	}

	return bd, nil
}
