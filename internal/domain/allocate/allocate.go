// Package allocate splits one month's spending across two cards to
// maximize the combined reward. The split is greedy per category by
// marginal reward per dollar, with spill-over when a cap runs out of
// headroom, evaluated over every bonus-group selection the cards allow.
package allocate

import (
	"context"
	"fmt"
	"math"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/reward"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Allocation is the outcome of splitting a spend vector across a pair
// of cards: each card's share, its evaluated reward on that share, and
// the combined total.
type Allocation struct {
	ResultA  reward.Result `json:"result_a"`
	ResultB  reward.Result `json:"result_b"`
	SpendA   spend.Vector  `json:"spend_a"`
	SpendB   spend.Vector  `json:"spend_b"`
	Combined float64       `json:"combined"`
}

// Allocator pairs an evaluation engine with the split heuristic.
type Allocator struct {
	engine *reward.Engine
}

// New builds an Allocator backed by the given engine.
func New(engine *reward.Engine) *Allocator {
	return &Allocator{engine: engine}
}

// Split allocates the vector across cardA and cardB and returns the
// best allocation found. The search covers every bonus-group selection
// plan plus the two all-to-one-card splits, so the result is never
// worse than the better card taking everything.
func (a *Allocator) Split(ctx context.Context, cardA, cardB catalog.Card, vec spend.Vector, milesRate float64) (Allocation, error) {
	if err := ctx.Err(); err != nil {
		return Allocation{}, err
	}

	var best Allocation
	haveBest := false
	consider := func(alloc Allocation, err error) error {
		if err != nil {
			return err
		}
		if !haveBest || alloc.Combined > best.Combined+1e-9 {
			best, haveBest = alloc, true
		}
		return nil
	}

	// All-to-one splits anchor the search: whatever the greedy pass
	// does, the combination never loses to a single card.
	if err := consider(a.evaluate(ctx, cardA, cardB, vec, spend.Zero(), milesRate, nil, nil)); err != nil {
		return Allocation{}, err
	}
	if err := consider(a.evaluate(ctx, cardA, cardB, spend.Zero(), vec, milesRate, nil, nil)); err != nil {
		return Allocation{}, err
	}

	for _, groupsA := range groupPlans(cardA) {
		for _, groupsB := range groupPlans(cardB) {
			alloc, err := a.greedySplit(ctx, cardA, cardB, vec, milesRate, groupsA, groupsB)
			if err != nil {
				return Allocation{}, err
			}
			if err := consider(alloc, nil); err != nil {
				return Allocation{}, err
			}
		}
	}
	return best, nil
}

// groupPlans enumerates the bonus-group selections a card can claim:
// every choose-Pick subset for a group-bonus card, or the single nil
// plan for everything else.
func groupPlans(card catalog.Card) [][]string {
	gb := card.GroupBonus
	if card.Policy != catalog.PolicyTopGroups || gb == nil {
		return [][]string{nil}
	}
	names := make([]string, len(gb.Groups))
	for i, g := range gb.Groups {
		names[i] = g.Name
	}
	var plans [][]string
	switch gb.Pick {
	case 1:
		for _, n := range names {
			plans = append(plans, []string{n})
		}
	case 2:
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				plans = append(plans, []string{names[i], names[j]})
			}
		}
	}
	if len(plans) == 0 {
		plans = [][]string{nil}
	}
	return plans
}

// greedySplit routes each category to whichever card pays more per
// dollar, spilling to the other card when a cap exhausts its headroom.
// Tier selection depends on the split and the split depends on the
// tiers, so the pass runs twice: once with tiers derived from the full
// vector, then again with tiers re-derived from the first pass's
// shares. Two passes is an approximation, not a fixed point.
func (a *Allocator) greedySplit(ctx context.Context, cardA, cardB catalog.Card, vec spend.Vector, milesRate float64, groupsA, groupsB []string) (Allocation, error) {
	tierA, _ := reward.SelectTier(cardA, vec)
	tierB, _ := reward.SelectTier(cardB, vec)

	var alloc Allocation
	for pass := 0; pass < 2; pass++ {
		if err := ctx.Err(); err != nil {
			return Allocation{}, err
		}
		splitA, splitB, err := route(cardA, cardB, tierA, tierB, vec, milesRate, groupsA, groupsB)
		if err != nil {
			return Allocation{}, err
		}
		nextA, okA := reward.SelectTier(cardA, splitA)
		nextB, okB := reward.SelectTier(cardB, splitB)
		alloc, err = a.evaluate(ctx, cardA, cardB, splitA, splitB, milesRate, groupsA, groupsB)
		if err != nil {
			return Allocation{}, err
		}
		if okA && nextA.Description == tierA.Description &&
			okB && nextB.Description == tierB.Description {
			break
		}
		tierA, tierB = nextA, nextB
	}
	return alloc, nil
}

// route performs one greedy pass over the categories, largest spend
// first so big-ticket categories claim cap headroom before small ones.
func route(cardA, cardB catalog.Card, tierA, tierB catalog.Tier, vec spend.Vector, milesRate float64, groupsA, groupsB []string) (spend.Vector, spend.Vector, error) {
	amountsA := map[spend.Category]float64{}
	amountsB := map[spend.Category]float64{}
	// Remaining reward headroom under each card's overall tier cap.
	headA := tierHeadroom(cardA, tierA, milesRate)
	headB := tierHeadroom(cardB, tierB, milesRate)

	optsA := quoteOpts(groupsA)
	optsB := quoteOpts(groupsB)

	for _, c := range byDescendingSpend(vec) {
		remaining := vec.Amount(c)
		vecA, err := spend.NewVector(amountsA)
		if err != nil {
			return spend.Vector{}, spend.Vector{}, err
		}
		vecB, err := spend.NewVector(amountsB)
		if err != nil {
			return spend.Vector{}, spend.Vector{}, err
		}
		qA := reward.QuoteCategory(cardA, tierA, vecA, c, milesRate, optsA...)
		qB := reward.QuoteCategory(cardB, tierB, vecB, c, milesRate, optsB...)

		limitA := math.Min(qA.SpendLimit, spendRoom(headA, qA.PerDollar))
		limitB := math.Min(qB.SpendLimit, spendRoom(headB, qB.PerDollar))

		type lane struct {
			per, limit float64
			amounts    map[spend.Category]float64
			head       *float64
		}
		first := lane{qA.PerDollar, limitA, amountsA, &headA}
		second := lane{qB.PerDollar, limitB, amountsB, &headB}
		if qB.PerDollar > qA.PerDollar {
			first, second = second, first
		}
		for _, l := range []lane{first, second} {
			if remaining <= 0 {
				break
			}
			take := math.Min(remaining, l.limit)
			if take <= 0 {
				continue
			}
			l.amounts[c] += take
			*l.head -= take * l.per
			remaining -= take
		}
		if remaining > 0 {
			// Both bonus lanes are exhausted; the leftover earns tail
			// rate wherever it pays more.
			if qA.TailPerDollar >= qB.TailPerDollar {
				amountsA[c] += remaining
			} else {
				amountsB[c] += remaining
			}
		}
	}

	splitA, err := spend.NewVector(amountsA)
	if err != nil {
		return spend.Vector{}, spend.Vector{}, err
	}
	splitB, err := spend.NewVector(amountsB)
	if err != nil {
		return spend.Vector{}, spend.Vector{}, err
	}
	return splitA, splitB, nil
}

// tierHeadroom is the reward still earnable under the tier's overall
// cap, in reward units. +Inf when the tier is uncapped.
func tierHeadroom(card catalog.Card, tier catalog.Tier, milesRate float64) float64 {
	if tier.Cap <= 0 {
		return math.Inf(1)
	}
	if card.Kind == catalog.KindMiles {
		return tier.Cap * milesRate
	}
	return tier.Cap
}

// spendRoom converts reward headroom to the dollars of spend that fit
// under it at the given rate.
func spendRoom(headroom, perDollar float64) float64 {
	if math.IsInf(headroom, 1) || perDollar <= 0 {
		return math.Inf(1)
	}
	if headroom <= 0 {
		return 0
	}
	return headroom / perDollar
}

func quoteOpts(groups []string) []reward.EvalOption {
	if len(groups) == 0 {
		return nil
	}
	return []reward.EvalOption{reward.WithForcedGroups(groups...)}
}

// byDescendingSpend lists the vector's categories largest first, with
// canonical order breaking ties so identical inputs route identically.
func byDescendingSpend(vec spend.Vector) []spend.Category {
	all := spend.All()
	cats := make([]spend.Category, 0, len(all))
	for _, c := range all {
		if vec.Amount(c) > 0 {
			cats = append(cats, c)
		}
	}
	for i := 1; i < len(cats); i++ {
		for j := i; j > 0 && vec.Amount(cats[j]) > vec.Amount(cats[j-1]); j-- {
			cats[j], cats[j-1] = cats[j-1], cats[j]
		}
	}
	return cats
}

// evaluate scores both shares and assembles the allocation.
func (a *Allocator) evaluate(ctx context.Context, cardA, cardB catalog.Card, splitA, splitB spend.Vector, milesRate float64, groupsA, groupsB []string) (Allocation, error) {
	resA, err := a.engine.Evaluate(ctx, cardA, splitA, milesRate, quoteOpts(groupsA)...)
	if err != nil {
		return Allocation{}, fmt.Errorf("card %q: %w", cardA.Name, err)
	}
	resB, err := a.engine.Evaluate(ctx, cardB, splitB, milesRate, quoteOpts(groupsB)...)
	if err != nil {
		return Allocation{}, fmt.Errorf("card %q: %w", cardB.Name, err)
	}
	return Allocation{
		ResultA:  resA,
		ResultB:  resB,
		SpendA:   splitA,
		SpendB:   splitB,
		Combined: resA.MonthlyReward + resB.MonthlyReward,
	}, nil
}
