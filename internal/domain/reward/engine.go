package reward

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

const defaultMilesRate = 0.02

// evalConfig carries per-call evaluation overrides.
type evalConfig struct {
	forcedGroups []string
	pinnedTier   *catalog.Tier
}

// EvalOption tweaks a single evaluation.
type EvalOption func(*evalConfig)

// WithForcedGroups overrides the automatic top-spend group selection
// for cards with a group bonus. The allocator enumerates selections
// through this instead of trusting the per-card greedy pick.
func WithForcedGroups(names ...string) EvalOption {
	return func(c *evalConfig) {
		c.forcedGroups = names
	}
}

// WithTier pins the tier instead of deriving it from the spend vector.
// Used when a caller has already settled the tier for a wider spend
// picture than the vector being evaluated.
func WithTier(t catalog.Tier) EvalOption {
	return func(c *evalConfig) {
		tier := t
		c.pinnedTier = &tier
	}
}

// Engine evaluates cards against monthly spend vectors.
type Engine struct {
	milesRate float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithMilesRate sets the default dollar value of one mile, used when a
// request does not supply its own.
func WithMilesRate(v float64) Option {
	return func(e *Engine) {
		if v > 0 {
			e.milesRate = v
		}
	}
}

// New builds an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{milesRate: defaultMilesRate}
	for _, o := range opts {
		o(e)
	}
	return e
}

// MilesRate reports the engine's default miles valuation.
func (e *Engine) MilesRate() float64 { return e.milesRate }

// Evaluate computes the monthly reward a card yields for the given
// spend vector. A non-positive milesRate falls back to the engine
// default. Cashback rewards are dollars; miles rewards are dollars at
// the miles valuation.
func (e *Engine) Evaluate(ctx context.Context, card catalog.Card, vec spend.Vector, milesRate float64, opts ...EvalOption) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if milesRate <= 0 {
		milesRate = e.milesRate
	}
	if card.Kind == catalog.KindMiles && milesRate <= 0 {
		return Result{}, fmt.Errorf("card %q: %w", card.Name, ErrInvalidMilesRate)
	}
	cfg := evalConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	if len(card.Tiers) == 0 && cfg.pinnedTier == nil {
		return Result{
			CardID:   card.ID,
			CardName: card.Name,
			Issuer:   card.Issuer,
			Kind:     card.Kind,
			Note:     "no reward tiers configured",
		}, nil
	}

	build, err := resolvePolicy(card.Policy)
	if err != nil {
		return Result{}, fmt.Errorf("card %q: %w", card.Name, err)
	}

	if cfg.pinnedTier != nil {
		bd, err := build(card, *cfg.pinnedTier, vec, milesRate, cfg)
		if err != nil {
			return Result{}, err
		}
		return assemble(card, *cfg.pinnedTier, true, bd, milesRate, vec.Total()), nil
	}

	// Every qualifying tier is scored and the best reward kept, with a
	// strict comparison so the first evaluated wins ties.
	var (
		best  Result
		found bool
	)
	for _, tier := range ascendingTiers(card) {
		if !qualifies(card, tier, vec) {
			continue
		}
		bd, err := build(card, tier, vec, milesRate, cfg)
		if err != nil {
			return Result{}, err
		}
		res := assemble(card, tier, true, bd, milesRate, vec.Total())
		if !found || res.MonthlyReward > best.MonthlyReward {
			best = res
			found = true
		}
	}
	if found {
		return best, nil
	}

	tier, _ := SelectTier(card, vec)
	bd, err := build(card, tier, vec, milesRate, cfg)
	if err != nil {
		return Result{}, err
	}
	return assemble(card, tier, false, bd, milesRate, vec.Total()), nil
}

// assemble folds a breakdown into the reported result: the monthly
// reward is the earned total truncated at the tier cap, the original
// reward is the cap-free hypothetical, and the cap difference reports
// either the reward forgone to caps or the slack left before the
// tightest one binds.
func assemble(card catalog.Card, tier catalog.Tier, qualified bool, bd *breakdown, milesRate, totalSpend float64) Result {
	monthly := bd.earned
	if tier.Cap > 0 {
		capValue := tier.Cap
		if card.Kind == catalog.KindMiles {
			capValue = tier.Cap * milesRate
		}
		if monthly > capValue {
			monthly = capValue
		}
		bd.noteHeadroom(capValue - bd.earned)
	}

	res := Result{
		CardID:          card.ID,
		CardName:        card.Name,
		Issuer:          card.Issuer,
		Kind:            card.Kind,
		TierDescription: tier.Description,
		MonthlyReward:   monthly,
		OriginalReward:  bd.uncapped,
		MinSpendMet:     qualified,
		Breakdown:       bd.lines,
	}
	if totalSpend > 0 {
		res.EffectiveRate = monthly / totalSpend * 100
	}
	if !qualified {
		res.Note = "minimum spend not met; base rate applied"
	}
	if bd.uncapped-monthly > floatTolerance {
		res.CapReached = true
		res.CapDifference = bd.uncapped - monthly
	} else if h := bd.headroom; h > 0 && !math.IsInf(h, 1) {
		res.CapDifference = h
	}
	return res
}

// EvaluateAll evaluates every card in the catalog and returns the
// results ranked best first. Per-card failures are joined and returned
// alongside the results that did succeed.
func (e *Engine) EvaluateAll(ctx context.Context, cat *catalog.Catalog, vec spend.Vector, milesRate float64) ([]Result, error) {
	results := make([]Result, 0, len(cat.Cards))
	var errs []error
	for _, card := range cat.Cards {
		res, err := e.Evaluate(ctx, card, vec, milesRate)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	Rank(results)
	return results, errors.Join(errs...)
}
