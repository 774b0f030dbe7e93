// Package catalog defines the immutable card reference data the engine
// reads: products, their tiers and rate tables, and the declared reward
// policy each product uses. Loading from storage lives in adapters; the
// engine only ever sees validated values from this package.
package catalog

import (
	"fmt"

	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Kind distinguishes how a card pays out.
type Kind string

const (
	KindCashback Kind = "cashback"
	KindMiles    Kind = "miles"
)

// Policy is the declared reward-allocation policy tag for a card.
// Dispatch is always on this tag, never on the display name.
type Policy string

const (
	// PolicyDefault applies each category's rate independently.
	PolicyDefault Policy = "default"
	// PolicyTopGroups gives the bonus rate to the highest-spend alias
	// group(s), capped per group.
	PolicyTopGroups Policy = "top_groups"
	// PolicySingleTop gives the high rate to the single bonus-eligible
	// category with the largest spend, once the eligible aggregate
	// clears the tier minimum.
	PolicySingleTop Policy = "single_top"
	// PolicyDualBucket splits categories into two buckets, each with
	// its own minimum and spend cap.
	PolicyDualBucket Policy = "dual_bucket"
	// PolicySharedCapTopUp shares one aggregate spend cap across a
	// bonus set, with non-bonus spend topping up the minimum.
	PolicySharedCapTopUp Policy = "shared_cap_topup"
)

// CapType says what a per-category cap limits.
type CapType string

const (
	// CapEarned limits the reward amount.
	CapEarned CapType = "earned"
	// CapSpent limits the spend eligible for the rate.
	CapSpent CapType = "spent"
)

// Rate is one category's entry in a tier's rate table. Value is a
// percentage for cashback cards and miles-per-dollar for miles cards.
// CapAmount of zero means uncapped. Entries sharing a CapGroup share
// one combined reward cap instead of independent ones.
type Rate struct {
	Category  spend.Category
	Value     float64
	CapAmount float64
	CapType   CapType
	CapGroup  string
}

// Tier is a spend-threshold-gated rate table within a card. Cap, when
// positive, is an overall earned cap on the tier's total reward,
// distinct from per-category caps.
type Tier struct {
	Description string
	MinSpend    float64
	Cap         float64
	BaseRate    float64
	Rates       []Rate
}

// RateFor returns the tier's rate entry for c.
func (t Tier) RateFor(c spend.Category) (Rate, bool) {
	for _, r := range t.Rates {
		if r.Category == c {
			return r, true
		}
	}
	return Rate{}, false
}

// BonusCategories returns the categories carrying a positive rate in
// this tier, in rate-table order.
func (t Tier) BonusCategories() []spend.Category {
	out := make([]spend.Category, 0, len(t.Rates))
	for _, r := range t.Rates {
		if r.Value > 0 {
			out = append(out, r.Category)
		}
	}
	return out
}

// Group is a named alias group for the top-groups policy; aliases may
// merge several raw categories into one group.
type Group struct {
	Name    string
	Members []spend.Category
}

// GroupBonus configures PolicyTopGroups: the Pick highest-spend groups
// earn BonusRate on up to GroupCap of spend each.
type GroupBonus struct {
	Groups    []Group
	Pick      int
	BonusRate float64
	GroupCap  float64
}

// Names returns the group names in declaration order.
func (g GroupBonus) Names() []string {
	out := make([]string, len(g.Groups))
	for i, gr := range g.Groups {
		out[i] = gr.Name
	}
	return out
}

// Bucket is one side of a dual-bucket card. The bucket must clear its
// own MinSpend to unlock BonusRate, which then applies to at most Cap
// of the bucket's spend.
type Bucket struct {
	Name      string
	Members   []spend.Category
	MinSpend  float64
	Cap       float64
	BonusRate float64
}

// DualBucket configures PolicyDualBucket with exactly two disjoint
// buckets, evaluated independently.
type DualBucket struct {
	Buckets [2]Bucket
}

// SharedCap configures PolicySharedCapTopUp: Members share SpendCap as
// one aggregate spend cap for BonusRate; MinSpend may be satisfied by
// non-member spend, which earns no bonus itself.
type SharedCap struct {
	Members   []spend.Category
	SpendCap  float64
	MinSpend  float64
	BonusRate float64
}

// Card is one reward-earning product. Exactly one policy config field
// is set for the non-default policies.
type Card struct {
	ID         string
	Name       string
	Issuer     string
	Kind       Kind
	Policy     Policy
	Categories []spend.Category
	Tiers      []Tier

	GroupBonus *GroupBonus
	DualBucket *DualBucket
	SharedCap  *SharedCap
}

// Catalog is a validated, versioned set of cards. The version changes
// on every load so caches can key on it.
type Catalog struct {
	Version string
	Cards   []Card
}

// New validates all cards and assembles a catalog.
func New(version string, cards []Card) (Catalog, error) {
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return Catalog{}, fmt.Errorf("card %q: %w", cards[i].Name, err)
		}
	}
	return Catalog{Version: version, Cards: cards}, nil
}

// Validate checks the card's reference data. Cap misconfiguration (a
// cap amount without a cap type) is deliberately NOT an error here; the
// engine degrades it to cap-absent at calculation time.
func (c Card) Validate() error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("missing id or name: %w", ErrInvalidCard)
	}
	if c.Kind != KindCashback && c.Kind != KindMiles {
		return fmt.Errorf("kind %q: %w", c.Kind, ErrInvalidCard)
	}
	for _, cat := range c.Categories {
		if !spend.Valid(cat) {
			return fmt.Errorf("category %q: %w", cat, ErrUnknownCategory)
		}
	}
	for ti, t := range c.Tiers {
		if t.MinSpend < 0 || t.BaseRate < 0 || t.Cap < 0 {
			return fmt.Errorf("tier %d: negative min spend, base rate, or cap: %w", ti, ErrInvalidRate)
		}
		for _, r := range t.Rates {
			if !spend.Valid(r.Category) {
				return fmt.Errorf("tier %d category %q: %w", ti, r.Category, ErrUnknownCategory)
			}
			if r.Value < 0 {
				return fmt.Errorf("tier %d category %q: negative rate: %w", ti, r.Category, ErrInvalidRate)
			}
			if r.CapAmount < 0 {
				return fmt.Errorf("tier %d category %q: negative cap: %w", ti, r.Category, ErrInvalidRate)
			}
		}
	}
	return c.validatePolicy()
}

func (c Card) validatePolicy() error {
	switch c.Policy {
	case PolicyDefault:
		return nil
	case PolicyTopGroups:
		g := c.GroupBonus
		if g == nil || len(g.Groups) == 0 {
			return fmt.Errorf("top_groups without group config: %w", ErrInvalidPolicy)
		}
		if g.Pick != 1 && g.Pick != 2 {
			return fmt.Errorf("top_groups pick %d (want 1 or 2): %w", g.Pick, ErrInvalidPolicy)
		}
		if g.BonusRate < 0 || g.GroupCap < 0 {
			return fmt.Errorf("top_groups negative rate or cap: %w", ErrInvalidPolicy)
		}
		for _, gr := range g.Groups {
			for _, m := range gr.Members {
				if !spend.Valid(m) {
					return fmt.Errorf("group %q member %q: %w", gr.Name, m, ErrUnknownCategory)
				}
			}
		}
		return nil
	case PolicyDualBucket:
		d := c.DualBucket
		if d == nil {
			return fmt.Errorf("dual_bucket without bucket config: %w", ErrInvalidPolicy)
		}
		seen := map[spend.Category]bool{}
		for _, b := range d.Buckets {
			if len(b.Members) == 0 {
				return fmt.Errorf("bucket %q has no members: %w", b.Name, ErrInvalidPolicy)
			}
			if b.MinSpend < 0 || b.Cap < 0 || b.BonusRate < 0 {
				return fmt.Errorf("bucket %q negative minimum, cap, or rate: %w", b.Name, ErrInvalidPolicy)
			}
			for _, m := range b.Members {
				if !spend.Valid(m) {
					return fmt.Errorf("bucket %q member %q: %w", b.Name, m, ErrUnknownCategory)
				}
				if seen[m] {
					return fmt.Errorf("category %q present in both buckets: %w", m, ErrInvalidPolicy)
				}
				seen[m] = true
			}
		}
		return nil
	case PolicySingleTop:
		// Bonus eligibility and the minimum come from the tier itself.
		return nil
	case PolicySharedCapTopUp:
		s := c.SharedCap
		if s == nil || len(s.Members) == 0 {
			return fmt.Errorf("shared_cap_topup without member config: %w", ErrInvalidPolicy)
		}
		if s.SpendCap < 0 || s.MinSpend < 0 || s.BonusRate < 0 {
			return fmt.Errorf("shared_cap_topup negative cap, minimum, or rate: %w", ErrInvalidPolicy)
		}
		for _, m := range s.Members {
			if !spend.Valid(m) {
				return fmt.Errorf("shared cap member %q: %w", m, ErrUnknownCategory)
			}
		}
		return nil
	default:
		return fmt.Errorf("policy %q: %w", c.Policy, ErrInvalidPolicy)
	}
}
