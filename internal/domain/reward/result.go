// Package reward implements the single-product reward engine: the
// category reward calculator, the tier selector, and the policy
// resolver that together turn a card plus a spending vector into a
// reward result with a per-category breakdown.
package reward

import (
	"sort"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Line is one row of a reward breakdown: Amount of spend in Category
// rewarded at Rate (percent or miles-per-dollar). A category may appear
// on several lines when a cap splits its spend between rates.
type Line struct {
	Category spend.Category `json:"category"`
	Amount   float64        `json:"amount"`
	Rate     float64        `json:"rate"`
	Reward   float64        `json:"reward"`
}

// Result is one product's computed reward for a spending vector.
// OriginalReward is the hypothetical reward with every cap lifted;
// MonthlyReward is what the card actually pays. Results are computed
// fresh per request and never shared.
type Result struct {
	CardID          string       `json:"card_id"`
	CardName        string       `json:"card_name"`
	Issuer          string       `json:"issuer"`
	Kind            catalog.Kind `json:"kind"`
	TierDescription string       `json:"tier_description"`
	MonthlyReward   float64      `json:"monthly_reward"`
	// EffectiveRate is the monthly reward as a percentage of total
	// spend, the headline number a summary view ranks cards by.
	EffectiveRate  float64 `json:"effective_rate"`
	OriginalReward float64 `json:"original_reward"`
	CapReached     bool    `json:"cap_reached"`
	CapDifference  float64 `json:"cap_difference"`
	MinSpendMet    bool    `json:"min_spend_met"`
	Note           string  `json:"note,omitempty"`
	Breakdown      []Line  `json:"breakdown"`
}

// Rank sorts results by monthly reward descending, in place. Ties
// break on card name so identical inputs always rank identically.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MonthlyReward != results[j].MonthlyReward {
			return results[i].MonthlyReward > results[j].MonthlyReward
		}
		return results[i].CardName < results[j].CardName
	})
}
