package smoketest

import (
	"fmt"
)

// slack absorbs float noise when comparing reward totals.
const slack = 1e-6

// verifyOrdering checks that reward results arrive best first.
func verifyOrdering(results []CardResult) error {
	if len(results) == 0 {
		return fmt.Errorf("empty results")
	}
	for i := 1; i < len(results); i++ {
		if results[i].MonthlyReward > results[i-1].MonthlyReward+slack {
			return fmt.Errorf("result %d (%s, %.4f) outranks result %d (%s, %.4f)",
				i, results[i].CardName, results[i].MonthlyReward,
				i-1, results[i-1].CardName, results[i-1].MonthlyReward)
		}
	}
	return nil
}

// verifyPairs checks pair ordering and that the best pair is at least as
// good as the best single card. Splitting spend can never lose value since
// one valid split sends everything to the stronger card.
func verifyPairs(results []CardResult, pairs []PairResult) error {
	if len(pairs) == 0 {
		return nil
	}
	for i := 1; i < len(pairs); i++ {
		if pairs[i].Combined > pairs[i-1].Combined+slack {
			return fmt.Errorf("pair %d (%.4f) outranks pair %d (%.4f)",
				i, pairs[i].Combined, i-1, pairs[i-1].Combined)
		}
	}
	if len(results) > 0 {
		bestSingle := results[0].MonthlyReward
		bestPair := pairs[0].Combined
		if bestPair+slack < bestSingle {
			return fmt.Errorf("best pair (%.4f) is worse than best single card %s (%.4f)",
				bestPair, results[0].CardName, bestSingle)
		}
	}
	return nil
}
