package smoketest

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/jwpang/cardwise/internal/domain/spend"
	"github.com/jwpang/cardwise/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	archetypeCount     = 5
)

// Spend range constants, in dollars per month.
const (
	anchorSpendMin   = 400.0
	anchorSpendRange = 1600.0
	minorSpendMax    = 300.0
	categoryKeepRate = 0.4
)

// Archetype cases weight different category mixes.
const (
	caseDiner = iota
	caseTraveller
	caseFamily
	caseOnlineShopper
	caseBalanced
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// anchorCategories returns the categories an archetype concentrates spend in.
func anchorCategories(archetype int) []spend.Category {
	switch archetype {
	case caseDiner:
		return []spend.Category{spend.Dining, spend.Entertainment}
	case caseTraveller:
		return []spend.Category{spend.Travel, spend.Overseas, spend.ForeignCurrency}
	case caseFamily:
		return []spend.Category{spend.Groceries, spend.Petrol, spend.Utilities}
	case caseOnlineShopper:
		return []spend.Category{spend.Online, spend.Retail, spend.Streaming}
	default:
		return nil
	}
}

// generateProfiles builds random monthly spend profiles across archetypes.
func generateProfiles(ctx context.Context, config *Config, stats *Stats) []Profile {
	logger.Get().Info(ctx, "generating spend profiles", logger.Int("count", config.NumProfiles))

	profiles := make([]Profile, 0, config.NumProfiles)
	for i := 0; i < config.NumProfiles; i++ {
		archetype := int(getRandomFloat() * archetypeCount)
		anchors := anchorCategories(archetype)

		amounts := make(map[string]float64)
		for _, c := range anchors {
			amounts[string(c)] = anchorSpendMin + getRandomFloat()*anchorSpendRange
		}
		// Sprinkle small amounts across the remaining categories.
		for _, c := range spend.All() {
			if _, ok := amounts[string(c)]; ok {
				continue
			}
			if getRandomFloat() < categoryKeepRate {
				amounts[string(c)] = getRandomFloat() * minorSpendMax
			}
		}
		if len(amounts) == 0 {
			amounts[string(spend.Other)] = getRandomFloat() * minorSpendMax
		}

		profiles = append(profiles, Profile{Spend: amounts})
	}

	stats.ProfilesGenerated = len(profiles)
	return profiles
}
