package smoketest

import "time"

// Config holds configuration for the smoke test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumProfiles int           // Number of spend profiles to generate
	TopN        int           // Number of top pairs to request per profile
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated profiles
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Profile is one generated monthly spend profile.
type Profile struct {
	Spend     map[string]float64 `json:"spend"`
	MilesRate float64            `json:"miles_rate,omitempty"`
}

// CardResult mirrors the reward fields the verifier needs.
type CardResult struct {
	CardID        string  `json:"card_id"`
	CardName      string  `json:"card_name"`
	MonthlyReward float64 `json:"monthly_reward"`
	CapReached    bool    `json:"cap_reached"`
}

// PairResult mirrors the combination fields the verifier needs.
type PairResult struct {
	ResultA  CardResult `json:"result_a"`
	ResultB  CardResult `json:"result_b"`
	Combined float64    `json:"combined"`
}

// Stats holds smoke test statistics
type Stats struct {
	ProfilesGenerated int
	ProfilesSubmitted int
	RewardsOK         int
	RewardsFailed     int
	PairsOK           int
	PairsFailed       int
	OrderingViolations int
	PairingViolations  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
