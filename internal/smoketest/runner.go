package smoketest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jwpang/cardwise/pkg/logger"
)

// HTTP status code constants.
const (
	statusOK = 200
)

// Runner configuration constants.
const (
	workerChannelMultiplier = 2
	percentageMultiplier    = 100
	filePermission          = 0600
)

// Run executes the complete smoke test against a running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting cardwise smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.NumProfiles),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN))

	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	profiles := generateProfiles(ctx, config, stats)

	if err := submitProfiles(ctx, config, profiles, stats); err != nil {
		return fmt.Errorf("profile submission failed: %w", err)
	}

	if err := saveProfilesToFile(ctx, config, profiles); err != nil {
		logger.Get().Warn(ctx, "failed to save profiles to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.OrderingViolations > 0 || stats.PairingViolations > 0 {
		return fmt.Errorf("verification failed: %d ordering, %d pairing violations",
			stats.OrderingViolations, stats.PairingViolations)
	}

	logger.Get().Info(ctx, "smoke test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// submitProfiles evaluates every profile concurrently using a worker pool.
func submitProfiles(ctx context.Context, config *Config, profiles []Profile, stats *Stats) error {
	log.Printf("submitting %d profiles with %d workers...", len(profiles), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		submitted          int64
		rewardsOK          int64
		rewardsFailed      int64
		pairsOK            int64
		pairsFailed        int64
		orderingViolations int64
		pairingViolations  int64
	)

	profileChan := make(chan Profile, config.Workers*workerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for profile := range profileChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)

				results, err := fetchRewards(ctx, client, config, profile)
				if err != nil {
					atomic.AddInt64(&rewardsFailed, 1)
					if config.Verbose {
						log.Printf("rewards request failed: %v", err)
					}
					continue
				}
				atomic.AddInt64(&rewardsOK, 1)
				if err := verifyOrdering(results); err != nil {
					atomic.AddInt64(&orderingViolations, 1)
					log.Printf("ordering violation: %v", err)
				}

				pairs, err := fetchCombinations(ctx, client, config, profile)
				if err != nil {
					atomic.AddInt64(&pairsFailed, 1)
					if config.Verbose {
						log.Printf("combinations request failed: %v", err)
					}
					continue
				}
				atomic.AddInt64(&pairsOK, 1)
				if err := verifyPairs(results, pairs); err != nil {
					atomic.AddInt64(&pairingViolations, 1)
					log.Printf("pairing violation: %v", err)
				}
			}
		}()
	}

	go func() {
		defer close(profileChan)
		for _, profile := range profiles {
			select {
			case <-ctx.Done():
				return
			case profileChan <- profile:
			}
		}
	}()

	wg.Wait()

	stats.ProfilesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.RewardsOK = int(atomic.LoadInt64(&rewardsOK))
	stats.RewardsFailed = int(atomic.LoadInt64(&rewardsFailed))
	stats.PairsOK = int(atomic.LoadInt64(&pairsOK))
	stats.PairsFailed = int(atomic.LoadInt64(&pairsFailed))
	stats.OrderingViolations = int(atomic.LoadInt64(&orderingViolations))
	stats.PairingViolations = int(atomic.LoadInt64(&pairingViolations))

	log.Printf("submission completed: rewards %d ok / %d failed, combinations %d ok / %d failed",
		stats.RewardsOK, stats.RewardsFailed, stats.PairsOK, stats.PairsFailed)
	return nil
}

// fetchRewards posts one profile to /rewards and decodes the ranked results.
func fetchRewards(ctx context.Context, client *HTTPClient, config *Config, profile Profile) ([]CardResult, error) {
	resp, err := client.Post(ctx, config.BaseURL+"/rewards", profile)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != statusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var results []CardResult
	if err := decodeResponse(resp, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchCombinations posts one profile to /combinations and decodes the pairs.
func fetchCombinations(ctx context.Context, client *HTTPClient, config *Config, profile Profile) ([]PairResult, error) {
	body := struct {
		Profile
		Top int `json:"top"`
	}{Profile: profile, Top: config.TopN}

	resp, err := client.Post(ctx, config.BaseURL+"/combinations", body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != statusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var pairs []PairResult
	if err := decodeResponse(resp, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// saveProfilesToFile saves the generated profiles to a JSON file.
func saveProfilesToFile(ctx context.Context, config *Config, profiles []Profile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("no profiles to save")
	}

	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_profiles_" + timestamp + ".json"
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "profiles saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, profilesPerSecond float64

	if stats.ProfilesSubmitted > 0 {
		successRate = float64(stats.RewardsOK) / float64(stats.ProfilesSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		profilesPerSecond = float64(stats.ProfilesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("profilesGenerated", stats.ProfilesGenerated),
		logger.Int("profilesSubmitted", stats.ProfilesSubmitted),
		logger.Int("rewardsOK", stats.RewardsOK),
		logger.Int("rewardsFailed", stats.RewardsFailed),
		logger.Int("pairsOK", stats.PairsOK),
		logger.Int("pairsFailed", stats.PairsFailed),
		logger.Int("orderingViolations", stats.OrderingViolations),
		logger.Int("pairingViolations", stats.PairingViolations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("profilesPerSecond", profilesPerSecond))
}
