// Command explore evaluates a spending profile against a card catalog
// from the command line: ranked single-card results first, then the
// top two-card combinations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	app "github.com/jwpang/cardwise/internal/app"
	"github.com/jwpang/cardwise/internal/domain/spend"
	"github.com/jwpang/cardwise/pkg/logger"
)

// Default configuration constants.
const (
	defaultTopPairs = 5
	defaultTimeout  = 30 * time.Second
)

func main() {
	var (
		catalogPath = flag.String("catalog", "", "Path to a YAML card catalog (default: built-in catalog)")
		spendSpec   = flag.String("spend", "", "Spending profile, e.g. \"dining=1200,groceries=400,online=300\"")
		milesRate   = flag.Float64("miles-rate", 0, "Dollar value of one mile (default: 0.02)")
		topPairs    = flag.Int("top", defaultTopPairs, "Number of top card pairs to show")
		showLines   = flag.Bool("breakdown", false, "Print per-category breakdown for each card")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || *spendSpec == "" {
		flag.Usage()
		return
	}

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	vec, err := parseSpend(*spendSpec)
	if err != nil {
		os.Stderr.WriteString("invalid -spend: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	svc := app.New(
		app.WithCatalogPath(*catalogPath),
		app.WithMilesRate(*milesRate),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer svc.Stop()

	results, err := svc.Rewards(ctx, vec, *milesRate)
	if err != nil {
		os.Stderr.WriteString("evaluation failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "CARD\tISSUER\tTIER\tREWARD\tRATE\tNOTE\n")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%.2f%%\t%s\n",
			r.CardName, r.Issuer, r.TierDescription, r.MonthlyReward, r.EffectiveRate, r.Note)
		if *showLines {
			for _, l := range r.Breakdown {
				fmt.Fprintf(w, "  %s\t$%.2f\t@ %.2f\t$%.4f\t\t\n", l.Category, l.Amount, l.Rate, l.Reward)
			}
		}
	}
	w.Flush()

	pairs, err := svc.Pairings(ctx, vec, *milesRate, *topPairs)
	if err != nil {
		os.Stderr.WriteString("combination search failed: " + err.Error() + "\n")
		os.Exit(1)
	}

	fmt.Println()
	pw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(pw, "PAIR\tCOMBINED\tSPLIT\n")
	for _, p := range pairs {
		fmt.Fprintf(pw, "%s + %s\t$%.2f\t$%.2f / $%.2f\n",
			p.ResultA.CardName, p.ResultB.CardName, p.Combined,
			p.SpendA.Total(), p.SpendB.Total())
	}
	pw.Flush()
}

// parseSpend turns "dining=1200,groceries=400" into a spend vector.
func parseSpend(s string) (spend.Vector, error) {
	amounts := make(map[spend.Category]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return spend.Vector{}, fmt.Errorf("entry %q is not category=amount", part)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return spend.Vector{}, fmt.Errorf("entry %q: %w", part, err)
		}
		amounts[spend.Category(strings.TrimSpace(key))] = amount
	}
	return spend.NewVector(amounts)
}
