// Command simulate plays many rounds of each game through the real outcome
// generator and payout table and compares the observed return to player
// against the exact figure.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"minicasino/games"
	"minicasino/models"
)

// choices played for each game; slots takes no choice
var choices = map[models.GameKind]string{
	models.GameCoin:     games.Heads,
	models.GameRoulette: games.Even,
	models.GameSlots:    "",
}

// Report summarizes a simulated run of one game
type Report struct {
	Game           models.GameKind
	Rounds         int
	Wins           int
	Net            int64   // total net change in wager units
	ObservedRTP    float64 // (wagered + net) / wagered
	ExpectedRTP    float64
	ChiSquared     float64 // uniformity of the raw outcomes
	DegreesFreedom int
}

func main() {
	rounds := flag.Int("rounds", 100000, "rounds to play per game")
	flag.Parse()

	if *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "rounds must be positive")
		os.Exit(2)
	}

	fmt.Println("=== Minicasino Return To Player Simulation ===")
	fmt.Println()

	generator := games.NewRandomGenerator()
	failed := false
	for _, game := range models.GameKinds {
		report, err := Simulate(generator, game, *rounds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", game, err)
			os.Exit(1)
		}
		if !printReport(report) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

// ExpectedRTP returns the exact return to player of a one-unit wager
func ExpectedRTP(game models.GameKind) (float64, error) {
	outcomes := allOutcomes(game)
	if len(outcomes) == 0 {
		return 0, fmt.Errorf("%w: %s", games.ErrUnknownGame, game)
	}

	var total int64
	for _, outcome := range outcomes {
		m, err := games.Multiplier(outcome, choices[game])
		if err != nil {
			return 0, err
		}
		total += m
	}
	return 1 + float64(total)/float64(len(outcomes)), nil
}

// allOutcomes enumerates every equally likely outcome of a game
func allOutcomes(game models.GameKind) []games.Outcome {
	var outcomes []games.Outcome
	switch game {
	case models.GameCoin:
		for _, side := range []string{games.Heads, games.Tails} {
			outcomes = append(outcomes, games.Outcome{Game: game, Side: side})
		}
	case models.GameRoulette:
		for n := 0; n < games.WheelSize; n++ {
			outcomes = append(outcomes, games.Outcome{Game: game, Number: n})
		}
	case models.GameSlots:
		for _, a := range games.Symbols {
			for _, b := range games.Symbols {
				for _, c := range games.Symbols {
					outcomes = append(outcomes, games.Outcome{Game: game, Reels: games.Reels{a, b, c}})
				}
			}
		}
	}
	return outcomes
}

// Simulate plays rounds one-unit wagers of game through drawer
func Simulate(drawer *games.Generator, game models.GameKind, rounds int) (Report, error) {
	expected, err := ExpectedRTP(game)
	if err != nil {
		return Report{}, err
	}

	outcomes := allOutcomes(game)
	counts := make(map[string]int, len(outcomes))
	report := Report{Game: game, Rounds: rounds, ExpectedRTP: expected}

	for i := 0; i < rounds; i++ {
		outcome, err := drawer.Draw(game)
		if err != nil {
			return Report{}, err
		}
		m, err := games.Multiplier(outcome, choices[game])
		if err != nil {
			return Report{}, err
		}
		if m > 0 {
			report.Wins++
		}
		report.Net += m
		counts[outcome.String()]++
	}

	report.ObservedRTP = float64(int64(rounds)+report.Net) / float64(rounds)

	perOutcome := float64(rounds) / float64(len(outcomes))
	for _, outcome := range outcomes {
		diff := float64(counts[outcome.String()]) - perOutcome
		report.ChiSquared += diff * diff / perOutcome
	}
	report.DegreesFreedom = len(outcomes) - 1

	return report, nil
}

// chiSquaredCritical95 approximates the 95% critical value (Wilson-Hilferty)
func chiSquaredCritical95(df int) float64 {
	k := float64(df)
	z := 1.6449
	term := 1 - 2/(9*k) + z*math.Sqrt(2/(9*k))
	return k * term * term * term
}

func printReport(r Report) bool {
	critical := chiSquaredCritical95(r.DegreesFreedom)
	uniform := r.ChiSquared < critical
	// Three standard errors of the mean net result
	rtpOK := math.Abs(r.ObservedRTP-r.ExpectedRTP) <= 3*rtpStdErr(r)

	fmt.Printf("%s (%d rounds)\n", r.Game, r.Rounds)
	fmt.Printf("  Wins:          %d (%.2f%%)\n", r.Wins, float64(r.Wins)/float64(r.Rounds)*100)
	fmt.Printf("  Expected RTP:  %.4f%%  (house edge %.4f%%)\n", r.ExpectedRTP*100, (1-r.ExpectedRTP)*100)
	fmt.Printf("  Observed RTP:  %.4f%%\n", r.ObservedRTP*100)
	fmt.Printf("  χ² uniformity: %.2f (< %.2f with %d df)\n", r.ChiSquared, critical, r.DegreesFreedom)

	if uniform && rtpOK {
		fmt.Println("  ✓ PASS")
	} else {
		fmt.Println("  ✗ FAIL")
	}
	fmt.Println()
	return uniform && rtpOK
}

func rtpStdErr(r Report) float64 {
	outcomes := allOutcomes(r.Game)
	mean := r.ExpectedRTP - 1
	var variance float64
	for _, outcome := range outcomes {
		m, _ := games.Multiplier(outcome, choices[r.Game])
		d := float64(m) - mean
		variance += d * d
	}
	variance /= float64(len(outcomes))
	return math.Sqrt(variance / float64(r.Rounds))
}
