// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/guessr/internal/model"
)

const sparkChars = " .:-=+*#%@"

// AverageGuesses returns guesses per guessed number, or 0 when nothing was guessed.
func AverageGuesses(totalGuesses, numbersGuessed int) float64 {
	if numbersGuessed == 0 {
		return 0
	}
	return float64(totalGuesses) / float64(numbersGuessed)
}

// GuessedPercentage returns the share of generated secrets that were guessed, in percent.
func GuessedPercentage(numbersGuessed, secretsGenerated int) float64 {
	if secretsGenerated == 0 {
		return 0
	}
	return float64(numbersGuessed) / float64(secretsGenerated) * 100
}

// Totals aggregates counters across stored games.
type Totals struct {
	Games          int
	Guesses        int
	NumbersGuessed int
	Secrets        int
	Forfeits       int
	AverageGuesses float64
	GuessedPct     float64
	// BestAverage is the lowest per-game average among games with a guessed number.
	BestAverage float64
}

// ComputeTotals sums the counters of the given games.
func ComputeTotals(games []model.GameAggregate) Totals {
	t := Totals{
		Games:          len(games),
		Guesses:        lo.SumBy(games, func(g model.GameAggregate) int { return g.TotalGuesses }),
		NumbersGuessed: lo.SumBy(games, func(g model.GameAggregate) int { return g.NumbersGuessed }),
		Secrets:        lo.SumBy(games, func(g model.GameAggregate) int { return g.SecretsGenerated }),
		Forfeits:       lo.SumBy(games, func(g model.GameAggregate) int { return g.Forfeits }),
	}
	t.AverageGuesses = AverageGuesses(t.Guesses, t.NumbersGuessed)
	t.GuessedPct = GuessedPercentage(t.NumbersGuessed, t.Secrets)

	scored := lo.Filter(games, func(g model.GameAggregate, _ int) bool { return g.NumbersGuessed > 0 })
	if len(scored) > 0 {
		best := lo.MinBy(scored, func(a, b model.GameAggregate) bool {
			return AverageGuesses(a.TotalGuesses, a.NumbersGuessed) < AverageGuesses(b.TotalGuesses, b.NumbersGuessed)
		})
		t.BestAverage = AverageGuesses(best.TotalGuesses, best.NumbersGuessed)
	}
	return t
}

// GameSeries returns per-game average guesses and guessed percentage.
func GameSeries(games []model.GameAggregate) (averages, percentages []float64) {
	averages = lo.Map(games, func(g model.GameAggregate, _ int) float64 {
		return AverageGuesses(g.TotalGuesses, g.NumbersGuessed)
	})
	percentages = lo.Map(games, func(g model.GameAggregate, _ int) float64 {
		return GuessedPercentage(g.NumbersGuessed, g.SecretsGenerated)
	})
	return averages, percentages
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := lo.Min(values)
	maxVal := lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = lo.Clamp(idx, 0, len(sparkChars)-1)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
