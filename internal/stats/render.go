package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/samber/lo"

	"github.com/verte-zerg/guessr/internal/model"
)

const histogramBarWidth = 30

// RenderSummary prints a summary of stored games.
func RenderSummary(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	t := ComputeTotals(games)
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d", t.Games),
		fmt.Sprintf("Guesses: %d", t.Guesses),
		fmt.Sprintf("Numbers guessed: %d of %d", t.NumbersGuessed, t.Secrets),
		fmt.Sprintf("Avg guesses: %.2f", t.AverageGuesses),
		fmt.Sprintf("Best game avg: %.2f", t.BestAverage),
		fmt.Sprintf("Guessed: %.2f%%", t.GuessedPct),
		fmt.Sprintf("Forfeits: %d", t.Forfeits),
		"",
	}
	return writeLines(w, lines)
}

// RenderCurves prints moving-average sparklines for per-game metrics.
func RenderCurves(w io.Writer, games []model.GameAggregate, window int) error {
	if len(games) == 0 {
		return nil
	}
	averages, percentages := GameSeries(games)
	averages = MovingAverage(averages, window)
	percentages = MovingAverage(percentages, window)
	rows := [][]string{
		{"Avg guesses", Sparkline(averages), fmt.Sprintf("%.2f", averages[len(averages)-1])},
		{"Guessed %", Sparkline(percentages), fmt.Sprintf("%.1f", percentages[len(percentages)-1])},
	}
	lines := []string{fmt.Sprintf("Learning Curves (window %d)", window)}
	lines = append(lines, formatTable([]string{"Metric", "Trend", "Latest"}, rows, map[int]bool{2: true})...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// RenderGameTable prints one row per stored game.
func RenderGameTable(w io.Writer, games []model.GameAggregate) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	headers, rows := GameTableRows(games)
	lines := []string{"Games"}
	lines = append(lines, formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true, 7: true})...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// GameTableRows builds the header and cells for a games table.
func GameTableRows(games []model.GameAggregate) ([]string, [][]string) {
	headers := []string{"Game", "Ended", "Range", "Attempts", "Guesses", "Guessed", "Avg", "Guessed %", "Source"}
	rows := lo.Map(games, func(g model.GameAggregate, _ int) []string {
		attempts := "-"
		if g.MaxAttempts > 0 {
			attempts = fmt.Sprintf("%d", g.MaxAttempts)
		}
		return []string{
			ShortID(g.PublicID),
			g.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d-%d", g.Min, g.Max),
			attempts,
			fmt.Sprintf("%d", g.TotalGuesses),
			fmt.Sprintf("%d/%d", g.NumbersGuessed, g.SecretsGenerated),
			fmt.Sprintf("%.2f", AverageGuesses(g.TotalGuesses, g.NumbersGuessed)),
			fmt.Sprintf("%.1f%%", GuessedPercentage(g.NumbersGuessed, g.SecretsGenerated)),
			g.Source,
		}
	})
	return headers, rows
}

// RenderHistogram prints how many guessed rounds took each number of attempts.
func RenderHistogram(w io.Writer, buckets []model.AttemptBucket) error {
	if len(buckets) == 0 {
		_, err := fmt.Fprintln(w, "No guessed rounds found.")
		return err
	}
	lines := []string{"Attempts per Guessed Number"}
	lines = append(lines, HistogramLines(buckets, histogramBarWidth)...)
	lines = append(lines, "")
	return writeLines(w, lines)
}

// HistogramLines formats buckets as an aligned table with bars scaled to barWidth.
func HistogramLines(buckets []model.AttemptBucket, barWidth int) []string {
	total := lo.SumBy(buckets, func(b model.AttemptBucket) int { return b.Rounds })
	peak := lo.MaxBy(buckets, func(a, b model.AttemptBucket) bool { return a.Rounds > b.Rounds }).Rounds
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		share := 0.0
		if total > 0 {
			share = float64(b.Rounds) / float64(total) * 100
		}
		bar := 0
		if peak > 0 {
			bar = b.Rounds * barWidth / peak
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", b.Attempts),
			fmt.Sprintf("%d", b.Rounds),
			fmt.Sprintf("%.1f%%", share),
			strings.Repeat("#", bar),
		})
	}
	return formatTable([]string{"Attempts", "Rounds", "Share", ""}, rows, map[int]bool{0: true, 1: true, 2: true})
}

// ShortID trims a UUID to its first block for display.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		if rightAlignCols[i] {
			b.WriteString(runewidth.FillLeft(cell, widths[i]))
		} else {
			b.WriteString(runewidth.FillRight(cell, widths[i]))
		}
	}
	return strings.TrimRight(b.String(), " ")
}
