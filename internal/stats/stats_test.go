package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/guessr/internal/model"
)

func TestAverageGuesses(t *testing.T) {
	if got := AverageGuesses(5, 0); got != 0 {
		t.Fatalf("expected 0 with nothing guessed, got %v", got)
	}
	if got := AverageGuesses(3, 1); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
	if got := AverageGuesses(7, 2); got != 3.5 {
		t.Fatalf("expected 3.5, got %v", got)
	}
}

func TestGuessedPercentage(t *testing.T) {
	if got := GuessedPercentage(0, 0); got != 0 {
		t.Fatalf("expected 0 with no secrets, got %v", got)
	}
	if got := GuessedPercentage(1, 4); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}

func TestComputeTotals(t *testing.T) {
	games := []model.GameAggregate{
		{TotalGuesses: 6, NumbersGuessed: 2, SecretsGenerated: 3, Forfeits: 1},
		{TotalGuesses: 4, NumbersGuessed: 0, SecretsGenerated: 1},
		{TotalGuesses: 4, NumbersGuessed: 2, SecretsGenerated: 2},
	}
	totals := ComputeTotals(games)
	if totals.Games != 3 || totals.Guesses != 14 || totals.NumbersGuessed != 4 || totals.Secrets != 6 || totals.Forfeits != 1 {
		t.Fatalf("unexpected totals: %+v", totals)
	}
	if totals.AverageGuesses != 3.5 {
		t.Fatalf("expected average 3.5, got %v", totals.AverageGuesses)
	}
	if totals.BestAverage != 2 {
		t.Fatalf("expected best average 2, got %v", totals.BestAverage)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("expected min and max glyphs, got %q", got)
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Game", "Avg", "Guesses"}
	rows := [][]string{
		{"a1b2", "3.50", "12"},
		{"ffffffff", "10.00", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Game       Avg Guesses" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a1b2      3.50      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "ffffffff 10.00       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No games found." {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderGameTable(t *testing.T) {
	games := []model.GameAggregate{{
		PublicID:         "0f8fad5b-d9cb-469f-a165-70867728950e",
		EndedAt:          time.Date(2026, 2, 3, 4, 5, 0, 0, time.Local),
		Min:              1,
		Max:              10,
		MaxAttempts:      5,
		Source:           "file:guesses.txt",
		TotalGuesses:     9,
		NumbersGuessed:   3,
		SecretsGenerated: 4,
	}}
	var buf bytes.Buffer
	if err := RenderGameTable(&buf, games); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"0f8fad5b", "2026-02-03 04:05", "1-10", "3/4", "3.00", "75.0%", "file:guesses.txt"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramLines(t *testing.T) {
	lines := HistogramLines([]model.AttemptBucket{
		{Attempts: 1, Rounds: 1},
		{Attempts: 3, Rounds: 4},
	}, 8)
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %v", lines)
	}
	if !strings.HasSuffix(lines[1], " ##") {
		t.Fatalf("expected quarter bar, got %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "80.0% ########") {
		t.Fatalf("expected full bar, got %q", lines[2])
	}
}
