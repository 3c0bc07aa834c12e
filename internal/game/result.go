package game

import "fmt"

// Outcome classifies a submitted token.
type Outcome int

// Possible outcomes of Submit and Guess.
const (
	Invalid Outcome = iota
	Correct
	TooLow
	TooHigh
	BelowRange
	AboveRange
	Exit
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case TooLow:
		return "too low"
	case TooHigh:
		return "too high"
	case BelowRange:
		return "too small"
	case AboveRange:
		return "too large"
	case Exit:
		return "exit"
	default:
		return "invalid"
	}
}

// Result describes the effect of one token.
type Result struct {
	Outcome Outcome
	Token   string
	Guess   int
	// Attempt is the attempt number within the round that this guess used.
	Attempt int
	// Secret is set when the round ended and the number was revealed.
	Secret    int
	Forfeited bool
	// Summary is set for Exit.
	Summary Summary
}

// Describe renders the player-facing lines for a result.
func (r Rules) Describe(res Result) []string {
	var lines []string
	switch res.Outcome {
	case Correct:
		lines = append(lines, "Correct!", fmt.Sprintf("You have guessed: %d.", res.Guess))
	case AboveRange:
		lines = append(lines, fmt.Sprintf("You have entered: %d which is larger than %d.", res.Guess, r.Max))
	case BelowRange:
		lines = append(lines, fmt.Sprintf("You have entered: %d which is smaller than %d.", res.Guess, r.Min))
	case TooLow:
		lines = append(lines, fmt.Sprintf("You have guessed: %d, which is smaller than the random number.", res.Guess))
	case TooHigh:
		lines = append(lines, fmt.Sprintf("You have guessed: %d, which is larger than the random number.", res.Guess))
	case Exit:
		lines = append(lines, "Thanks for playing", r.DescribeSummary(res.Summary))
	default:
		lines = append(lines, fmt.Sprintf("Invalid input! You have typed %s", res.Token))
	}
	if res.Forfeited {
		lines = append(lines, fmt.Sprintf("Out of attempts! The number was %d.", res.Secret))
	}
	return lines
}

// DescribeSummary renders the end-of-game statistics line.
func (r Rules) DescribeSummary(sum Summary) string {
	line := fmt.Sprintf("It took you %d guesses to guess %d numbers: %.1f guesses average.",
		sum.TotalGuesses, sum.NumbersGuessed, sum.AverageGuesses)
	if r.Limited() {
		line += fmt.Sprintf(" You guessed %.1f%% of %d numbers (%d forfeited).",
			sum.GuessedPct, sum.SecretsGenerated, sum.Forfeits)
	}
	return line
}

// Prompt returns the input prompt.
func (r Rules) Prompt() string {
	return fmt.Sprintf("Enter between %d and %d (%s to exit):", r.Min, r.Max, r.ExitToken)
}
