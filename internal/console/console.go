// Package console runs the line-oriented guessing loop.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/guessr/internal/game"
	"github.com/verte-zerg/guessr/internal/input"
)

// Run reads tokens from src and feeds them to the session until the exit
// token is seen, input is exhausted, or ctx is cancelled. Invalid tokens are
// reported on errOut; everything else goes to out.
func Run(ctx context.Context, session *game.Session, src *input.Source, out, errOut io.Writer) (game.Summary, error) {
	rules := session.Rules()
	scanner := bufio.NewScanner(src)
	scanner.Split(bufio.ScanWords)

	for session.Playing() {
		if ctx.Err() != nil {
			return finish(session, out)
		}
		if err := writeLines(out, promptLines(session)); err != nil {
			return game.Summary{}, fmt.Errorf("failed to write prompt: %w", err)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return game.Summary{}, fmt.Errorf("failed to read input: %w", err)
			}
			return finish(session, out)
		}
		// An interrupt during the blocking read discards the token it produced.
		if ctx.Err() != nil {
			return finish(session, out)
		}
		token := scanner.Text()
		if !src.Interactive {
			if _, err := fmt.Fprintf(out, "> %s\n", token); err != nil {
				return game.Summary{}, fmt.Errorf("failed to write output: %w", err)
			}
		}

		res, err := session.Submit(token)
		if err != nil {
			return game.Summary{}, err
		}
		w := out
		if res.Outcome == game.Invalid {
			w = errOut
		}
		lines := rules.Describe(res)
		if res.Outcome == game.Correct || res.Forfeited {
			lines = append(lines, "")
		}
		if err := writeLines(w, lines); err != nil {
			return game.Summary{}, fmt.Errorf("failed to write output: %w", err)
		}
		if res.Outcome == game.Exit {
			return res.Summary, nil
		}
	}
	return session.Summary(), nil
}

func promptLines(session *game.Session) []string {
	rules := session.Rules()
	if !rules.Limited() {
		return []string{rules.Prompt()}
	}
	return []string{fmt.Sprintf("%s [attempt %d/%d]", rules.Prompt(), session.Attempt(), rules.MaxAttempts)}
}

func finish(session *game.Session, out io.Writer) (game.Summary, error) {
	summary, err := session.Quit()
	if err != nil {
		return game.Summary{}, err
	}
	lines := session.Rules().Describe(game.Result{Outcome: game.Exit, Summary: summary})
	if err := writeLines(out, lines); err != nil {
		return summary, fmt.Errorf("failed to write summary: %w", err)
	}
	return summary, nil
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
