// Package game implements the number-guessing session state machine.
package game

import (
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/guessr/internal/model"
	"github.com/verte-zerg/guessr/internal/rng"
	"github.com/verte-zerg/guessr/internal/stats"
)

// DefaultMaxAttempts is the per-round ceiling used when attempts are enabled without a value.
const DefaultMaxAttempts = 5

// Rules configures a session.
type Rules struct {
	Min       int
	Max       int
	ExitToken string
	// MaxAttempts caps guesses per round. Zero disables the ceiling.
	MaxAttempts int
}

// Limited reports whether rounds have an attempt ceiling.
func (r Rules) Limited() bool {
	return r.MaxAttempts > 0
}

func (r Rules) validate() error {
	if r.Min > r.Max {
		return ErrInvalidRange
	}
	if r.MaxAttempts < 0 {
		return ErrNegativeAttempts
	}
	token := strings.TrimSpace(r.ExitToken)
	if token == "" {
		return ErrEmptyExitToken
	}
	if _, err := strconv.Atoi(token); err == nil {
		return ErrNumericExitToken
	}
	return nil
}

// Summary holds running statistics for a session.
type Summary struct {
	TotalGuesses     int
	NumbersGuessed   int
	SecretsGenerated int
	Forfeits         int
	AverageGuesses   float64
	GuessedPct       float64
}

// Session holds all mutable state of one game.
type Session struct {
	rules Rules
	src   rng.Source

	secret  int
	playing bool

	totalGuesses     int
	numbersGuessed   int
	secretsGenerated int
	forfeits         int

	roundGuesses int
	rounds       []model.RoundRecord
}

// New starts a session with its first secret already drawn.
func New(rules Rules, src rng.Source) (*Session, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}
	rules.ExitToken = strings.TrimSpace(rules.ExitToken)
	s := &Session{
		rules:   rules,
		src:     src,
		playing: true,
	}
	s.newSecret()
	return s, nil
}

// Rules returns the session rules.
func (s *Session) Rules() Rules {
	return s.rules
}

// Playing reports whether the session accepts input.
func (s *Session) Playing() bool {
	return s.playing
}

// Secret returns the current secret number.
func (s *Session) Secret() int {
	return s.secret
}

// Attempt returns the 1-based number of the next attempt in the current
// round, or 0 when rounds are unlimited.
func (s *Session) Attempt() int {
	if !s.rules.Limited() {
		return 0
	}
	return s.roundGuesses + 1
}

// Rounds returns the finished rounds in order.
func (s *Session) Rounds() []model.RoundRecord {
	return append([]model.RoundRecord(nil), s.rounds...)
}

// Submit classifies a raw token and applies it.
func (s *Session) Submit(token string) (Result, error) {
	if !s.playing {
		return Result{}, ErrSessionStopped
	}
	token = strings.TrimSpace(token)
	if n, err := strconv.Atoi(token); err == nil {
		return s.Guess(n)
	}
	if strings.EqualFold(token, s.rules.ExitToken) {
		summary, err := s.Quit()
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: Exit, Token: token, Summary: summary}, nil
	}
	return Result{Outcome: Invalid, Token: token}, nil
}

// Guess applies an integer guess.
func (s *Session) Guess(n int) (Result, error) {
	if !s.playing {
		return Result{}, ErrSessionStopped
	}
	s.totalGuesses++
	s.roundGuesses++
	res := Result{
		Token:   strconv.Itoa(n),
		Guess:   n,
		Attempt: s.roundGuesses,
	}

	switch {
	case n == s.secret:
		s.numbersGuessed++
		res.Outcome = Correct
		res.Secret = s.secret
		s.closeRound(model.RoundGuessed)
		return res, nil
	case n > s.rules.Max:
		res.Outcome = AboveRange
	case n < s.rules.Min:
		res.Outcome = BelowRange
	case n < s.secret:
		res.Outcome = TooLow
	default:
		res.Outcome = TooHigh
	}

	if s.rules.Limited() && s.roundGuesses >= s.rules.MaxAttempts {
		res.Forfeited = true
		res.Secret = s.secret
		s.forfeits++
		s.closeRound(model.RoundForfeited)
	}
	return res, nil
}

// Quit stops the session and returns the final statistics.
func (s *Session) Quit() (Summary, error) {
	if !s.playing {
		return Summary{}, ErrSessionStopped
	}
	s.playing = false
	if s.roundGuesses > 0 {
		s.rounds = append(s.rounds, model.RoundRecord{
			Ordinal:  len(s.rounds) + 1,
			Secret:   s.secret,
			Attempts: s.roundGuesses,
			Outcome:  model.RoundAbandoned,
		})
		s.roundGuesses = 0
	}
	return s.Summary(), nil
}

// Summary returns the current statistics.
func (s *Session) Summary() Summary {
	return Summary{
		TotalGuesses:     s.totalGuesses,
		NumbersGuessed:   s.numbersGuessed,
		SecretsGenerated: s.secretsGenerated,
		Forfeits:         s.forfeits,
		AverageGuesses:   stats.AverageGuesses(s.totalGuesses, s.numbersGuessed),
		GuessedPct:       stats.GuessedPercentage(s.numbersGuessed, s.secretsGenerated),
	}
}

// Record builds the persisted form of a session.
func (s *Session) Record(source string, startedAt, endedAt time.Time) model.GameRecord {
	return model.GameRecord{
		StartedAt:        startedAt,
		EndedAt:          endedAt,
		Min:              s.rules.Min,
		Max:              s.rules.Max,
		MaxAttempts:      s.rules.MaxAttempts,
		Source:           source,
		TotalGuesses:     s.totalGuesses,
		NumbersGuessed:   s.numbersGuessed,
		SecretsGenerated: s.secretsGenerated,
		Forfeits:         s.forfeits,
	}
}

func (s *Session) closeRound(outcome model.RoundOutcome) {
	s.rounds = append(s.rounds, model.RoundRecord{
		Ordinal:  len(s.rounds) + 1,
		Secret:   s.secret,
		Attempts: s.roundGuesses,
		Outcome:  outcome,
	})
	s.roundGuesses = 0
	s.newSecret()
}

func (s *Session) newSecret() {
	s.secret = s.src.Next(s.rules.Min, s.rules.Max)
	s.secretsGenerated++
}
