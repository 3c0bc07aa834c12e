// Package model defines shared data structures.
package model

import "time"

// Config defines play settings.
type Config struct {
	Min         int
	Max         int
	ExitToken   string
	MaxAttempts int
	InputPath   string
	Seed        int64
	TUI         bool
	Save        bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RoundOutcome describes how a round ended.
type RoundOutcome string

// Round outcomes stored with each round.
const (
	RoundGuessed   RoundOutcome = "guessed"
	RoundForfeited RoundOutcome = "forfeited"
	RoundAbandoned RoundOutcome = "abandoned"
)

// RoundRecord captures one finished round.
type RoundRecord struct {
	Ordinal  int
	Secret   int
	Attempts int
	Outcome  RoundOutcome
}

// GameRecord captures a completed game.
type GameRecord struct {
	PublicID         string
	StartedAt        time.Time
	EndedAt          time.Time
	Min              int
	Max              int
	MaxAttempts      int
	Source           string
	TotalGuesses     int
	NumbersGuessed   int
	SecretsGenerated int
	Forfeits         int
}

// GameAggregate summarizes a stored game for reporting.
type GameAggregate struct {
	GameID           int64
	PublicID         string
	EndedAt          time.Time
	Min              int
	Max              int
	MaxAttempts      int
	Source           string
	TotalGuesses     int
	NumbersGuessed   int
	SecretsGenerated int
	Forfeits         int
}

// AttemptBucket counts guessed rounds that took a given number of attempts.
type AttemptBucket struct {
	Attempts int
	Rounds   int
}
