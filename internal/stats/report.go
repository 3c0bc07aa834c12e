package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/guessr/internal/model"
	"github.com/verte-zerg/guessr/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Games           []model.GameAggregate
	WindowGameIDs   []int64
	Histogram       []model.AttemptBucket
	HistogramWindow []model.AttemptBucket
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	games, err := st.ListGames(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	allIDs := gameIDs(games)
	windowIDs := lastGameIDs(games, cfg.CurveWindow)
	histogram, err := st.AttemptHistogram(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	histogramWindow, err := st.AttemptHistogram(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Games:           games,
		WindowGameIDs:   windowIDs,
		Histogram:       histogram,
		HistogramWindow: histogramWindow,
	}, nil
}

// Render writes the full text report.
func (r Report) Render(w io.Writer, window int) error {
	if err := RenderSummary(w, r.Games); err != nil {
		return err
	}
	if len(r.Games) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Games, window); err != nil {
		return err
	}
	if err := RenderGameTable(w, r.Games); err != nil {
		return err
	}
	return RenderHistogram(w, r.Histogram)
}

func gameIDs(games []model.GameAggregate) []int64 {
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.GameID
	}
	return ids
}

func lastGameIDs(games []model.GameAggregate, window int) []int64 {
	if window <= 0 || len(games) <= window {
		return gameIDs(games)
	}
	return gameIDs(games[len(games)-window:])
}
