package analysis

import (
	"context"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"
)

// Aggregator turns one reconciled message into a statistics delta and commits it.
type Aggregator struct {
	stats out.StatsRepository
	now   func() time.Time
}

// NewAggregator creates an aggregator.
func NewAggregator(stats out.StatsRepository) *Aggregator {
	return &Aggregator{stats: stats, now: time.Now}
}

// Apply records tokenCount words for the employee. Violent words and theme
// increments are only recorded when the final decision is in scope.
// It returns domain.ErrEmployeeNotFound, having persisted nothing, for an unknown employee.
func (a *Aggregator) Apply(ctx context.Context, employeeID int64, tokenCount int, final *domain.Reconciliation, themes []*domain.PsychologicalTheme) (*domain.AppliedStats, error) {
	delta := &domain.StatsDelta{
		EmployeeID: employeeID,
		TokenCount: tokenCount,
		At:         a.now().UTC(),
	}

	if final.InScope() {
		if len(final.ViolentWords) > 0 {
			delta.ViolentWords = final.ViolentWords
		}
		for _, t := range themes {
			delta.ThemeIDs = append(delta.ThemeIDs, t.ID)
		}
	}

	if err := a.stats.ApplyStats(ctx, delta); err != nil {
		return nil, err
	}

	return &domain.AppliedStats{
		EmployeeID:           employeeID,
		TotalWords:           tokenCount,
		ViolentWordsRecorded: len(delta.ViolentWords),
		DetectedThemes:       domain.ThemeNames(themes),
		ThemesIncremented:    len(delta.ThemeIDs),
	}, nil
}
