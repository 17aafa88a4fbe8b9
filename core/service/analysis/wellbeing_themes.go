package analysis

import (
	"context"
	"fmt"
	"strings"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/logger"
)

// MatchThemes returns the themes whose name occurs in text, in registry order.
func MatchThemes(text string, themes []*domain.PsychologicalTheme) []*domain.PsychologicalTheme {
	lower := normalize(text)
	matched := make([]*domain.PsychologicalTheme, 0)
	for _, theme := range themes {
		name := normalize(strings.TrimSpace(theme.Name))
		if name != "" && strings.Contains(lower, name) {
			matched = append(matched, theme)
		}
	}
	return matched
}

// ThemeSeed is a default theme inserted into an empty registry.
type ThemeSeed struct {
	Name        string
	Description string
}

// ThemeService manages the psychological theme registry.
type ThemeService struct {
	repo  out.ThemeRepository
	seeds []ThemeSeed
	log   *logger.Logger
}

// NewThemeService creates a theme service.
func NewThemeService(repo out.ThemeRepository, seeds []ThemeSeed, log *logger.Logger) *ThemeService {
	if log == nil {
		log = logger.Default()
	}
	return &ThemeService{repo: repo, seeds: seeds, log: log}
}

// EnsureSeeded inserts the seed themes when the registry is empty.
// It returns the number of themes created.
func (s *ThemeService) EnsureSeeded(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count themes: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, seed := range s.seeds {
		_, isNew, err := s.repo.GetOrCreate(ctx, seed.Name, seed.Description)
		if err != nil {
			return created, fmt.Errorf("seed theme %q: %w", seed.Name, err)
		}
		if isNew {
			created++
		}
	}

	s.log.WithField("created", created).Info("theme registry seeded")
	return created, nil
}
