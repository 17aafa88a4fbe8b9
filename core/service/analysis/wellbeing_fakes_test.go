package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"wellbeing_server/config"
	"wellbeing_server/core/domain"
)

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	pack, err := config.LoadLanguagePack("")
	if err != nil {
		t.Fatalf("load language pack: %v", err)
	}
	return &Vocabulary{
		DistressSignals:   pack.DistressSignals,
		Racism:            pack.Topics.Racism,
		Harassment:        pack.Topics.Harassment,
		Discrimination:    pack.Topics.Discrimination,
		Stress:            pack.Topics.Stress,
		Conflict:          pack.Topics.Conflict,
		SensitiveTerms:    pack.SensitiveTerms,
		WorkplaceKeywords: pack.WorkplaceKeywords,
		RefusalMarker:     pack.RefusalMarker,
		FallbackResponse:  pack.FallbackResponse,
		EmployeeNotFound:  pack.EmployeeNotFound,
		CannedResponses: map[domain.Topic]string{
			domain.TopicRacism:         pack.CannedResponses.Racism,
			domain.TopicHarassment:     pack.CannedResponses.Harassment,
			domain.TopicDiscrimination: pack.CannedResponses.Discrimination,
			domain.TopicStress:         pack.CannedResponses.Stress,
			domain.TopicConflict:       pack.CannedResponses.Conflict,
			domain.TopicGeneric:        pack.CannedResponses.Generic,
		},
	}
}

const refusalText = "Je suis désolé, mais je suis uniquement conçu pour aider avec les situations de stress et de bien-être psychologique dans le contexte professionnel."

type fakeGateway struct {
	result      *domain.GatewayResult
	analyzeErr  error
	fallback    string
	fallbackErr error

	mu            sync.Mutex
	analyzeCalls  int
	fallbackCalls int
}

func (g *fakeGateway) Analyze(ctx context.Context, message string) (*domain.GatewayResult, error) {
	g.mu.Lock()
	g.analyzeCalls++
	g.mu.Unlock()
	if g.analyzeErr != nil {
		return nil, &domain.GatewayError{Stage: domain.StageAnalyze, Err: g.analyzeErr}
	}
	r := *g.result
	return &r, nil
}

func (g *fakeGateway) Fallback(ctx context.Context, message string) (string, error) {
	g.mu.Lock()
	g.fallbackCalls++
	g.mu.Unlock()
	if g.fallbackErr != nil {
		return "", &domain.GatewayError{Stage: domain.StageFallback, Err: g.fallbackErr}
	}
	return g.fallback, nil
}

type fakeThemeRepo struct {
	mu     sync.Mutex
	themes []*domain.PsychologicalTheme
	err    error
}

func (r *fakeThemeRepo) List(ctx context.Context) ([]*domain.PsychologicalTheme, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.PsychologicalTheme(nil), r.themes...), nil
}

func (r *fakeThemeRepo) GetOrCreate(ctx context.Context, name, description string) (*domain.PsychologicalTheme, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.themes {
		if t.Name == name {
			return t, false, nil
		}
	}
	t := &domain.PsychologicalTheme{ID: int64(len(r.themes) + 1), Name: name, Description: description}
	r.themes = append(r.themes, t)
	return t, true, nil
}

func (r *fakeThemeRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.themes), nil
}

// memStats is an in-memory StatsRepository keyed by employee id.
type memStats struct {
	mu          sync.Mutex
	totals      map[int64]int64
	violent     map[int64]int64
	occurrences map[int64][]string
	themes      map[int64]map[int64]int64
	err         error
}

func newMemStats(employeeIDs ...int64) *memStats {
	s := &memStats{
		totals:      map[int64]int64{},
		violent:     map[int64]int64{},
		occurrences: map[int64][]string{},
		themes:      map[int64]map[int64]int64{},
	}
	for _, id := range employeeIDs {
		s.totals[id] = 0
		s.themes[id] = map[int64]int64{}
	}
	return s
}

func (s *memStats) ApplyStats(ctx context.Context, d *domain.StatsDelta) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.totals[d.EmployeeID]; !ok {
		return domain.ErrEmployeeNotFound
	}
	s.totals[d.EmployeeID] += int64(d.TokenCount)
	s.violent[d.EmployeeID] += int64(len(d.ViolentWords))
	s.occurrences[d.EmployeeID] = append(s.occurrences[d.EmployeeID], d.ViolentWords...)
	for _, id := range d.ThemeIDs {
		s.themes[d.EmployeeID][id]++
	}
	return nil
}

func (s *memStats) ResetAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.totals {
		s.totals[id] = 0
		s.violent[id] = 0
	}
	s.occurrences = map[int64][]string{}
	return int64(len(s.totals)), nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*domain.AnalysisAudit
}

func (a *recordingAudit) Record(ctx context.Context, audit *domain.AnalysisAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, audit)
	return nil
}

var errUpstream = errors.New("upstream unavailable")

func int64Ptr(v int64) *int64 { return &v }
