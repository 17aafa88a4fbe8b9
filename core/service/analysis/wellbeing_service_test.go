package analysis

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"wellbeing_server/core/domain"
	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/metrics"
	"wellbeing_server/pkg/resilience"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func seededThemes() *fakeThemeRepo {
	return &fakeThemeRepo{themes: []*domain.PsychologicalTheme{
		{ID: 1, Name: "Harcèlement"},
		{ID: 2, Name: "Stress"},
		{ID: 3, Name: "Conflit"},
	}}
}

type serviceFixture struct {
	svc     *Service
	gateway *fakeGateway
	stats   *memStats
	themes  *fakeThemeRepo
	audit   *recordingAudit
	metrics *metrics.Collector
	vocab   *Vocabulary
}

func newFixture(t *testing.T, gw *fakeGateway) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		gateway: gw,
		stats:   newMemStats(1),
		themes:  seededThemes(),
		audit:   &recordingAudit{},
		metrics: metrics.NewCollector(),
		vocab:   testVocabulary(t),
	}
	f.svc = NewService(ServiceDeps{
		Vocabulary: f.vocab,
		Gateway:    f.gateway,
		Themes:     f.themes,
		Stats:      f.stats,
		Audit:      f.audit,
		Metrics:    f.metrics,
	})
	return f
}

func TestProcessMessageInScope(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{
		Response:     "Je comprends votre situation.",
		ViolentWords: []string{"peur", "stress"},
		ScopeFlag:    false,
	}})

	res, err := f.svc.ProcessMessage(context.Background(), "Le stress au travail me fait peur", int64Ptr(1))
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if res.ScopeFlag {
		t.Error("expected in-scope result")
	}
	if res.ViolentWordsCount != 2 {
		t.Errorf("ViolentWordsCount = %d, want 2", res.ViolentWordsCount)
	}
	if res.TotalWords == nil || *res.TotalWords != 7 {
		t.Errorf("TotalWords = %v, want 7", res.TotalWords)
	}
	if !reflect.DeepEqual(res.DetectedThemes, []string{"Stress"}) {
		t.Errorf("DetectedThemes = %v", res.DetectedThemes)
	}
	if !reflect.DeepEqual(res.DetectedSignals, []string{"stress"}) {
		t.Errorf("DetectedSignals = %v", res.DetectedSignals)
	}
	if res.Error != "" {
		t.Errorf("unexpected Error %q", res.Error)
	}

	if f.stats.totals[1] != 7 || f.stats.violent[1] != 2 || len(f.stats.occurrences[1]) != 2 {
		t.Errorf("stats not applied: %+v", f.stats)
	}
	if f.stats.themes[1][2] != 1 {
		t.Errorf("Stress counter = %d, want 1", f.stats.themes[1][2])
	}
	if got := testutil.ToFloat64(f.metrics.MessagesProcessed.WithLabelValues("in_scope")); got != 1 {
		t.Errorf("in_scope metric = %v", got)
	}
	if len(f.audit.entries) != 1 || f.audit.entries[0].Degraded {
		t.Errorf("audit = %+v", f.audit.entries)
	}
}

func TestProcessMessageHarassmentScenario(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{
		Response:  refusalText,
		ScopeFlag: true,
	}})

	res, err := f.svc.ProcessMessage(context.Background(), "Mon manager me harcèle tous les jours", nil)
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if res.ScopeFlag {
		t.Error("harassment message must be in scope")
	}
	if res.Response != f.vocab.CannedResponses[domain.TopicHarassment] {
		t.Errorf("Response = %q", res.Response)
	}
	if res.TotalWords != nil || res.DetectedThemes != nil {
		t.Error("anonymous message should carry no statistics")
	}
	if got := testutil.ToFloat64(f.metrics.ScopeOverrides.WithLabelValues(string(domain.OverrideCannedResponse))); got != 1 {
		t.Errorf("canned override metric = %v", got)
	}
}

func TestProcessMessageOutOfScopeScenario(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{
		Response:     refusalText,
		ViolentWords: []string{"chat"},
		ScopeFlag:    true,
	}})

	res, err := f.svc.ProcessMessage(context.Background(), "Comment va mon chat aujourd'hui", int64Ptr(1))
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if !res.ScopeFlag {
		t.Error("expected out-of-scope result")
	}
	if res.Response != refusalText {
		t.Errorf("Response = %q, want refusal", res.Response)
	}
	if f.stats.totals[1] != 6 {
		t.Errorf("total words = %d, want 6", f.stats.totals[1])
	}
	if f.stats.violent[1] != 0 || len(f.stats.occurrences[1]) != 0 {
		t.Error("out-of-scope message must not record violent words")
	}
	for id, n := range f.stats.themes[1] {
		if n != 0 {
			t.Errorf("theme %d incremented", id)
		}
	}
}

func TestProcessMessageGatewayFallback(t *testing.T) {
	f := newFixture(t, &fakeGateway{
		analyzeErr: errUpstream,
		fallback:   "Je suis là pour vous aider.",
	})

	res, err := f.svc.ProcessMessage(context.Background(), "Bonjour", int64Ptr(1))
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if res.Response != "Je suis là pour vous aider." {
		t.Errorf("Response = %q", res.Response)
	}
	if res.ScopeFlag || len(res.ViolentWords) != 0 || res.ViolentWordsCount != 0 {
		t.Errorf("degraded result = %+v", res)
	}
	if res.Error == "" {
		t.Error("degraded result should carry the gateway error")
	}
	if f.gateway.fallbackCalls != 1 {
		t.Errorf("fallback calls = %d, want 1", f.gateway.fallbackCalls)
	}
	if f.stats.totals[1] != 1 || f.stats.violent[1] != 0 {
		t.Errorf("stats = total %d violent %d", f.stats.totals[1], f.stats.violent[1])
	}
	if got := testutil.ToFloat64(f.metrics.GatewayFailures.WithLabelValues(domain.StageAnalyze)); got != 1 {
		t.Errorf("analyze failures = %v", got)
	}
	if !f.audit.entries[0].Degraded {
		t.Error("audit should mark the result degraded")
	}
}

func TestProcessMessageFallbackFailureIsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		code   string
		status int
	}{
		{"upstream error", errUpstream, apperr.CodeExternalError, http.StatusBadGateway},
		{"breaker open", resilience.ErrCircuitOpen, apperr.CodeServiceUnavailable, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, apperr.CodeTimeout, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, &fakeGateway{analyzeErr: tt.cause, fallbackErr: tt.cause})

			res, err := f.svc.ProcessMessage(context.Background(), "Bonjour", int64Ptr(1))
			if err == nil {
				t.Fatalf("expected error, got %+v", res)
			}

			if !apperr.IsAppError(err) {
				t.Fatalf("err = %v, want an AppError", err)
			}
			appErr := apperr.AsAppError(err)
			if appErr.Code != tt.code || appErr.HTTPStatus() != tt.status {
				t.Errorf("got %s/%d, want %s/%d", appErr.Code, appErr.HTTPStatus(), tt.code, tt.status)
			}
			if appErr.Details["stage"] != domain.StageFallback {
				t.Errorf("details = %v", appErr.Details)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("cause should be preserved")
			}
			if f.stats.totals[1] != 0 {
				t.Error("no statistics should be written when the request fails")
			}
		})
	}
}

func TestProcessMessageUnknownEmployee(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{
		Response:     "D'accord.",
		ViolentWords: []string{"peur"},
	}})

	res, err := f.svc.ProcessMessage(context.Background(), "J'ai peur au travail", int64Ptr(42))
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if res.Response != "D'accord." {
		t.Errorf("response should still be returned, got %q", res.Response)
	}
	if res.Error != f.vocab.EmployeeNotFound {
		t.Errorf("Error = %q, want %q", res.Error, f.vocab.EmployeeNotFound)
	}
	if res.TotalWords != nil {
		t.Error("TotalWords should be absent when stats were not recorded")
	}
}

func TestProcessMessageStorageFailure(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{Response: "ok"}})
	f.stats.err = errors.New("disk full")

	_, err := f.svc.ProcessMessage(context.Background(), "Bonjour", int64Ptr(1))
	appErr := apperr.AsAppError(err)
	if appErr == nil || appErr.Code != apperr.CodeDatabaseError {
		t.Fatalf("err = %v, want database error", err)
	}
}

func TestProcessMessageThemeRegistryFailure(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{Response: "ok"}})
	f.themes.err = errors.New("connection reset")

	if _, err := f.svc.ProcessMessage(context.Background(), "Bonjour", nil); err != nil {
		t.Fatalf("anonymous messages do not read the registry: %v", err)
	}

	_, err := f.svc.ProcessMessage(context.Background(), "Bonjour", int64Ptr(1))
	if appErr := apperr.AsAppError(err); appErr == nil || appErr.Code != apperr.CodeDatabaseError {
		t.Fatalf("err = %v, want database error", err)
	}
}

func TestProcessMessageConcurrentSameEmployee(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &domain.GatewayResult{
		Response:     "Je comprends.",
		ViolentWords: []string{"peur", "colère"},
	}})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.ProcessMessage(context.Background(), "Conflit et stress au bureau", int64Ptr(1)); err != nil {
				t.Errorf("ProcessMessage: %v", err)
			}
		}()
	}
	wg.Wait()

	if f.stats.violent[1] != 2*n {
		t.Errorf("violent_words_count = %d, want %d", f.stats.violent[1], 2*n)
	}
	if len(f.stats.occurrences[1]) != 2*n {
		t.Errorf("occurrences = %d, want %d", len(f.stats.occurrences[1]), 2*n)
	}
	if f.stats.themes[1][2] != n || f.stats.themes[1][3] != n {
		t.Errorf("theme counters = %v", f.stats.themes[1])
	}
	if f.stats.totals[1] != 5*n {
		t.Errorf("total = %d, want %d", f.stats.totals[1], 5*n)
	}
}
