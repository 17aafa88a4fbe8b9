package analysis

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/logger"
	"wellbeing_server/pkg/metrics"
	"wellbeing_server/pkg/resilience"
)

// Service is the message-processing pipeline.
type Service struct {
	vocab      *Vocabulary
	detector   *Detector
	reconciler *Reconciler
	aggregator *Aggregator
	gateway    out.AnalysisGateway
	themes     out.ThemeRepository
	audit      out.AuditSink
	metrics    *metrics.Collector
	log        *logger.Logger
}

// ServiceDeps are the collaborators of Service. Audit, Metrics and Logger are optional.
type ServiceDeps struct {
	Vocabulary *Vocabulary
	Gateway    out.AnalysisGateway
	Themes     out.ThemeRepository
	Stats      out.StatsRepository
	Audit      out.AuditSink
	Metrics    *metrics.Collector
	Logger     *logger.Logger
}

// NewService wires the pipeline components.
func NewService(deps ServiceDeps) *Service {
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		vocab:      deps.Vocabulary,
		detector:   NewDetector(deps.Vocabulary),
		reconciler: NewReconciler(deps.Vocabulary),
		aggregator: NewAggregator(deps.Stats),
		gateway:    deps.Gateway,
		themes:     deps.Themes,
		audit:      deps.Audit,
		metrics:    deps.Metrics,
		log:        log.WithField("component", "analysis"),
	}
}

// ProcessMessage runs the full pipeline for one message.
//
// The structured model call runs concurrently with the theme registry fetch.
// A failed structured call degrades to the free-text fallback; if that also
// fails the request fails. An unknown employee is reported in result.Error
// and no statistics are written.
func (s *Service) ProcessMessage(ctx context.Context, message string, employeeID *int64) (*domain.AnalysisResult, error) {
	flags := s.detector.Detect(message)
	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"text":  message,
		"flags": flags,
	})
	if employeeID != nil {
		log = log.WithField("employee_id", *employeeID)
	}

	var (
		gw     *domain.GatewayResult
		gwErr  error
		themes []*domain.PsychologicalTheme
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		gw, gwErr = s.gateway.Analyze(gctx, message)
		s.metrics.RecordGatewayCall(domain.StageAnalyze, time.Since(start), gwErr)
		return nil
	})
	if employeeID != nil {
		g.Go(func() error {
			var err error
			themes, err = s.themes.List(gctx)
			return err
		})
	}

	tokens := Tokenize(message)
	signals := s.detector.Signals(message)

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("theme registry unavailable")
		return nil, apperr.DatabaseError("list themes", err)
	}

	audit := &domain.AnalysisAudit{
		EmployeeID: employeeID,
		Message:    message,
		Flags:      flags,
		CreatedAt:  time.Now().UTC(),
	}
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		audit.RequestID = reqID
	}

	var rec *domain.Reconciliation
	result := &domain.AnalysisResult{DetectedSignals: signals}

	if gwErr != nil {
		log.WithError(gwErr).Warn("structured analysis failed, using fallback completion")

		start := time.Now()
		text, err := s.gateway.Fallback(ctx, message)
		s.metrics.RecordGatewayCall(domain.StageFallback, time.Since(start), err)
		if err != nil {
			log.WithError(err).Error("fallback completion failed")
			audit.Degraded = true
			audit.Error = err.Error()
			s.record(ctx, audit)
			return nil, fallbackFailure(err)
		}

		rec = &domain.Reconciliation{Response: text, ViolentWords: []string{}}
		result.Error = gwErr.Error()
		audit.Degraded = true
		audit.Error = gwErr.Error()
	} else {
		rec = s.reconciler.Reconcile(gw, flags)
		for _, o := range rec.Overrides {
			s.metrics.RecordOverride(string(o))
		}
		if len(rec.Overrides) > 0 {
			log.WithFields(map[string]any{
				"raw_scopeflag": rec.RawScopeFlag,
				"overrides":     rec.Overrides,
			}).Info("model scope decision overridden")
		}
	}

	result.Response = rec.Response
	result.ViolentWords = rec.ViolentWords
	result.ViolentWordsCount = len(rec.ViolentWords)
	result.ScopeFlag = rec.ScopeFlag

	audit.RawScopeFlag = rec.RawScopeFlag
	audit.ScopeFlag = rec.ScopeFlag
	audit.Overrides = rec.Overrides
	audit.ViolentWords = rec.ViolentWords

	s.metrics.RecordMessage(rec.ScopeFlag)

	if employeeID != nil {
		detected := MatchThemes(message, themes)
		audit.Themes = domain.ThemeNames(detected)

		applied, err := s.aggregator.Apply(ctx, *employeeID, len(tokens), rec, detected)
		switch {
		case errors.Is(err, domain.ErrEmployeeNotFound):
			log.Warn("employee not found, statistics not recorded")
			result.Error = s.vocab.EmployeeNotFound
			audit.Error = result.Error
		case err != nil:
			log.WithError(err).Error("failed to apply statistics")
			audit.Error = err.Error()
			s.record(ctx, audit)
			return nil, apperr.DatabaseError("apply stats", err)
		default:
			total := applied.TotalWords
			result.TotalWords = &total
			result.DetectedThemes = applied.DetectedThemes
			if applied.ThemesIncremented > 0 {
				s.metrics.RecordStats(applied.ViolentWordsRecorded, applied.DetectedThemes)
			} else {
				s.metrics.RecordStats(applied.ViolentWordsRecorded, nil)
			}
		}
	}

	s.record(ctx, audit)
	return result, nil
}

// fallbackFailure maps the terminal gateway error to the client-facing error.
func fallbackFailure(err error) *apperr.AppError {
	const service = "language model"

	var appErr *apperr.AppError
	switch {
	case resilience.IsOpen(err):
		appErr = apperr.ServiceUnavailable(service, err)
	case errors.Is(err, context.DeadlineExceeded):
		appErr = apperr.Timeout(service, err)
	default:
		appErr = apperr.ExternalError(service, err)
	}
	return appErr.WithDetail("stage", domain.StageFallback)
}

func (s *Service) record(ctx context.Context, audit *domain.AnalysisAudit) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, audit); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("failed to record analysis audit")
	}
}
