// Package auditlog writes analysis audits to the structured log when no
// audit store is configured.
package auditlog

import (
	"context"

	"wellbeing_server/core/domain"
	"wellbeing_server/core/port/out"
	"wellbeing_server/pkg/logger"
)

// Sink implements out.AuditSink on top of the logger.
type Sink struct {
	log *logger.Logger
}

func NewSink(log *logger.Logger) *Sink {
	if log == nil {
		log = logger.Default()
	}
	return &Sink{log: log}
}

func (s *Sink) Record(ctx context.Context, audit *domain.AnalysisAudit) error {
	fields := map[string]any{
		"text":          audit.Message,
		"flags":         audit.Flags,
		"raw_scopeflag": audit.RawScopeFlag,
		"scopeflag":     audit.ScopeFlag,
		"violent_words": audit.ViolentWords,
		"degraded":      audit.Degraded,
	}
	if audit.EmployeeID != nil {
		fields["employee_id"] = *audit.EmployeeID
	}
	if len(audit.Overrides) > 0 {
		fields["overrides"] = audit.Overrides
	}
	if len(audit.Themes) > 0 {
		fields["themes"] = audit.Themes
	}
	if audit.Error != "" {
		fields["error"] = audit.Error
	}

	s.log.WithContext(ctx).WithFields(fields).Info("analysis audit")
	return nil
}

var _ out.AuditSink = (*Sink)(nil)
