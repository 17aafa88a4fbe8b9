package out

import (
	"context"

	"wellbeing_server/core/domain"
)

// AnalysisGateway is the language model behind the assistant.
// Failures are returned as *domain.GatewayError.
type AnalysisGateway interface {
	// Analyze requests the structured response/violent_words/scopeflag object.
	Analyze(ctx context.Context, message string) (*domain.GatewayResult, error)
	// Fallback requests a free-text reply using only the persona prompt.
	Fallback(ctx context.Context, message string) (string, error)
}

// AuditSink records one audit entry per processed message.
type AuditSink interface {
	Record(ctx context.Context, audit *domain.AnalysisAudit) error
}
