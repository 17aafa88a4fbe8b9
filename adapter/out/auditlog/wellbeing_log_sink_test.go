package auditlog

import (
	"bytes"
	"context"
	"testing"

	"wellbeing_server/core/domain"
	"wellbeing_server/pkg/logger"

	"github.com/goccy/go-json"
)

func TestSinkRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(logger.New(logger.Config{Level: logger.LevelInfo, Output: &buf}))

	id := int64(7)
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	err := sink.Record(ctx, &domain.AnalysisAudit{
		EmployeeID:   &id,
		Message:      "Mon manager me harcèle",
		Flags:        domain.TopicFlags{ContainsHarassment: true},
		RawScopeFlag: true,
		Overrides:    []domain.Override{domain.OverrideWorkplaceScope},
		ViolentWords: []string{},
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}

	if line["message"] != "analysis audit" {
		t.Errorf("message = %v", line["message"])
	}
	if line["text"] != "Mon manager me harcèle" {
		t.Errorf("text = %v", line["text"])
	}
	if line["request_id"] != "req-42" {
		t.Errorf("request_id = %v", line["request_id"])
	}
	if line["employee_id"] != float64(7) {
		t.Errorf("employee_id = %v", line["employee_id"])
	}
	if line["raw_scopeflag"] != true || line["scopeflag"] != false {
		t.Errorf("scope fields = %v / %v", line["raw_scopeflag"], line["scopeflag"])
	}
	if _, ok := line["error"]; ok {
		t.Error("error field should be omitted when empty")
	}
}
