package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestViolentWordsRatio(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		violent int64
		want    float64
	}{
		{"no words", 0, 0, 0},
		{"violent without total", 0, 3, 0},
		{"third", 3, 1, 0.3333},
		{"two thirds", 3, 2, 0.6667},
		{"exact", 4, 1, 0.25},
		{"more violent than total", 2, 3, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Employee{TotalWordsCount: tt.total, ViolentWordsCount: tt.violent}
			if got := e.ViolentWordsRatio(); got != tt.want {
				t.Errorf("ratio = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViolentWordsPercent(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		violent int64
		want    float64
	}{
		{"no words", 0, 0, 0},
		{"third", 3, 1, 33.33},
		{"float noise", 10000, 1234, 12.34},
		{"tiny", 10000, 1, 0.01},
		{"all", 5, 5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Employee{TotalWordsCount: tt.total, ViolentWordsCount: tt.violent}
			if got := e.ViolentWordsPercent(); got != tt.want {
				t.Errorf("percent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrimaryTopicPriority(t *testing.T) {
	tests := []struct {
		name  string
		flags TopicFlags
		want  Topic
	}{
		{"all", TopicFlags{ContainsRacism: true, ContainsHarassment: true, ContainsStress: true}, TopicRacism},
		{"harassment over stress", TopicFlags{ContainsHarassment: true, ContainsStress: true}, TopicHarassment},
		{"discrimination over conflict", TopicFlags{ContainsDiscrimination: true, ContainsConflict: true}, TopicDiscrimination},
		{"stress over conflict", TopicFlags{ContainsStress: true, ContainsConflict: true}, TopicStress},
		{"conflict", TopicFlags{ContainsConflict: true}, TopicConflict},
		{"none", TopicFlags{ContainsAnySensitive: true}, TopicGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.PrimaryTopic(); got != tt.want {
				t.Errorf("PrimaryTopic() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGatewayErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("process: %w", &GatewayError{Stage: StageAnalyze, Err: cause})

	if !IsGatewayError(err) {
		t.Error("expected IsGatewayError")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable")
	}
	if IsGatewayError(ErrEmployeeNotFound) {
		t.Error("ErrEmployeeNotFound is not a gateway error")
	}
}
