package config

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed packs/*.yaml
var packFS embed.FS

const defaultPack = "packs/fr.yaml"

// TopicTerms holds the per-category term lists used by the sensitive-topic detector.
type TopicTerms struct {
	Racism         []string `yaml:"racism"`
	Harassment     []string `yaml:"harassment"`
	Discrimination []string `yaml:"discrimination"`
	Stress         []string `yaml:"stress"`
	Conflict       []string `yaml:"conflict"`
}

// CannedResponses are the topic-specific replies substituted by the reconciler.
type CannedResponses struct {
	Racism         string `yaml:"racism"`
	Harassment     string `yaml:"harassment"`
	Discrimination string `yaml:"discrimination"`
	Stress         string `yaml:"stress"`
	Conflict       string `yaml:"conflict"`
	Generic        string `yaml:"generic"`
}

// SeedTheme is a psychological theme inserted when the registry is empty.
type SeedTheme struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Prompts are the instructions sent to the language model.
type Prompts struct {
	System   string `yaml:"system"`
	Analysis string `yaml:"analysis"`
}

// LanguagePack is the vocabulary and text the analysis pipeline runs on.
// It is loaded once at startup and never mutated.
type LanguagePack struct {
	Language          string          `yaml:"language"`
	DistressSignals   []string        `yaml:"distress_signals"`
	Topics            TopicTerms      `yaml:"topics"`
	SensitiveTerms    []string        `yaml:"sensitive_terms"`
	WorkplaceKeywords []string        `yaml:"workplace_keywords"`
	RefusalMarker     string          `yaml:"refusal_marker"`
	FallbackResponse  string          `yaml:"fallback_response"`
	EmployeeNotFound  string          `yaml:"employee_not_found"`
	CannedResponses   CannedResponses `yaml:"canned_responses"`
	Themes            []SeedTheme     `yaml:"themes"`
	Prompts           Prompts         `yaml:"prompts"`
}

// LoadLanguagePack reads the pack at path, or the embedded French pack when path is empty.
func LoadLanguagePack(path string) (*LanguagePack, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = packFS.ReadFile(defaultPack)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read language pack: %w", err)
	}
	return ParseLanguagePack(data)
}

// ParseLanguagePack decodes and validates a YAML language pack.
func ParseLanguagePack(data []byte) (*LanguagePack, error) {
	var pack LanguagePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse language pack: %w", err)
	}
	if err := pack.Validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

// Validate rejects packs missing data the pipeline cannot run without.
func (p *LanguagePack) Validate() error {
	required := []struct {
		field string
		n     int
	}{
		{"distress_signals", len(p.DistressSignals)},
		{"sensitive_terms", len(p.SensitiveTerms)},
		{"workplace_keywords", len(p.WorkplaceKeywords)},
		{"topics.racism", len(p.Topics.Racism)},
		{"topics.harassment", len(p.Topics.Harassment)},
		{"topics.discrimination", len(p.Topics.Discrimination)},
		{"topics.stress", len(p.Topics.Stress)},
		{"topics.conflict", len(p.Topics.Conflict)},
		{"refusal_marker", len(p.RefusalMarker)},
		{"fallback_response", len(p.FallbackResponse)},
		{"canned_responses.generic", len(p.CannedResponses.Generic)},
		{"prompts.system", len(p.Prompts.System)},
		{"prompts.analysis", len(p.Prompts.Analysis)},
	}
	for _, r := range required {
		if r.n == 0 {
			return fmt.Errorf("language pack: %s must not be empty", r.field)
		}
	}
	if p.EmployeeNotFound == "" {
		p.EmployeeNotFound = "employee not found"
	}
	return nil
}
