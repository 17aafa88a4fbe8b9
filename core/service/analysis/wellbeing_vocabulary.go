package analysis

import "wellbeing_server/core/domain"

// Vocabulary is the language-specific data the pipeline runs on.
type Vocabulary struct {
	DistressSignals   []string
	Racism            []string
	Harassment        []string
	Discrimination    []string
	Stress            []string
	Conflict          []string
	SensitiveTerms    []string
	WorkplaceKeywords []string

	RefusalMarker    string
	FallbackResponse string
	EmployeeNotFound string
	CannedResponses  map[domain.Topic]string
}

// CannedResponse returns the reply for topic, falling back to the generic one.
func (v *Vocabulary) CannedResponse(topic domain.Topic) string {
	if r, ok := v.CannedResponses[topic]; ok && r != "" {
		return r
	}
	return v.CannedResponses[domain.TopicGeneric]
}
