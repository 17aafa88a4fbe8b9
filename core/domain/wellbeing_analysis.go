package domain

import "time"

// TopicFlags is the rule-based sensitive-topic scan of one message.
type TopicFlags struct {
	ContainsRacism           bool `json:"contains_racism"`
	ContainsHarassment       bool `json:"contains_harassment"`
	ContainsDiscrimination   bool `json:"contains_discrimination"`
	ContainsStress           bool `json:"contains_stress"`
	ContainsConflict         bool `json:"contains_conflict"`
	ContainsAnySensitive     bool `json:"contains_any_sensitive"`
	ContainsWorkplaceContext bool `json:"contains_workplace_context"`
	ForceProfessionalContext bool `json:"force_professional_context"`
}

// Topic identifies a canned-response category.
type Topic string

const (
	TopicRacism         Topic = "racism"
	TopicHarassment     Topic = "harassment"
	TopicDiscrimination Topic = "discrimination"
	TopicStress         Topic = "stress"
	TopicConflict       Topic = "conflict"
	TopicGeneric        Topic = "generic"
)

// PrimaryTopic returns the highest-priority true flag:
// racism > harassment > discrimination > stress > conflict > generic.
func (f TopicFlags) PrimaryTopic() Topic {
	switch {
	case f.ContainsRacism:
		return TopicRacism
	case f.ContainsHarassment:
		return TopicHarassment
	case f.ContainsDiscrimination:
		return TopicDiscrimination
	case f.ContainsStress:
		return TopicStress
	case f.ContainsConflict:
		return TopicConflict
	default:
		return TopicGeneric
	}
}

// GatewayResult is the structured output of the language model.
type GatewayResult struct {
	Response     string   `json:"response"`
	ViolentWords []string `json:"violent_words"`
	ScopeFlag    bool     `json:"scopeflag"`
}

// Override names a reconciler rule that changed the model output.
type Override string

const (
	OverrideWorkplaceScope Override = "workplace_scope"
	OverrideCannedResponse Override = "canned_response"
)

// Reconciliation is the final decision after merging model output with topic flags.
type Reconciliation struct {
	Response     string     `json:"response"`
	ViolentWords []string   `json:"violent_words"`
	ScopeFlag    bool       `json:"scopeflag"`
	RawScopeFlag bool       `json:"raw_scopeflag"`
	Overrides    []Override `json:"overrides,omitempty"`
	CannedTopic  Topic      `json:"canned_topic,omitempty"`
}

// InScope reports whether the message falls within the professional-support mandate.
func (r *Reconciliation) InScope() bool {
	return !r.ScopeFlag
}

// AnalysisResult is returned for every processed message.
type AnalysisResult struct {
	Response          string   `json:"response"`
	DetectedSignals   []string `json:"detected_signals"`
	ViolentWords      []string `json:"violent_words"`
	ViolentWordsCount int      `json:"violent_words_count"`
	ScopeFlag         bool     `json:"scopeflag"`
	TotalWords        *int     `json:"total_words,omitempty"`
	DetectedThemes    []string `json:"detected_themes,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// StatsDelta is everything one message contributes to an employee's statistics.
// ViolentWords and Themes are already filtered by scope.
type StatsDelta struct {
	EmployeeID   int64
	TokenCount   int
	ViolentWords []string
	ThemeIDs     []int64
	At           time.Time
}

// AppliedStats reports what the aggregator persisted.
type AppliedStats struct {
	EmployeeID           int64    `json:"employee_id"`
	TotalWords           int      `json:"total_words"`
	ViolentWordsRecorded int      `json:"violent_words_recorded"`
	DetectedThemes       []string `json:"detected_themes"`
	ThemesIncremented    int      `json:"themes_incremented"`
}

// AnalysisAudit is the audit record of one processed message.
type AnalysisAudit struct {
	RequestID    string     `json:"request_id,omitempty" bson:"request_id,omitempty"`
	EmployeeID   *int64     `json:"employee_id,omitempty" bson:"employee_id,omitempty"`
	Message      string     `json:"message" bson:"message"`
	Flags        TopicFlags `json:"flags" bson:"flags"`
	RawScopeFlag bool       `json:"raw_scopeflag" bson:"raw_scopeflag"`
	ScopeFlag    bool       `json:"scopeflag" bson:"scopeflag"`
	Overrides    []Override `json:"overrides,omitempty" bson:"overrides,omitempty"`
	ViolentWords []string   `json:"violent_words" bson:"violent_words"`
	Themes       []string   `json:"themes,omitempty" bson:"themes,omitempty"`
	Degraded     bool       `json:"degraded" bson:"degraded"`
	Error        string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}
