package analysis

import (
	"strings"

	"wellbeing_server/core/domain"
)

// Detector performs the rule-based sensitive-topic scan.
// Term lists are normalized once at construction; Detect is safe for concurrent use.
type Detector struct {
	racism         []string
	harassment     []string
	discrimination []string
	stress         []string
	conflict       []string
	sensitive      []string
	workplace      []string

	signals     []string
	signalTerms []string
}

// NewDetector creates a detector over vocab's term lists.
func NewDetector(vocab *Vocabulary) *Detector {
	d := &Detector{
		racism:         normalizeAll(vocab.Racism),
		harassment:     normalizeAll(vocab.Harassment),
		discrimination: normalizeAll(vocab.Discrimination),
		stress:         normalizeAll(vocab.Stress),
		conflict:       normalizeAll(vocab.Conflict),
		sensitive:      normalizeAll(vocab.SensitiveTerms),
		workplace:      normalizeAll(vocab.WorkplaceKeywords),
	}
	for _, s := range vocab.DistressSignals {
		if n := normalize(strings.TrimSpace(s)); n != "" {
			d.signals = append(d.signals, s)
			d.signalTerms = append(d.signalTerms, n)
		}
	}
	return d
}

// Detect scans text for each topic category by case-insensitive substring containment.
func (d *Detector) Detect(text string) domain.TopicFlags {
	lower := normalize(text)

	flags := domain.TopicFlags{
		ContainsRacism:           containsAny(lower, d.racism),
		ContainsHarassment:       containsAny(lower, d.harassment),
		ContainsDiscrimination:   containsAny(lower, d.discrimination),
		ContainsStress:           containsAny(lower, d.stress),
		ContainsConflict:         containsAny(lower, d.conflict),
		ContainsAnySensitive:     containsAny(lower, d.sensitive),
		ContainsWorkplaceContext: containsAny(lower, d.workplace),
	}
	flags.ForceProfessionalContext = flags.ContainsAnySensitive
	return flags
}

// Signals returns the distress signals present in text, in vocabulary order.
func (d *Detector) Signals(text string) []string {
	lower := normalize(text)
	found := []string{}
	for i, term := range d.signalTerms {
		if strings.Contains(lower, term) {
			found = append(found, d.signals[i])
		}
	}
	return found
}
