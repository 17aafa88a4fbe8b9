package analysis

import (
	"strings"

	"wellbeing_server/core/domain"
)

// Reconciler merges the model's output with the rule-based topic flags.
type Reconciler struct {
	vocab  *Vocabulary
	marker string
}

// NewReconciler creates a reconciler using vocab's refusal marker and canned responses.
func NewReconciler(vocab *Vocabulary) *Reconciler {
	return &Reconciler{vocab: vocab, marker: normalize(vocab.RefusalMarker)}
}

// Reconcile applies the override rules in order. Every rule is evaluated;
// later rules see the effects of earlier ones.
//
//  1. start from the model's scopeflag
//  2. workplace context or a sensitive topic forces the message in scope
//  3. a sensitive topic the model still refused gets the canned reply for
//     the highest-priority topic
//
// Violent words pass through unchanged.
func (r *Reconciler) Reconcile(gw *domain.GatewayResult, flags domain.TopicFlags) *domain.Reconciliation {
	rec := &domain.Reconciliation{
		Response:     gw.Response,
		ViolentWords: gw.ViolentWords,
		ScopeFlag:    gw.ScopeFlag,
		RawScopeFlag: gw.ScopeFlag,
	}
	if rec.ViolentWords == nil {
		rec.ViolentWords = []string{}
	}

	if flags.ContainsWorkplaceContext || flags.ForceProfessionalContext {
		if rec.ScopeFlag {
			rec.Overrides = append(rec.Overrides, domain.OverrideWorkplaceScope)
		}
		rec.ScopeFlag = false
	}

	if flags.ForceProfessionalContext && (rec.ScopeFlag || r.isRefusal(rec.Response)) {
		rec.ScopeFlag = false
		rec.CannedTopic = flags.PrimaryTopic()
		rec.Response = r.vocab.CannedResponse(rec.CannedTopic)
		rec.Overrides = append(rec.Overrides, domain.OverrideCannedResponse)
	}

	return rec
}

// isRefusal compares in NFC lower case so decomposed accents still match.
func (r *Reconciler) isRefusal(response string) bool {
	return r.marker != "" && strings.Contains(normalize(response), r.marker)
}
