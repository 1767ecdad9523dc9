// Package quota holds the eligibility rules for speech generation. The
// decisions are pure functions over a Profile; persisting their outcome is
// the caller's job.
package quota

import "github.com/dardja-ai/voice-backend/internal/models"

// Reason identifies why a generation was blocked, or that the allotment was
// consumed by the generation that just succeeded.
type Reason string

const (
	ReasonAccountDeactivated Reason = "account_deactivated"
	ReasonQuotaExhausted     Reason = "quota_exhausted"
	ReasonScriptTooLong      Reason = "script_too_long"

	// ReasonQuotaJustReached is informational, not blocking: the last
	// allowed generation has been consumed.
	ReasonQuotaJustReached Reason = "quota_just_reached"
)

type Decision struct {
	Allowed bool
	Reason  Reason
}

var allowed = Decision{Allowed: true}

// Check decides whether a new generation may proceed. Deactivation wins over
// quota: an inactive account is rejected regardless of its counters.
func Check(p *models.Profile) Decision {
	if !p.Active {
		return Decision{Reason: ReasonAccountDeactivated}
	}
	if p.TrialUsed && p.UsageCount >= p.MaxGenerations {
		return Decision{Reason: ReasonQuotaExhausted}
	}
	return allowed
}

// CheckScript rejects scripts over the profile's character ceiling. A
// rejected script never consumes quota and never reaches the provider.
func CheckScript(script string, p *models.Profile) Decision {
	if len([]rune(script)) > p.MaxCharacters {
		return Decision{Reason: ReasonScriptTooLong}
	}
	return allowed
}

// Reached reports whether the profile's allotment is fully consumed. The
// comparison is >= so that a count stranded past a lowered ceiling still
// reads as reached.
func Reached(p *models.Profile) bool {
	return p.UsageCount >= p.MaxGenerations
}

// Apply records one successful generation on a copy of the profile and
// reports whether that generation consumed the last of the allotment. The
// caller persists the returned counters atomically.
func Apply(p models.Profile) (updated models.Profile, justReached bool) {
	p.UsageCount++
	if Reached(&p) {
		p.TrialUsed = true
		justReached = true
	}
	return p, justReached
}
