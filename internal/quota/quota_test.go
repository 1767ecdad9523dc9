package quota

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dardja-ai/voice-backend/internal/models"
)

func trialProfile() models.Profile {
	return models.Profile{
		Active:         true,
		UsageCount:     0,
		MaxGenerations: 2,
		MaxCharacters:  600,
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Profile)
		allowed bool
		reason  Reason
	}{
		{
			name:    "fresh trial allowed",
			mutate:  func(p *models.Profile) {},
			allowed: true,
		},
		{
			name: "inactive always denied",
			mutate: func(p *models.Profile) {
				p.Active = false
				p.UsageCount = 0
			},
			reason: ReasonAccountDeactivated,
		},
		{
			name: "inactive wins over exhausted quota",
			mutate: func(p *models.Profile) {
				p.Active = false
				p.TrialUsed = true
				p.UsageCount = 5
			},
			reason: ReasonAccountDeactivated,
		},
		{
			name: "exhausted trial denied",
			mutate: func(p *models.Profile) {
				p.TrialUsed = true
				p.UsageCount = 2
			},
			reason: ReasonQuotaExhausted,
		},
		{
			name: "count over limit but trial not marked used",
			mutate: func(p *models.Profile) {
				p.UsageCount = 2
			},
			allowed: true,
		},
		{
			name: "trial used but count below limit",
			mutate: func(p *models.Profile) {
				p.TrialUsed = true
				p.UsageCount = 1
			},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := trialProfile()
			tt.mutate(&p)

			d := Check(&p)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestCheckScript(t *testing.T) {
	p := trialProfile()

	d := CheckScript(strings.Repeat("a", 600), &p)
	assert.True(t, d.Allowed)

	d = CheckScript(strings.Repeat("a", 601), &p)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonScriptTooLong, d.Reason)
}

func TestCheckScriptCountsRunes(t *testing.T) {
	p := trialProfile()
	p.MaxCharacters = 5

	// Arabic letters are multi-byte; the ceiling is characters, not bytes.
	d := CheckScript("مرحبا", &p)
	assert.True(t, d.Allowed)

	d = CheckScript("مرحبا!", &p)
	assert.False(t, d.Allowed)
}

func TestReached(t *testing.T) {
	p := trialProfile()

	p.UsageCount = 1
	assert.False(t, Reached(&p))

	p.UsageCount = 2
	assert.True(t, Reached(&p))

	// A count stranded past a lowered ceiling still reads as reached.
	p.UsageCount = 5
	assert.True(t, Reached(&p))
}

func TestApply(t *testing.T) {
	p := trialProfile()
	p.UsageCount = 0

	updated, justReached := Apply(p)
	assert.Equal(t, 1, updated.UsageCount)
	assert.False(t, updated.TrialUsed)
	assert.False(t, justReached)

	updated, justReached = Apply(updated)
	assert.Equal(t, 2, updated.UsageCount)
	assert.True(t, updated.TrialUsed)
	assert.True(t, justReached)

	// Once exhausted, the gate blocks the next attempt.
	d := Check(&updated)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExhausted, d.Reason)
}

func TestTrialLifecycle(t *testing.T) {
	p := trialProfile()
	p.UsageCount = 1

	assert.True(t, Check(&p).Allowed)
	assert.True(t, CheckScript(strings.Repeat("s", 500), &p).Allowed)

	updated, justReached := Apply(p)
	assert.Equal(t, 2, updated.UsageCount)
	assert.True(t, updated.TrialUsed)
	assert.True(t, justReached)

	d := Check(&updated)
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonQuotaExhausted, d.Reason)
}
