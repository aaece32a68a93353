package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sdkprobe/sdkprobe/internal/domain"
)

func TestComputeConfidence_WeightedSum(t *testing.T) {
	one := domain.ScoreValue(1)

	all := domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern: one, ClientType: one, ConfigCrate: one, ConfigAttrs: one, ErrorCategorization: one,
	})
	assert.InDelta(t, 1.0, all.Overall, 1e-9)
	assert.Equal(t, domain.LevelHigh, all.Level)

	noCrate := domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern: domain.ScoreValue(0), ClientType: one, ConfigCrate: one, ConfigAttrs: one, ErrorCategorization: one,
	})
	assert.InDelta(t, 0.70, noCrate.Overall, 1e-9)
	assert.Equal(t, domain.LevelMedium, noCrate.Level)
}

func TestComputeConfidence_MissingComponentsNotRenormalized(t *testing.T) {
	got := domain.ComputeConfidence(domain.ScoreInputs{ClientType: domain.ScoreValue(1)})

	assert.InDelta(t, 0.30, got.Overall, 1e-9)
	assert.Equal(t, domain.LevelLow, got.Level)
	assert.Len(t, got.PerField, 5)
	assert.Equal(t, 0.0, got.PerField[domain.FieldErrorCategorization])
}

func TestComputeConfidence_ExactWeights(t *testing.T) {
	got := domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern:        domain.ScoreValue(0.9),
		ClientType:          domain.ScoreValue(0.8),
		ConfigCrate:         domain.ScoreValue(0.95),
		ConfigAttrs:         domain.ScoreValue(0.5),
		ErrorCategorization: domain.ScoreValue(0.4),
	})

	want := 0.9*0.30 + 0.8*0.30 + 0.95*0.15 + 0.5*0.05 + 0.4*0.20
	assert.InDelta(t, want, got.Overall, 1e-9)
	assert.InDelta(t, 1.0, domain.WeightCratePattern+domain.WeightClientType+domain.WeightConfigCrate+
		domain.WeightConfigAttrs+domain.WeightErrorCategorization, 1e-9)
}

func TestComputeConfidence_AcceptsDetectionResults(t *testing.T) {
	crate := domain.Detected(domain.CratePattern{}, 0.5, "single SDK package")

	got := domain.ComputeConfidence(domain.ScoreInputs{CratePattern: crate})

	assert.InDelta(t, 0.15, got.Overall, 1e-9)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, domain.LevelHigh, domain.LevelFor(0.8))
	assert.Equal(t, domain.LevelMedium, domain.LevelFor(0.79))
	assert.Equal(t, domain.LevelMedium, domain.LevelFor(0.6))
	assert.Equal(t, domain.LevelLow, domain.LevelFor(0.59))
	assert.Equal(t, "HIGH", domain.LevelHigh.String())

	text, err := domain.LevelLow.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "LOW", string(text))
}

func TestConfidenceScore_Automation(t *testing.T) {
	got := domain.ComputeConfidence(domain.ScoreInputs{
		CratePattern:        domain.ScoreValue(0.95),
		ClientType:          domain.ScoreValue(0.90),
		ConfigCrate:         domain.ScoreValue(0.85),
		ConfigAttrs:         domain.ScoreValue(0.60),
		ErrorCategorization: domain.ScoreValue(0.50),
	})

	// 3 full fields plus half credit for errors, out of 9.
	assert.Equal(t, 38, got.Automation())
	assert.Equal(t, 0, domain.ConfidenceScore{}.Automation())
}
