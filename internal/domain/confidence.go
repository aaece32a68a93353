package domain

// Field names used in per-field confidence maps and warnings.
const (
	FieldCratePattern        = "crate_pattern"
	FieldClientType          = "client_type"
	FieldConfigCrate         = "config_crate"
	FieldConfigAttrs         = "config_attrs"
	FieldErrorCategorization = "error_categorization"
)

// Component weights of the overall score. They sum to 1.0; a missing
// component contributes zero and the others are never renormalized.
const (
	WeightCratePattern        = 0.30
	WeightClientType          = 0.30
	WeightConfigCrate         = 0.15
	WeightConfigAttrs         = 0.05
	WeightErrorCategorization = 0.20
)

// DefaultThreshold is the confidence below which output fields are marked
// for manual review.
const DefaultThreshold = 0.6

// Level is the discrete confidence level of a run.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "HIGH"
	case LevelMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// LevelFor maps a score onto a Level.
func LevelFor(score float64) Level {
	switch {
	case score >= 0.8:
		return LevelHigh
	case score >= 0.6:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ConfidenceScore is the weighted combination of the detector confidences.
type ConfidenceScore struct {
	Overall  float64            `json:"overall"`
	Level    Level              `json:"level"`
	PerField map[string]float64 `json:"per_field"`
}

// ScoreInputs carries the five scored components. Nil components score 0.
type ScoreInputs struct {
	CratePattern        Confident
	ClientType          Confident
	ConfigCrate         Confident
	ConfigAttrs         Confident
	ErrorCategorization Confident
}

// ComputeConfidence combines the components into the overall score. It
// never fails.
func ComputeConfidence(in ScoreInputs) ConfidenceScore {
	fields := []struct {
		name   string
		weight float64
		c      Confident
	}{
		{FieldCratePattern, WeightCratePattern, in.CratePattern},
		{FieldClientType, WeightClientType, in.ClientType},
		{FieldConfigCrate, WeightConfigCrate, in.ConfigCrate},
		{FieldConfigAttrs, WeightConfigAttrs, in.ConfigAttrs},
		{FieldErrorCategorization, WeightErrorCategorization, in.ErrorCategorization},
	}

	per := make(map[string]float64, len(fields))
	var overall float64
	for _, f := range fields {
		var s float64
		if f.c != nil {
			s = Clamp01(f.c.Score())
		}
		per[f.name] = s
		overall += s * f.weight
	}
	overall = Clamp01(overall)

	return ConfidenceScore{Overall: overall, Level: LevelFor(overall), PerField: per}
}

// ScoreValue adapts a bare number to Confident.
type ScoreValue float64

func (v ScoreValue) Score() float64 { return float64(v) }

// Automation thresholds. Error categorization earns half credit at a lower
// bar.
const (
	automationFields        = 9
	automationThreshold     = 0.7
	automationErrorsPartial = 0.5
)

// Automation returns the share of output fields, in percent, that were
// detected confidently enough to need no manual edit.
func (c ConfidenceScore) Automation() int {
	var automated float64
	for _, f := range []string{FieldCratePattern, FieldClientType, FieldConfigCrate, FieldConfigAttrs} {
		if c.PerField[f] >= automationThreshold {
			automated++
		}
	}
	if c.PerField[FieldErrorCategorization] >= automationErrorsPartial {
		automated += 0.5
	}
	return int(automated / automationFields * 100)
}
