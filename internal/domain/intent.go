package domain

// Intent is a coarse category of farmer query used to select a responder.
type Intent string

// Supported intents. The first eight are reachable through pattern scoring;
// IntentGeneral is the no-signal default and IntentTranslation is selectable
// only by explicit caller request.
const (
	IntentCropAdvisory Intent = "crop_advisory"
	IntentSoilAnalysis Intent = "soil_analysis"
	IntentWeather      Intent = "weather"
	IntentIrrigation   Intent = "irrigation"
	IntentPestDisease  Intent = "pest_disease"
	IntentMarket       Intent = "market_intelligence"
	IntentFinancial    Intent = "financial"
	IntentPolicy       Intent = "policy"
	IntentGeneral      Intent = "general"
	IntentTranslation  Intent = "translation"
)

// GeneralConfidence is the fixed confidence reported when no pattern
// matches. It is a floor constant, not a computed minimum.
const GeneralConfidence = 0.5

// Rule is a single weighted pattern. Weight must be in (0, 1].
type Rule struct {
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight"`
}

// IntentRules binds an intent to its ordered pattern rules.
type IntentRules struct {
	Intent Intent `yaml:"intent"`
	Rules  []Rule `yaml:"rules"`
}

// RuleTable is an ordered list of per-intent rules. Order is significant:
// when two intents tie on score, the first-registered intent wins, which
// keeps classification deterministic.
type RuleTable []IntentRules

// IntentScore is the scoring outcome for a single intent.
type IntentScore struct {
	Intent  Intent   `json:"intent"`
	Score   float64  `json:"score"`
	Matched []string `json:"matched"`
}

// ClassificationResult is the classifier's verdict for one query.
type ClassificationResult struct {
	PrimaryIntent Intent                 `json:"primary_intent"`
	Confidence    float64                `json:"confidence"`
	Scores        map[Intent]IntentScore `json:"all_scores,omitempty"`
}
