package usecase

import "krishi-ai/internal/domain"

// DefaultRuleTable returns the static rule table covering the eight
// pattern-scored domains. Order matters: ties resolve to the
// first-registered intent.
func DefaultRuleTable() domain.RuleTable {
	return domain.RuleTable{
		{Intent: domain.IntentCropAdvisory, Rules: []domain.Rule{
			{Pattern: `\b(crop|plant|seed|variety|sowing|harvest)\b`, Weight: 0.8},
			{Pattern: `\b(which crop|what to grow|best crop|recommend crop)\b`, Weight: 0.9},
			{Pattern: `\b(season|timing|when to plant)\b`, Weight: 0.7},
		}},
		{Intent: domain.IntentSoilAnalysis, Rules: []domain.Rule{
			{Pattern: `\b(soil|ph|nitrogen|phosphorus|potassium|npk|nutrients)\b`, Weight: 0.8},
			{Pattern: `\b(soil test|soil health|soil quality)\b`, Weight: 0.9},
			{Pattern: `\b(fertilizer|manure|compost)\b`, Weight: 0.6},
		}},
		{Intent: domain.IntentWeather, Rules: []domain.Rule{
			{Pattern: `\b(weather|rain|temperature|humidity|wind)\b`, Weight: 0.8},
			{Pattern: `\b(forecast|climate|monsoon|drought)\b`, Weight: 0.7},
			{Pattern: `\b(will it rain|weather today|temperature)\b`, Weight: 0.9},
		}},
		{Intent: domain.IntentIrrigation, Rules: []domain.Rule{
			{Pattern: `\b(water|irrigation|watering|moisture)\b`, Weight: 0.8},
			{Pattern: `\b(drip|sprinkler|flood irrigation)\b`, Weight: 0.9},
			{Pattern: `\b(when to water|how much water)\b`, Weight: 0.8},
		}},
		{Intent: domain.IntentPestDisease, Rules: []domain.Rule{
			{Pattern: `\b(pest|disease|insect|fungus|virus|bacteria)\b`, Weight: 0.8},
			{Pattern: `\b(leaf spot|blight|aphid|caterpillar)\b`, Weight: 0.9},
			{Pattern: `\b(plant sick|leaves turning|crop damage)\b`, Weight: 0.7},
		}},
		{Intent: domain.IntentMarket, Rules: []domain.Rule{
			{Pattern: `\b(price|market|mandi|sell|buy)\b`, Weight: 0.8},
			{Pattern: `\b(commodity|trading|auction)\b`, Weight: 0.7},
			{Pattern: `\b(market rate|current price|price trend)\b`, Weight: 0.9},
		}},
		{Intent: domain.IntentFinancial, Rules: []domain.Rule{
			{Pattern: `\b(loan|credit|subsidy|insurance|emi)\b`, Weight: 0.8},
			{Pattern: `\b(bank|finance|money|cost|profit)\b`, Weight: 0.6},
			{Pattern: `\b(pm-kisan|crop insurance|kcc)\b`, Weight: 0.9},
		}},
		{Intent: domain.IntentPolicy, Rules: []domain.Rule{
			{Pattern: `\b(policy|government|scheme|law|regulation)\b`, Weight: 0.8},
			{Pattern: `\b(msp|procurement|support price)\b`, Weight: 0.9},
			{Pattern: `\b(eligibility|application|form)\b`, Weight: 0.6},
		}},
	}
}
