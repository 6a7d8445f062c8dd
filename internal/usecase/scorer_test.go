package usecase

import (
	"errors"
	"testing"

	"krishi-ai/internal/domain"
)

func TestPatternScorerSumsMatchedWeights(t *testing.T) {
	scorer, err := NewPatternScorer(DefaultRuleTable())
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	scores := scorer.Score("What is the market rate for wheat in the mandi?")

	s, ok := scores[domain.IntentMarket]
	if !ok {
		t.Fatal("expected a market_intelligence score")
	}
	// "market" and "mandi" hit the 0.8 rule once, "market rate" the 0.9 rule.
	if s.Score < 0.9 {
		t.Errorf("score = %v, want >= 0.9", s.Score)
	}
	if len(s.Matched) != 2 {
		t.Errorf("matched %d patterns, want 2: %v", len(s.Matched), s.Matched)
	}
}

func TestPatternScorerCapsAtOne(t *testing.T) {
	scorer, err := NewPatternScorer(DefaultRuleTable())
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	// Hits all three crop advisory rules: 0.8 + 0.9 + 0.7 > 1.0.
	scores := scorer.Score("which crop to plant this season")

	s := scores[domain.IntentCropAdvisory]
	if s.Score != 1.0 {
		t.Errorf("score = %v, want capped at 1.0", s.Score)
	}
}

func TestPatternScorerOmitsZeroMatchIntents(t *testing.T) {
	scorer, err := NewPatternScorer(DefaultRuleTable())
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	scores := scorer.Score("soil test for my field")

	if _, ok := scores[domain.IntentWeather]; ok {
		t.Error("weather intent should be absent when no rule matches")
	}
	if _, ok := scores[domain.IntentSoilAnalysis]; !ok {
		t.Error("soil_analysis intent should be present")
	}
}

func TestPatternScorerIsCaseInsensitive(t *testing.T) {
	scorer, err := NewPatternScorer(DefaultRuleTable())
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	lower := scorer.Score("soil test")
	upper := scorer.Score("SOIL TEST")
	if lower[domain.IntentSoilAnalysis].Score != upper[domain.IntentSoilAnalysis].Score {
		t.Error("scoring should not depend on letter case")
	}
}

func TestNewPatternScorerRejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		table domain.RuleTable
	}{
		{
			name: "weight above one",
			table: domain.RuleTable{{Intent: domain.IntentWeather,
				Rules: []domain.Rule{{Pattern: `\brain\b`, Weight: 1.5}}}},
		},
		{
			name: "zero weight",
			table: domain.RuleTable{{Intent: domain.IntentWeather,
				Rules: []domain.Rule{{Pattern: `\brain\b`, Weight: 0}}}},
		},
		{
			name: "invalid regexp",
			table: domain.RuleTable{{Intent: domain.IntentWeather,
				Rules: []domain.Rule{{Pattern: `\b(rain\b`, Weight: 0.8}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatternScorer(tt.table)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPatternScorerIntentsKeepsRegistrationOrder(t *testing.T) {
	table := domain.RuleTable{
		{Intent: domain.IntentPolicy, Rules: []domain.Rule{{Pattern: `\bmsp\b`, Weight: 0.9}}},
		{Intent: domain.IntentWeather, Rules: []domain.Rule{{Pattern: `\brain\b`, Weight: 0.8}}},
	}
	scorer, err := NewPatternScorer(table)
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	got := scorer.Intents()
	if len(got) != 2 || got[0] != domain.IntentPolicy || got[1] != domain.IntentWeather {
		t.Errorf("Intents() = %v, want [policy weather] order preserved", got)
	}
}
