package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"krishi-ai/internal/domain"
)

type compiledRule struct {
	pattern string
	weight  float64
	re      *regexp.Regexp
}

type compiledIntent struct {
	intent domain.Intent
	rules  []compiledRule
}

// PatternScorer evaluates lower-cased query text against a weighted rule
// table. Scoring is a pure function of text and table: per-intent sums of
// matched weights, capped at 1.0, with zero-match intents omitted.
type PatternScorer struct {
	table []compiledIntent
	order []domain.Intent
}

// NewPatternScorer compiles the rule table once. Patterns must be valid
// regular expressions and weights must be in (0, 1].
func NewPatternScorer(table domain.RuleTable) (*PatternScorer, error) {
	s := &PatternScorer{}
	for _, ir := range table {
		ci := compiledIntent{intent: ir.Intent}
		for _, r := range ir.Rules {
			if r.Weight <= 0 || r.Weight > 1 {
				return nil, domain.NewDomainError("NewPatternScorer", domain.ErrInvalidInput,
					fmt.Sprintf("weight %v for intent %q out of (0,1]", r.Weight, ir.Intent))
			}
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, domain.NewDomainError("NewPatternScorer", domain.ErrInvalidInput,
					fmt.Sprintf("pattern %q for intent %q: %v", r.Pattern, ir.Intent, err))
			}
			ci.rules = append(ci.rules, compiledRule{pattern: r.Pattern, weight: r.Weight, re: re})
		}
		s.table = append(s.table, ci)
		s.order = append(s.order, ir.Intent)
	}
	return s, nil
}

// Score returns the per-intent scores for text. Intents with no matching
// rule are absent from the result.
func (s *PatternScorer) Score(text string) map[domain.Intent]domain.IntentScore {
	lower := strings.ToLower(text)
	scores := make(map[domain.Intent]domain.IntentScore)

	for _, ci := range s.table {
		var sum float64
		var matched []string
		for _, r := range ci.rules {
			if r.re.MatchString(lower) {
				sum += r.weight
				matched = append(matched, r.pattern)
			}
		}
		if sum == 0 {
			continue
		}
		if sum > 1.0 {
			sum = 1.0
		}
		scores[ci.intent] = domain.IntentScore{Intent: ci.intent, Score: sum, Matched: matched}
	}
	return scores
}

// Intents returns the intents in registration order. Callers use this for
// deterministic tie-breaking.
func (s *PatternScorer) Intents() []domain.Intent {
	return s.order
}
