package usecase

import "krishi-ai/internal/domain"

// Classifier selects the highest-scoring intent for a query. It never
// fails: absence of signal degrades to the "general" default with a fixed
// confidence floor.
type Classifier struct {
	scorer *PatternScorer
}

// NewClassifier builds a classifier over the given rule table.
func NewClassifier(table domain.RuleTable) (*Classifier, error) {
	scorer, err := NewPatternScorer(table)
	if err != nil {
		return nil, err
	}
	return &Classifier{scorer: scorer}, nil
}

// Classify scores the query and picks the best intent. Ties resolve to the
// first intent in rule-table registration order, so repeated classification
// of the same text is deterministic.
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	scores := c.scorer.Score(text)
	if len(scores) == 0 {
		return domain.ClassificationResult{
			PrimaryIntent: domain.IntentGeneral,
			Confidence:    domain.GeneralConfidence,
			Scores:        scores,
		}
	}

	var best domain.Intent
	bestScore := -1.0
	for _, intent := range c.scorer.Intents() {
		s, ok := scores[intent]
		if !ok {
			continue
		}
		if s.Score > bestScore {
			best = intent
			bestScore = s.Score
		}
	}

	return domain.ClassificationResult{
		PrimaryIntent: best,
		Confidence:    bestScore,
		Scores:        scores,
	}
}
