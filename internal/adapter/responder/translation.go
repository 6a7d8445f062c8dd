package responder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"krishi-ai/internal/domain"
)

// Agricultural terms, English to Hindi.
var agriTermsEnHi = map[string]string{
	"crop":       "फसल",
	"seed":       "बीज",
	"soil":       "मिट्टी",
	"water":      "पानी",
	"fertilizer": "खाद",
	"harvest":    "कटाई",
	"irrigation": "सिंचाई",
	"pesticide":  "कीटनाशक",
	"farmer":     "किसान",
	"market":     "मंडी",
	"price":      "दाम",
	"rain":       "बारिश",
	"wheat":      "गेहूं",
	"rice":       "चावल",
	"cotton":     "कपास",
}

var commonPhrasesEnHi = map[string]string{
	"when to sow":       "कब बोना है",
	"how much water":    "कितना पानी",
	"what is the price": "दाम क्या है",
	"which fertilizer":  "कौन सी खाद",
	"weather forecast":  "मौसम का पूर्वानुमान",
	"government scheme": "सरकारी योजना",
	"crop insurance":    "फसल बीमा",
	"soil testing":      "मिट्टी की जांच",
}

type replacement struct {
	src string
	dst string
	re  *regexp.Regexp // nil for non-Latin sources
}

// Translation translates agricultural vocabulary between English and Hindi
// using curated dictionaries, with generator assistance for full sentences.
type Translation struct {
	gen    domain.TextGenerator
	logger *slog.Logger

	enToHi []replacement
	hiToEn []replacement
}

// NewTranslation creates the translation responder. gen may be nil.
func NewTranslation(gen domain.TextGenerator, logger *slog.Logger) *Translation {
	return &Translation{
		gen:    gen,
		logger: logger,
		enToHi: buildReplacements(commonPhrasesEnHi, agriTermsEnHi, false),
		hiToEn: buildReplacements(commonPhrasesEnHi, agriTermsEnHi, true),
	}
}

// buildReplacements flattens the dictionaries into one deterministic list,
// longest source first so phrases win over their component terms and
// overlapping terms ("price" vs "rice") resolve consistently. Latin sources
// get word-boundary regexes; \b does not work for Devanagari, so Hindi
// sources use plain substring replacement.
func buildReplacements(phrases, terms map[string]string, invert bool) []replacement {
	var out []replacement
	add := func(src, dst string) {
		if invert {
			src, dst = dst, src
		}
		r := replacement{src: src, dst: dst}
		if isLatin(src) {
			r.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(src) + `\b`)
		}
		out = append(out, r)
	}
	for src, dst := range phrases {
		add(src, dst)
	}
	for src, dst := range terms {
		add(src, dst)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].src) != len(out[j].src) {
			return len(out[i].src) > len(out[j].src)
		}
		return out[i].src < out[j].src
	})
	return out
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}

func (a *Translation) Name() string { return "Translation" }

func (a *Translation) Description() string {
	return "Translates agricultural terms and phrases between English and Hindi"
}

func (a *Translation) Capabilities() []string {
	return []string{"term_translation", "phrase_translation"}
}

func (a *Translation) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	target := targetLanguage(query, uc)
	translated, hits := a.translate(query, target)

	fallback := translated
	if hits == 0 {
		fallback = fmt.Sprintf("No dictionary entries matched. Original text: %s", query)
	}

	prompt := fmt.Sprintf(`Translate this agricultural text to %s, keeping farming terms accurate:

%s

Dictionary-assisted draft: %s

Return only the translation.`, languageName(target), query, translated)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback)

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.8,
		Metadata: map[string]any{
			"target_language":  target,
			"dictionary_based": a.gen == nil,
			"terms_matched":    hits,
		},
	}, nil
}

func (a *Translation) translate(text, target string) (string, int) {
	out := strings.ToLower(text)
	hits := 0

	table := a.enToHi
	if target == "en" {
		table = a.hiToEn
	}
	for _, r := range table {
		if r.re != nil {
			if r.re.MatchString(out) {
				out = r.re.ReplaceAllString(out, r.dst)
				hits++
			}
		} else if strings.Contains(out, r.src) {
			out = strings.ReplaceAll(out, r.src, r.dst)
			hits++
		}
	}
	return out, hits
}

// targetLanguage resolves translation direction: an explicit caller request
// wins, then Devanagari script in the query implies hi source, then the
// stored language preference. English queries default to hi.
func targetLanguage(query string, uc *domain.UserContext) string {
	if uc != nil && uc.TargetLanguage != "" {
		return uc.TargetLanguage
	}
	if containsDevanagari(query) {
		return "en"
	}
	if uc != nil && uc.Language == "hi" {
		return "en"
	}
	return "hi"
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

func languageName(code string) string {
	if code == "en" {
		return "English"
	}
	return "Hindi"
}
