package responder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"krishi-ai/internal/domain"
)

var commodityRe = regexp.MustCompile(`\b(rice|paddy|wheat|maize|corn|cotton|sugarcane)\b`)

type marketEntry struct {
	pricePerQuintal int
	trend           string
	majorMarkets    []string
	mspPerQuintal   int
}

var marketData = map[string]marketEntry{
	"rice": {
		pricePerQuintal: 2100,
		trend:           "stable",
		majorMarkets:    []string{"Karnal", "Burdwan", "Thanjavur"},
		mspPerQuintal:   2183,
	},
	"wheat": {
		pricePerQuintal: 2250,
		trend:           "rising",
		majorMarkets:    []string{"Khanna", "Indore", "Karnal"},
		mspPerQuintal:   2275,
	},
	"maize": {
		pricePerQuintal: 1950,
		trend:           "stable",
		majorMarkets:    []string{"Davangere", "Nizamabad", "Purnia"},
		mspPerQuintal:   2090,
	},
	"cotton": {
		pricePerQuintal: 6200,
		trend:           "rising",
		majorMarkets:    []string{"Rajkot", "Adilabad", "Bathinda"},
		mspPerQuintal:   6620,
	},
	"sugarcane": {
		pricePerQuintal: 350,
		trend:           "stable",
		majorMarkets:    []string{"Muzaffarnagar", "Kolhapur", "Mandya"},
		mspPerQuintal:   315,
	},
}

// Market reports commodity prices, trends, and selling guidance.
type Market struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewMarket creates the market intelligence responder. gen may be nil.
func NewMarket(gen domain.TextGenerator, logger *slog.Logger) *Market {
	return &Market{gen: gen, logger: logger}
}

func (a *Market) Name() string { return "Market Intelligence" }

func (a *Market) Description() string {
	return "Provides commodity prices, market trends, and selling advice"
}

func (a *Market) Capabilities() []string {
	return []string{"price_lookup", "trend_analysis", "selling_advice"}
}

func (a *Market) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	commodity := extractCommodity(query, uc)
	entry, known := marketData[commodity]

	if !known {
		return &domain.AgentResponse{
			AgentName: a.Name(),
			Response: fmt.Sprintf("Price data for %s is not tracked yet. Check the eNAM portal "+
				"or your nearest APMC mandi for current rates.", commodity),
			Confidence: 0.3,
			Metadata:   map[string]any{domain.MetaCommodity: commodity, "tracked": false},
			Citations:  []string{"eNAM Portal"},
		}, nil
	}

	fallback := fmt.Sprintf("Market snapshot for %s:\n"+
		"- Current price: ₹%d/quintal (trend: %s)\n"+
		"- MSP: ₹%d/quintal\n"+
		"- Major markets: %s\n\n%s",
		commodity, entry.pricePerQuintal, entry.trend, entry.mspPerQuintal,
		strings.Join(entry.majorMarkets, ", "), sellingAdvice(entry))

	prompt := fmt.Sprintf(`As an agricultural market analyst, advise a farmer on:

Commodity: %s
Current Price: ₹%d/quintal
Trend: %s
MSP: ₹%d/quintal
Query: %s

Cover price outlook, best timing and markets to sell, MSP procurement options, and storage considerations.`,
		commodity, entry.pricePerQuintal, entry.trend, entry.mspPerQuintal, query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback)

	confidence := 0.9
	if entry.trend == "volatile" {
		confidence = 0.7
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: confidence,
		Metadata: map[string]any{
			domain.MetaCommodity: commodity,
			"price_per_quintal":  entry.pricePerQuintal,
			"trend":              entry.trend,
			"msp_per_quintal":    entry.mspPerQuintal,
			"major_markets":      entry.majorMarkets,
			"tracked":            true,
		},
		Citations: []string{"Agmarknet", "eNAM Portal", "CACP MSP Notifications"},
	}, nil
}

// extractCommodity prefers the query over the stored last commodity so a
// farmer asking about a new crop is not answered about the previous one.
// Word-boundary matching matters here: "price" contains "rice".
func extractCommodity(query string, uc *domain.UserContext) string {
	switch m := commodityRe.FindString(strings.ToLower(query)); m {
	case "paddy":
		return "rice"
	case "corn":
		return "maize"
	case "":
	default:
		return m
	}
	if uc != nil && uc.LastCommodity != "" {
		return uc.LastCommodity
	}
	return "rice"
}

func sellingAdvice(e marketEntry) string {
	switch {
	case e.pricePerQuintal < e.mspPerQuintal:
		return "Market price is below MSP. Sell through government procurement centers " +
			"to secure the support price."
	case e.trend == "rising":
		return "Prices are trending up. If you have safe storage, holding part of the " +
			"produce for a few weeks may fetch better rates."
	default:
		return "Prices are stable and above MSP. Selling in the listed major markets " +
			"should give competitive rates."
	}
}
