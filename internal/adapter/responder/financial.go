package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"krishi-ai/internal/domain"
)

type cropEconomics struct {
	costPerAcre    int
	revenuePerAcre int
	durationMonths int
}

var economicsByCrop = map[string]cropEconomics{
	"rice":      {costPerAcre: 25000, revenuePerAcre: 45000, durationMonths: 4},
	"wheat":     {costPerAcre: 20000, revenuePerAcre: 38000, durationMonths: 5},
	"cotton":    {costPerAcre: 35000, revenuePerAcre: 65000, durationMonths: 6},
	"sugarcane": {costPerAcre: 45000, revenuePerAcre: 90000, durationMonths: 12},
	"maize":     {costPerAcre: 18000, revenuePerAcre: 32000, durationMonths: 4},
}

type scheme struct {
	name    string
	benefit string
	apply   string
}

var schemes = map[string]scheme{
	"pm_kisan": {
		name:    "PM-KISAN",
		benefit: "₹6,000/year direct income support in three installments",
		apply:   "Register at pmkisan.gov.in or through the village patwari",
	},
	"crop_insurance": {
		name:    "PM Fasal Bima Yojana",
		benefit: "Crop insurance at 1.5-2% premium for food crops",
		apply:   "Enroll through your bank or CSC before the seasonal cutoff",
	},
	"kcc": {
		name:    "Kisan Credit Card",
		benefit: "Crop loans up to ₹3 lakh at 4% effective interest with prompt repayment",
		apply:   "Apply at any commercial or cooperative bank branch",
	},
	"soil_health_card": {
		name:    "Soil Health Card Scheme",
		benefit: "Free soil testing and fertilizer recommendations every 2 years",
		apply:   "Contact your local agriculture department office",
	},
}

type loanProduct struct {
	name     string
	maxLakh  float64
	interest string
}

var loanProducts = []loanProduct{
	{name: "Kisan Credit Card", maxLakh: 3, interest: "7% (4% with prompt repayment subvention)"},
	{name: "Agriculture Term Loan", maxLakh: 20, interest: "9-11% depending on bank and tenure"},
	{name: "Tractor Loan", maxLakh: 10, interest: "10-12% with margin of 10-15%"},
}

// Financial advises on crop economics, credit, and government schemes.
type Financial struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewFinancial creates the financial planning responder. gen may be nil.
func NewFinancial(gen domain.TextGenerator, logger *slog.Logger) *Financial {
	return &Financial{gen: gen, logger: logger}
}

func (a *Financial) Name() string { return "Financial Planning" }

func (a *Financial) Description() string {
	return "Advises on farm economics, loans, insurance, and subsidies"
}

func (a *Financial) Capabilities() []string {
	return []string{"cost_analysis", "loan_guidance", "scheme_eligibility"}
}

func (a *Financial) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	cropType := extractCrop(query, uc)
	econ, hasEcon := economicsByCrop[cropType]

	var fallback strings.Builder
	if hasEcon {
		profit := econ.revenuePerAcre - econ.costPerAcre
		fmt.Fprintf(&fallback, "Economics of %s (per acre):\n"+
			"- Cultivation cost: ₹%d\n- Expected revenue: ₹%d\n- Net profit: ₹%d over %d months\n\n",
			cropType, econ.costPerAcre, econ.revenuePerAcre, profit, econ.durationMonths)
	}
	fallback.WriteString("Relevant schemes:\n")
	for _, key := range []string{"pm_kisan", "kcc", "crop_insurance", "soil_health_card"} {
		s := schemes[key]
		fmt.Fprintf(&fallback, "- %s: %s. %s.\n", s.name, s.benefit, s.apply)
	}
	fallback.WriteString("\nLoan options:\n")
	for _, l := range loanProducts {
		fmt.Fprintf(&fallback, "- %s: up to ₹%.0f lakh at %s\n", l.name, l.maxLakh, l.interest)
	}

	prompt := fmt.Sprintf(`As an agricultural finance advisor, help with this query:

Crop: %s
Farm Size: %s
Query: %s

Cover:
1. Cost-benefit analysis for the crop
2. Suitable credit products and effective interest rates
3. Government schemes and subsidies with eligibility
4. Insurance options
5. Record keeping for loan applications`, cropType, farmSizeOf(uc), query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback.String())

	metadata := map[string]any{"crop_type": cropType}
	if hasEcon {
		metadata["cost_per_acre"] = econ.costPerAcre
		metadata["revenue_per_acre"] = econ.revenuePerAcre
		metadata["net_profit_per_acre"] = econ.revenuePerAcre - econ.costPerAcre
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.85,
		Metadata:   metadata,
		Citations:  []string{"PM-KISAN Portal", "NABARD Guidelines", "PMFBY Operational Guidelines"},
	}, nil
}

func farmSizeOf(uc *domain.UserContext) string {
	if uc != nil && uc.FarmSize != "" {
		return uc.FarmSize
	}
	return "unknown"
}
