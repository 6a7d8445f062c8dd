package responder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"krishi-ai/internal/domain"
)

type policyEntry struct {
	summary string
	detail  string
}

var nationalPolicies = map[string]policyEntry{
	"msp": {
		summary: "Minimum Support Price",
		detail: "Government-announced floor price for 23 notified crops, set on CACP " +
			"recommendations at 1.5x the cost of production. Procurement happens through " +
			"FCI and state agencies at registered centers.",
	},
	"apmc": {
		summary: "Agricultural Produce Market Committee",
		detail: "State-regulated mandis where produce is auctioned through licensed " +
			"commission agents. Many states now also allow direct sales and private " +
			"markets alongside APMC yards.",
	},
	"contract_farming": {
		summary: "Contract Farming",
		detail: "Written agreements between farmers and buyers fixing price, quality, " +
			"and quantity before sowing. Registration with the state agriculture " +
			"department protects both parties on default.",
	},
	"land_reforms": {
		summary: "Land Reforms and Records",
		detail: "Land ceiling, tenancy regulation, and digitization of records under " +
			"the DILRMP program. Updated records are required for most scheme and " +
			"credit eligibility.",
	},
	"water_rights": {
		summary: "Water Rights and Regulation",
		detail: "Groundwater extraction is regulated by state groundwater authorities; " +
			"new borewells in notified blocks need permits. Canal water follows the " +
			"warabandi rotation schedule.",
	},
}

var statePolicies = map[string]string{
	"punjab": "Punjab offers free electricity for agricultural tube wells and a paddy " +
		"straw management subsidy for machinery like Happy Seeders.",
	"maharashtra": "Maharashtra runs the Jalyukt Shivar water conservation program and " +
		"a separate horticulture mission with drip irrigation subsidies.",
	"karnataka": "Karnataka's Raitha Siri scheme supports millet growers with " +
		"₹10,000/ha and the state runs its own crop survey app for records.",
}

// Policy explains agricultural regulations and government programs.
type Policy struct {
	gen    domain.TextGenerator
	logger *slog.Logger
}

// NewPolicy creates the policy query responder. gen may be nil.
func NewPolicy(gen domain.TextGenerator, logger *slog.Logger) *Policy {
	return &Policy{gen: gen, logger: logger}
}

func (a *Policy) Name() string { return "Policy Query" }

func (a *Policy) Description() string {
	return "Explains agricultural policies, regulations, and government programs"
}

func (a *Policy) Capabilities() []string {
	return []string{"policy_explanation", "regulation_lookup", "scheme_navigation"}
}

func (a *Policy) Process(ctx context.Context, query string, uc *domain.UserContext) (*domain.AgentResponse, error) {
	topic, entry := matchPolicy(query)
	location := extractLocation(query, uc)

	var fallback strings.Builder
	if topic != "" {
		fmt.Fprintf(&fallback, "%s: %s", entry.summary, entry.detail)
	} else {
		fallback.WriteString("Key national agricultural policies:\n")
		for _, key := range []string{"msp", "apmc", "contract_farming", "land_reforms", "water_rights"} {
			e := nationalPolicies[key]
			fmt.Fprintf(&fallback, "- %s: %s\n", e.summary, e.detail)
		}
	}
	if note, ok := statePolicies[strings.ToLower(location)]; ok {
		fmt.Fprintf(&fallback, "\n\nState note for %s: %s", location, note)
	}

	prompt := fmt.Sprintf(`As an agricultural policy expert, explain for a farmer:

Topic: %s
Location: %s
Query: %s

Explain in plain language what the policy means for the farmer, eligibility, how to benefit from it, and where to apply or complain.`,
		orUnknown(topic), location, query)

	text := generateOr(ctx, a.gen, a.logger, prompt, fallback.String())

	metadata := map[string]any{
		domain.MetaLocation: location,
		"matched":           topic != "",
	}
	if topic != "" {
		metadata["policy_topic"] = topic
	}

	return &domain.AgentResponse{
		AgentName:  a.Name(),
		Response:   text,
		Confidence: 0.85,
		Metadata:   metadata,
		Citations:  []string{"Ministry of Agriculture and Farmers Welfare", "CACP Reports"},
	}, nil
}

func matchPolicy(query string) (string, policyEntry) {
	lower := strings.ToLower(query)
	aliases := map[string]string{
		"msp":              "msp",
		"support price":    "msp",
		"apmc":             "apmc",
		"mandi":            "apmc",
		"contract farming": "contract_farming",
		"land record":      "land_reforms",
		"land reform":      "land_reforms",
		"water right":      "water_rights",
		"groundwater":      "water_rights",
		"borewell":         "water_rights",
	}
	for alias, key := range aliases {
		if strings.Contains(lower, alias) {
			return key, nationalPolicies[key]
		}
	}
	return "", policyEntry{}
}
