package classifier

import "strings"

// DefaultLabel is assigned when no keyword rule fires.
const DefaultLabel = "Technical"

// rule maps trigger keywords to a category label. Matching is a
// case-insensitive substring test and the first rule with a hit wins,
// so functional rules are listed before the broader technical ones.
type rule struct {
	label    string
	keywords []string
}

var rules = []rule{
	{label: "Functional", keywords: []string{
		"authentication", "login", "password", "mfa",
		"dashboard", "overview",
		"account", "balance", "statements", "savings",
		"transfer", "funds", "money",
		"service request", "support",
		"credit card", "debit card", "card issuance",
		"bill", "payment", "utility",
		"budgeting", "expenditure", "finance",
		"family", "joint",
		"loan", "mortgage", "interest rate",
		"settings", "preferences",
		"administration", "user management",
		"onboarding", "register", "signup", "kyc",
		"workflow", "approval",
	}},
	{label: "Technical", keywords: []string{
		"system requirements",
		"interface", "accessibility",
		"architecture", "system design", "compute", "storage",
		"disaster recovery", "backup",
		"integration", "api", "third-party",
		"cloud", "deployment", "scalability",
		"performance", "latency",
		"encryption", "data protection", "security", "protocols",
		"sso", "framework", "database",
	}},
}

// Classify returns the category label for a query, or the empty string
// when no rule matches.
func Classify(query string) string {
	q := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.label
			}
		}
	}
	return ""
}

// OrDefault keeps a label the prompt layer knows, otherwise classifies
// the query, falling back to DefaultLabel.
func OrDefault(label, query string) string {
	switch label {
	case "Technical", "Functional":
		return label
	}
	if l := Classify(query); l != "" {
		return l
	}
	return DefaultLabel
}
