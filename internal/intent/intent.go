// Package intent classifies a farmer's query into the domain that should
// answer it.
package intent

import "strings"

// Intent is the category of a query. The set is closed.
type Intent string

const (
	Disease    Intent = "disease"
	Irrigation Intent = "irrigation"
	Market     Intent = "market"
	Scheme     Intent = "scheme"
	Weather    Intent = "weather"
	General    Intent = "general"
)

// All lists every intent in declaration order. Reply parsing relies on it.
var All = []Intent{Disease, Irrigation, Market, Scheme, Weather, General}

// Valid reports whether i is one of All.
func (i Intent) Valid() bool {
	for _, v := range All {
		if i == v {
			return true
		}
	}
	return false
}

func (i Intent) String() string {
	return string(i)
}

// Parse normalises s and returns the matching intent.
func Parse(s string) (Intent, bool) {
	i := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !i.Valid() {
		return General, false
	}
	return i, true
}

var (
	diseaseKeywords = []string{
		"disease", "pest", "infection", "spot", "dying", "yellow", "brown", "sick",
		"bug", "insect", "fungus", "rot", "wilt", "blight", "leaf", "stem", "root",
		"damage", "problem", "issue", "unhealthy", "cure", "treatment", "medicine",
	}
	marketKeywords = []string{
		"price", "sell", "market", "mandi", "profit", "cost", "rate", "money",
		"buy", "selling", "purchase", "trade", "dealer", "buyer", "export",
		"demand", "supply", "wholesale", "retail", "commission", "transport",
	}
	irrigationKeywords = []string{
		"water", "irrigation", "watering", "dry", "moisture", "drought", "rain",
		"sprinkle", "flood", "drip", "pump", "well", "bore", "canal", "reservoir",
		"wet", "soil moisture", "water management", "water schedule",
	}
	schemeKeywords = []string{
		"scheme", "subsidy", "government", "benefit", "loan", "support", "grant",
		"policy", "registration", "application", "eligibility", "documentation",
		"pm kisan", "credit", "insurance", "compensation", "assistance",
	}
	weatherKeywords = []string{
		"weather", "rain", "temperature", "climate", "forecast", "humidity",
		"wind", "storm", "drought", "flood", "season", "monsoon", "winter",
		"summer", "heat", "cold", "sunny", "cloudy", "precipitation",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ClassifyByRules is the keyword classifier. Matching is plain lowercase
// substring search and the check order below is the priority: a query that
// hits several sets takes the first one.
func ClassifyByRules(query string, hasImage bool) Intent {
	q := strings.ToLower(query)

	switch {
	case hasImage && containsAny(q, diseaseKeywords):
		return Disease
	case containsAny(q, marketKeywords):
		return Market
	case containsAny(q, irrigationKeywords):
		return Irrigation
	case containsAny(q, schemeKeywords):
		return Scheme
	case containsAny(q, weatherKeywords):
		return Weather
	case containsAny(q, diseaseKeywords):
		return Disease
	default:
		return General
	}
}
