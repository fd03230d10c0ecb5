// Package structure pulls typed fields out of free-text advice. Every
// extractor is a pure best-effort scan with a literal default and never fails.
package structure

import (
	"regexp"
	"strings"
)

// Urgency is the severity read from a disease diagnosis.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Recommendation is the selling stance read from market advice.
type Recommendation string

const (
	Sell Recommendation = "sell"
	Hold Recommendation = "hold"
	Wait Recommendation = "wait"
)

const (
	DefaultTreatment = "Follow the detailed recommendations above"
	DefaultCost      = "Cost varies based on farm size and severity"
	DefaultSchedule  = "Water early morning (6-8 AM) and evening (6-8 PM)"
)

var (
	highUrgencyKeywords = []string{"urgent", "immediate", "severe", "critical", "emergency"}
	lowUrgencyKeywords  = []string{"minor", "slight", "preventive", "maintenance", "routine"}

	sellKeywords = []string{"sell now", "good time to sell", "sell immediately", "prices are high"}
	// "wait" is also the fallback value. The keyword check runs first, so a
	// reply that says "wait" is read as hold.
	holdKeywords = []string{"hold", "wait", "prices may increase", "store"}

	treatmentVerbs = []string{"spray", "apply", "use"}

	costPattern = regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr)\s?\d[\d,]*(?:\.\d+)?|(?:cost|price).*(?:₹|\brs\.?|\binr)\s?\d[\d,]*(?:\.\d+)?`)
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ExtractUrgency checks high-severity words first, then low, else medium.
func ExtractUrgency(text string) Urgency {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, highUrgencyKeywords):
		return UrgencyHigh
	case containsAny(t, lowUrgencyKeywords):
		return UrgencyLow
	default:
		return UrgencyMedium
	}
}

// ExtractTreatments returns every trimmed line mentioning spray, apply or use.
func ExtractTreatments(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if containsAny(strings.ToLower(line), treatmentVerbs) {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return []string{DefaultTreatment}
	}
	return out
}

// ExtractCost returns the first currency amount, or a cost/price phrase
// running up to one, whichever starts first.
func ExtractCost(text string) string {
	if m := costPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return DefaultCost
}

// ExtractRecommendation reads sell keywords, then hold keywords, else wait.
func ExtractRecommendation(text string) Recommendation {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, sellKeywords):
		return Sell
	case containsAny(t, holdKeywords):
		return Hold
	default:
		return Wait
	}
}

// ExtractSchedule returns the trimmed lines that name a time of day. AM and
// PM are matched in upper case only so words like "amount" do not count.
func ExtractSchedule(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(line, "AM") || strings.Contains(line, "PM") ||
			strings.Contains(lower, "morning") || strings.Contains(lower, "evening") {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return []string{DefaultSchedule}
	}
	return out
}
