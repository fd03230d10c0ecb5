package structure

import (
	"strings"
	"unicode/utf8"
)

// ExcerptLimit bounds every daily summary excerpt, in runes.
const ExcerptLimit = 150

const (
	DefaultWeatherExcerpt   = "Check local weather conditions"
	DefaultMarketHighlights = "No market updates available today"
	DefaultIrrigationTasks  = "Follow regular watering schedule"
	DefaultTip              = "Keep monitoring your crops regularly"
)

// Categories are the four excerpts stored with a daily summary.
type Categories struct {
	Weather    string `json:"weather"`
	Market     string `json:"market"`
	Irrigation string `json:"irrigation"`
	General    string `json:"general"`
}

// ExtractCategories builds all four excerpts. Weather and the tip come from
// the summary itself; market and irrigation from the advice it was built on.
func ExtractCategories(summary, marketAdvice, irrigationAdvice string) Categories {
	return Categories{
		Weather:    ExtractWeatherExcerpt(summary),
		Market:     ExtractMarketHighlights(marketAdvice),
		Irrigation: ExtractIrrigationTasks(irrigationAdvice),
		General:    ExtractTip(summary),
	}
}

// ExtractWeatherExcerpt returns the text from the first "weather" up to the
// next market, irrigation, today or tomorrow mention or blank line.
func ExtractWeatherExcerpt(summary string) string {
	s, ok := section(summary, "weather", []string{"market", "irrigation", "today", "tomorrow", "\n\n"}, false)
	if !ok {
		return DefaultWeatherExcerpt
	}
	return bound(s)
}

// ExtractMarketHighlights joins the first three lines of the market advice.
func ExtractMarketHighlights(advice string) string {
	lines := strings.SplitN(advice, "\n", 4)
	if len(lines) > 3 {
		lines = lines[:3]
	}
	joined := strings.TrimSpace(strings.Join(lines, " "))
	if joined == "" {
		return DefaultMarketHighlights
	}
	return bound(joined)
}

// ExtractIrrigationTasks returns the text from the first "today" up to the
// next tomorrow or next mention or blank line.
func ExtractIrrigationTasks(advice string) string {
	s, ok := section(advice, "today", []string{"tomorrow", "next", "\n\n"}, false)
	if !ok {
		return DefaultIrrigationTasks
	}
	return bound(s)
}

// ExtractTip returns the rest of the line starting at the first "tip".
func ExtractTip(summary string) string {
	s, ok := section(summary, "tip", []string{"\n"}, true)
	if !ok {
		return DefaultTip
	}
	return bound(s)
}

// section finds the first case-insensitive occurrence of start and returns
// the text from it up to the earliest stop marker after it. When toEnd is
// set, running out of text also closes the section.
func section(text, start string, stops []string, toEnd bool) (string, bool) {
	lower := asciiLower(text)
	i := strings.Index(lower, start)
	if i < 0 {
		return "", false
	}
	from := i + len(start)
	end := -1
	for _, stop := range stops {
		if j := strings.Index(lower[from:], stop); j >= 0 && (end < 0 || from+j < end) {
			end = from + j
		}
	}
	if end < 0 {
		if !toEnd {
			return "", false
		}
		end = len(text)
	}
	s := strings.TrimSpace(text[i:end])
	return s, s != ""
}

// asciiLower lowercases A-Z only, so byte offsets stay aligned with text.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// bound cuts s to ExcerptLimit runes, marking the cut with "...".
func bound(s string) string {
	if utf8.RuneCountInString(s) <= ExcerptLimit {
		return s
	}
	n := 0
	for i := range s {
		if n == ExcerptLimit {
			return strings.TrimSpace(s[:i]) + "..."
		}
		n++
	}
	return s
}
