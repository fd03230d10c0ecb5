package agents

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ziadkadry99/krishisaarathi/internal/profile"
)

const (
	defaultIrrigationQuery = "General irrigation advice needed"
	defaultMarketQuery     = "Need market advice for my crops"
	defaultWeatherQuery    = "How should I plan my farm work around this week's weather?"
	defaultDiseaseQuery    = "General crop health check for my crops"
)

const diseasePromptTemplate = `%s
TASK: %s

%s
Farmer's Query: %q

INSTRUCTIONS:
1. %s
2. Consider the farmer's crops (%s) and location (%s)
3. Provide a detailed analysis including:
   - Disease identification (if any)
   - Severity assessment (low/medium/high)
   - Specific treatment recommendations
   - Cost estimates for treatments
   - Prevention strategies for the future

RESPONSE FORMAT:
Respond in clear English covering:
- What disease or problem you identified %s
- Immediate actions the farmer should take
- Specific treatments and chemicals needed, one per line
- Where to buy the treatments locally
- Expected treatment costs in rupees
- Timeline for recovery
- Prevention tips

If no disease is apparent, give a general crop health assessment and maintenance advice.
Be practical and specific: mention product names, application methods and dosages.
`

const irrigationPromptTemplate = `%s
TASK: Provide irrigation advice based on current conditions.

Current Weather Data for %s:
%s

Farmer's Query: %q

ANALYSIS REQUIREMENTS:
1. Consider the soil type (%s) and its water retention
2. Analyse current weather and the upcoming forecast
3. Factor in the water needs of the crops: %s
4. Consider the irrigation method: %s
5. Account for the farm size: %s

RESPONSE FORMAT:
Give irrigation guidance covering:
- Current soil moisture assessment
- Daily water requirements for the next 7 days
- Best times to irrigate, one line per morning or evening slot with the time (e.g. 6 AM)
- Specific advice for each crop
- Water conservation tips for their irrigation method
- Signs of over-watering and under-watering
- Adjustments for the forecast

Be specific with watering times, durations and quantities per crop.
`

const marketPromptTemplate = `%s
TASK: Provide market advice based on current prices and trends.

Farmer's Query: %q

Current Market Data for %s (prices in %s):
%s

INSTRUCTIONS:
1. Analyse current price trends for the farmer's crops: %s
2. Compare with the average prices shown and seasonal patterns
3. Consider local market conditions in %s
4. Give a clear recommendation: sell now, hold, or wait
5. Suggest alternative crops if prices are poor
6. Recommend nearby mandis with better prices

RESPONSE FORMAT:
Give market advice in English covering:
- Current price situation for each crop
- Best selling strategy
- Which local mandis offer the best prices
- Expected price trends for the next 2-4 weeks
- Transport and logistics advice
- Quality requirements for better prices
`

const schemePromptTemplate = `%s
TASK: Recommend relevant government schemes and subsidies for this farmer.
%s
SCHEMES THE FARMER IS ELIGIBLE FOR:
%s

ELIGIBILITY CONTEXT:
- Farm size: %s
- Crops grown: %s
- Location: %s, %s
- Experience: %d years

RESPONSE FORMAT:
For each scheme above, explain:
- What it offers and the benefit amount
- Why the farmer qualifies
- Step-by-step application process
- Documents to keep ready
- Where to apply
- Expected timeline for approval and payment

Be practical: focus on schemes the farmer can actually apply for.
`

const weatherPromptTemplate = `%s
TASK: Brief the farmer on the weather and how it affects their farm this week.

Farmer's Query: %q

Current Weather Data for %s:
%s

Alerts already identified:
%s

RESPONSE FORMAT:
In plain English, cover:
- Today's conditions and what they mean for the crops (%s)
- The outlook for the next 7 days
- Field work to schedule or postpone
- Protective steps for the alerts above
Keep it short enough to be read aloud in under a minute.
`

const summaryPromptTemplate = `%s
TASK: Create a daily farming summary for this farmer.

MARKET INSIGHTS:
%s

IRRIGATION ADVICE:
%s

CREATE A DAILY SUMMARY INCLUDING:
1. A good morning greeting using the farmer's name
2. Today's priority tasks based on weather and crops
3. Weather: a short line on today's weather
4. Market highlights for their crops
5. Irrigation recommendations for today
6. Any urgent actions needed
7. Tip: one practical farming tip for the day, on its own line starting with "Tip:"
8. An encouraging closing message

Keep the tone warm and practical, and keep it to 2-3 minutes of speaking time.
Speak as a trusted farming advisor talking directly to the farmer.
`

func cropsText(p *profile.Profile) string {
	var crops []string
	for _, c := range p.CropsGrown {
		if c = strings.TrimSpace(c); c != "" {
			crops = append(crops, c)
		}
	}
	if len(crops) == 0 {
		return "mixed crops"
	}
	return strings.Join(crops, ", ")
}

func landText(p *profile.Profile) string {
	size := p.LandSize
	if size <= 0 {
		size = 1
	}
	unit := p.LandUnit
	if unit == "" {
		unit = profile.Acres
	}
	return strconv.FormatFloat(size, 'f', -1, 64) + " " + string(unit)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func diseasePrompt(profileBlock string, p *profile.Profile, state, query, imageURL string) string {
	task := "Provide disease diagnosis and treatment advice based on the farmer's description."
	imageLine := "No image provided - diagnosis based on the text description only."
	step := "Analyse the farmer's description for disease symptoms, pests or plant health issues"
	from := "from the description"
	if imageURL != "" {
		task = "Analyse the crop image for disease diagnosis and provide treatment advice."
		imageLine = "Image URL: " + imageURL
		step = "Examine the image carefully for disease symptoms, pests or plant health issues"
		from = "from the image and description"
	}
	return fmt.Sprintf(diseasePromptTemplate,
		profileBlock, task, imageLine, query, step,
		cropsText(p), orDefault(p.District, state), from)
}

func irrigationPrompt(profileBlock string, p *profile.Profile, state, query, weatherJSON string) string {
	return fmt.Sprintf(irrigationPromptTemplate,
		profileBlock, orDefault(p.District, state), weatherJSON, orDefault(query, defaultIrrigationQuery),
		orDefault(p.SoilType, "mixed"), cropsText(p), orDefault(p.IrrigationType, "traditional"), landText(p))
}

func marketPrompt(profileBlock string, p *profile.Profile, state, query, unit, pricesJSON string) string {
	district := orDefault(p.District, state)
	return fmt.Sprintf(marketPromptTemplate,
		profileBlock, orDefault(query, defaultMarketQuery), district, unit, pricesJSON,
		cropsText(p), district)
}

func schemePrompt(profileBlock string, p *profile.Profile, state, query, schemesJSON string) string {
	queryLine := ""
	if strings.TrimSpace(query) != "" {
		queryLine = fmt.Sprintf("\nFarmer's Query: %q\n", query)
	}
	experience := p.FarmingExperience
	if experience <= 0 {
		experience = 1
	}
	return fmt.Sprintf(schemePromptTemplate,
		profileBlock, queryLine, schemesJSON,
		landText(p), cropsText(p), orDefault(p.District, state), state, experience)
}

func weatherPrompt(profileBlock string, p *profile.Profile, state, query, weatherJSON string, alerts []string) string {
	return fmt.Sprintf(weatherPromptTemplate,
		profileBlock, orDefault(query, defaultWeatherQuery), orDefault(p.District, state), weatherJSON,
		"- "+strings.Join(alerts, "\n- "), cropsText(p))
}

func summaryPrompt(profileBlock, marketAdvice, irrigationAdvice string) string {
	return fmt.Sprintf(summaryPromptTemplate, profileBlock, marketAdvice, irrigationAdvice)
}
