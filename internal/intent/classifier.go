package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/krishisaarathi/internal/llm"
)

// Classifier runs the keyword rules and asks the oracle only when they
// come back General.
type Classifier struct {
	oracle llm.Generator
	logger *zap.Logger
}

// NewClassifier creates a Classifier. A nil logger disables logging.
func NewClassifier(oracle llm.Generator, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{oracle: oracle, logger: logger}
}

// Classify never fails: oracle errors and unusable replies degrade to the
// rule result.
func (c *Classifier) Classify(ctx context.Context, query string, hasImage bool) Intent {
	ruled := ClassifyByRules(query, hasImage)
	if ruled != General || c.oracle == nil {
		return ruled
	}

	reply, err := c.oracle.Generate(ctx, classificationPrompt(query, hasImage))
	if err != nil {
		c.logger.Warn("intent classification fell back to rules", zap.Error(err))
		return ruled
	}

	if got, ok := ParseReply(reply); ok {
		return got
	}
	c.logger.Debug("unrecognised classification reply", zap.String("reply", reply))
	return ruled
}

// ParseReply finds the first intent, in declaration order, contained in the
// lowercased reply.
func ParseReply(reply string) (Intent, bool) {
	r := strings.ToLower(strings.TrimSpace(reply))
	if r == "" {
		return General, false
	}
	for _, i := range All {
		if strings.Contains(r, string(i)) {
			return i, true
		}
	}
	return General, false
}

func classificationPrompt(query string, hasImage bool) string {
	image := "No"
	if hasImage {
		image = "Yes"
	}
	return fmt.Sprintf(`
TASK: Decide which category a farmer's question belongs to.

Categories:
- disease: crop diseases, pests, plant health, plants dying or discoloured
- irrigation: watering, water management, soil moisture, drought
- market: crop prices, selling, market trends, mandis, profit
- scheme: government schemes, subsidies, loans, benefits
- weather: rain, temperature, forecasts, climate
- general: farming questions that fit none of the above

Farmer's Query: %q
Has Image: %s

RULES:
- An image together with symptoms or a problem means disease
- Prices or selling mean market
- Water or watering means irrigation
- Schemes, subsidies or loans mean scheme
- Rain, temperature or forecasts mean weather
- Anything else is general

Answer with the category name only (disease/irrigation/market/scheme/weather/general).
`, query, image)
}
