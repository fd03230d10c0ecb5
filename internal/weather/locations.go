package weather

import "strings"

type coords struct {
	lat, lng float64
}

type climate struct {
	baseTemp, baseHumidity, baseWind, baseUV float64
	coords
}

const defaultPlace = "bangalore"

var districtCoords = map[string]coords{
	"bangalore":  {12.9716, 77.5946},
	"bengaluru":  {12.9716, 77.5946},
	"mysore":     {12.2958, 76.6394},
	"mysuru":     {12.2958, 76.6394},
	"mangalore":  {12.9141, 74.8560},
	"hubli":      {15.3647, 75.1240},
	"belgaum":    {15.8497, 74.4977},
	"davanagere": {14.4644, 75.9218},
	"bellary":    {15.1394, 76.9214},
	"bijapur":    {16.8302, 75.7100},
	"shimoga":    {13.9299, 75.5681},
	"tumkur":     {13.3392, 77.1186},
	"mumbai":     {19.0760, 72.8777},
	"delhi":      {28.7041, 77.1025},
	"chennai":    {13.0827, 80.2707},
	"kolkata":    {22.5726, 88.3639},
	"hyderabad":  {17.3850, 78.4867},
	"pune":       {18.5204, 73.8567},
}

var climates = map[string]climate{
	"bangalore": {25, 65, 8, 6, coords{12.9716, 77.5946}},
	"mumbai":    {28, 75, 12, 7, coords{19.0760, 72.8777}},
	"delhi":     {26, 60, 10, 6, coords{28.7041, 77.1025}},
	"chennai":   {30, 80, 15, 8, coords{13.0827, 80.2707}},
	"kolkata":   {28, 85, 8, 7, coords{22.5726, 88.3639}},
	"hyderabad": {28, 55, 9, 7, coords{17.3850, 78.4867}},
	"pune":      {26, 65, 10, 6, coords{18.5204, 73.8567}},
}

func placeKey(district string) string {
	return strings.Join(strings.Fields(strings.ToLower(district)), "")
}

// Coordinates returns the lookup point for a district, defaulting to
// Bangalore for places not in the table.
func Coordinates(district string) (lat, lng float64) {
	c, ok := districtCoords[placeKey(district)]
	if !ok {
		c = districtCoords[defaultPlace]
	}
	return c.lat, c.lng
}

func climateFor(district string) climate {
	if c, ok := climates[placeKey(district)]; ok {
		return c
	}
	c := climates[defaultPlace]
	if p, ok := districtCoords[placeKey(district)]; ok {
		c.coords = p
	}
	return c
}

type season struct {
	tempAdj, humidityAdj, uvAdj float64
	cloudCover                  float64
	rainChance                  float64
	condition                   string
}

// seasonFor maps a month to summer (Mar-Jun), monsoon (Jul-Oct) or winter.
func seasonFor(month int) season {
	switch {
	case month >= 3 && month <= 6:
		return season{8, -15, 3, 20, 0.1, "sunny"}
	case month >= 7 && month <= 10:
		return season{-5, 20, -2, 80, 0.7, "rainy"}
	default:
		return season{-8, -10, -1, 40, 0.2, "partly_cloudy"}
	}
}

var conditionVariants = map[string][]string{
	"sunny":         {"sunny", "partly_cloudy"},
	"rainy":         {"rainy", "cloudy", "stormy"},
	"partly_cloudy": {"partly_cloudy", "cloudy", "sunny"},
}

var googleConditions = map[string]string{
	"CLEAR":         "sunny",
	"MOSTLY_CLEAR":  "sunny",
	"PARTLY_CLOUDY": "partly_cloudy",
	"MOSTLY_CLOUDY": "cloudy",
	"CLOUDY":        "cloudy",
	"OVERCAST":      "cloudy",
	"RAIN":          "rainy",
	"LIGHT_RAIN":    "rainy",
	"HEAVY_RAIN":    "rainy",
	"SHOWERS":       "rainy",
	"RAIN_SHOWERS":  "rainy",
	"THUNDERSTORM":  "stormy",
	"SNOW":          "snowy",
	"FOG":           "foggy",
	"MIST":          "foggy",
}

func mapGoogleCondition(t string) string {
	if c, ok := googleConditions[strings.ToUpper(t)]; ok {
		return c
	}
	return "partly_cloudy"
}
