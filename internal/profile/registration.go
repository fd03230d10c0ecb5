package profile

import (
	"strconv"
	"strings"
)

// registrationAliases maps the short field names used by the registration
// form to profile fields.
var registrationAliases = map[string]string{
	"name":              "fullName",
	"phone":             "phoneNumber",
	"location":          "district",
	"farmSize":          "landSize",
	"crops":             "cropsGrown",
	"experience":        "farmingExperience",
	"preferredLanguage": "language",
}

var knownFields = map[string]bool{
	"fullName": true, "phoneNumber": true, "district": true, "landSize": true,
	"landUnit": true, "soilType": true, "cropsGrown": true, "farmingExperience": true,
	"irrigationType": true, "language": true, "preferences": true,
	"userId": true, "createdAt": true, "updatedAt": true,
}

// FromRegistration builds a new profile from registration data. Aliased
// fields are read first and canonical field names override them; anything
// unrecognised is kept in Extra. Preferences default to all on.
func FromRegistration(uid string, data map[string]any) *Profile {
	p := &Profile{
		UserID:            uid,
		LandUnit:          Acres,
		SoilType:          "mixed",
		FarmingExperience: 1,
		IrrigationType:    "traditional",
		Language:          "en",
		Preferences: Preferences{
			AudioNotifications: true,
			DailySummary:       true,
			MarketAlerts:       true,
		},
	}

	for alias, field := range registrationAliases {
		if v, ok := data[alias]; ok {
			p.set(field, v)
		}
	}
	for field, v := range data {
		if _, isAlias := registrationAliases[field]; isAlias {
			continue
		}
		if knownFields[field] {
			p.set(field, v)
			continue
		}
		if p.Extra == nil {
			p.Extra = map[string]any{}
		}
		p.Extra[field] = v
	}
	return p
}

func (p *Profile) set(field string, v any) {
	switch field {
	case "fullName":
		p.FullName = asString(v, p.FullName)
	case "phoneNumber":
		p.PhoneNumber = asString(v, p.PhoneNumber)
	case "district":
		p.District = asString(v, p.District)
	case "landSize":
		if f, ok := asFloat(v); ok && f >= 0 {
			p.LandSize = f
		}
	case "landUnit":
		if u := LandUnit(strings.ToLower(asString(v, ""))); u == Acres || u == Hectares {
			p.LandUnit = u
		}
	case "soilType":
		p.SoilType = asString(v, p.SoilType)
	case "cropsGrown":
		p.CropsGrown = asStrings(v)
	case "farmingExperience":
		if f, ok := asFloat(v); ok && f > 0 {
			p.FarmingExperience = int(f)
		}
	case "irrigationType":
		p.IrrigationType = asString(v, p.IrrigationType)
	case "language":
		p.Language = asString(v, p.Language)
	case "preferences":
		m, ok := v.(map[string]any)
		if !ok {
			return
		}
		if b, ok := m["audioNotifications"].(bool); ok {
			p.Preferences.AudioNotifications = b
		}
		if b, ok := m["dailySummary"].(bool); ok {
			p.Preferences.DailySummary = b
		}
		if b, ok := m["marketAlerts"].(bool); ok {
			p.Preferences.MarketAlerts = b
		}
	}
}

func asString(v any, def string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

// asFloat accepts JSON numbers and numeric strings. Strings are read up to
// the first non-numeric character, so "5 acres" is 5.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		end := 0
		for end < len(s) && (s[end] == '.' || s[end] == '-' || (s[end] >= '0' && s[end] <= '9')) {
			end++
		}
		f, err := strconv.ParseFloat(s[:end], 64)
		return f, err == nil
	}
	return 0, false
}

func asStrings(v any) []string {
	switch xs := v.(type) {
	case []string:
		return trimAll(xs)
	case []any:
		var out []string
		for _, x := range xs {
			if s, ok := x.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		return trimAll(strings.Split(xs, ","))
	}
	return nil
}
