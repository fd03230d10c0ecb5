// Package schemes holds the government scheme catalog and the eligibility
// rules applied to a farmer's land and state.
package schemes

import "strings"

// LandRange bounds eligible land in hectares. A nil bound is open.
type LandRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Eligibility is what a scheme requires of a farmer. The zero value admits
// everyone.
type Eligibility struct {
	LandSize    *LandRange `json:"landSize,omitempty"`
	State       string     `json:"state,omitempty"`
	FarmerTypes []string   `json:"farmerTypes,omitempty"`
}

// Scheme is one government programme.
type Scheme struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Benefit         string      `json:"benefit"`
	Eligibility     Eligibility `json:"eligibility"`
	ApplicationLink string      `json:"applicationLink"`
	Documents       []string    `json:"documents"`
}

func hectares(v float64) *float64 { return &v }

var catalog = []Scheme{
	{
		ID:          "pm-kisan",
		Name:        "PM-KISAN (Pradhan Mantri Kisan Samman Nidhi)",
		Description: "Income support scheme for small and marginal farmers",
		Benefit:     "₹6,000 per year in three installments",
		Eligibility: Eligibility{
			LandSize:    &LandRange{Max: hectares(2)},
			FarmerTypes: []string{"small", "marginal"},
		},
		ApplicationLink: "https://pmkisan.gov.in",
		Documents:       []string{"Aadhaar Card", "Land Records", "Bank Account Details"},
	},
	{
		ID:          "raitha-bandhu",
		Name:        "Raitha Bandhu (Karnataka)",
		Description: "Investment support scheme for farmers in Karnataka",
		Benefit:     "₹10,000 per hectare per season",
		Eligibility: Eligibility{
			LandSize: &LandRange{Max: hectares(10)},
			State:    "Karnataka",
		},
		ApplicationLink: "https://raitamitra.karnataka.gov.in",
		Documents:       []string{"Land Records", "Aadhaar Card", "Bank Passbook"},
	},
	{
		ID:              "soil-health-card",
		Name:            "Soil Health Card Scheme",
		Description:     "Free soil testing and nutrient recommendations",
		Benefit:         "Free soil testing worth ₹500-1000",
		ApplicationLink: "https://soilhealth.dac.gov.in",
		Documents:       []string{"Land Records", "Aadhaar Card"},
	},
	{
		ID:          "kisan-credit-card",
		Name:        "Kisan Credit Card (KCC)",
		Description: "Credit support for farming expenses",
		Benefit:     "Credit up to ₹3 lakhs at subsidized interest rates",
		Eligibility: Eligibility{
			LandSize: &LandRange{Min: hectares(0.1)},
		},
		ApplicationLink: "Contact nearest bank branch",
		Documents:       []string{"Land Records", "Aadhaar Card", "PAN Card", "Bank Statements"},
	},
}

// Catalog returns every known scheme. The slice is a fresh copy.
func Catalog() []Scheme {
	out := make([]Scheme, len(catalog))
	copy(out, catalog)
	return out
}

// Eligible reports whether a farmer with the given land in hectares,
// operating in state, qualifies for s.
func (s Scheme) Eligible(landHectares float64, state string) bool {
	if r := s.Eligibility.LandSize; r != nil {
		if r.Max != nil && landHectares > *r.Max {
			return false
		}
		if r.Min != nil && landHectares < *r.Min {
			return false
		}
	}
	if s.Eligibility.State != "" && !strings.EqualFold(s.Eligibility.State, state) {
		return false
	}
	return true
}

// Filter returns the schemes in list the farmer qualifies for, in order.
func Filter(list []Scheme, landHectares float64, state string) []Scheme {
	out := make([]Scheme, 0, len(list))
	for _, s := range list {
		if s.Eligible(landHectares, state) {
			out = append(out, s)
		}
	}
	return out
}
