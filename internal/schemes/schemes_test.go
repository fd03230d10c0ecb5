package schemes

import "testing"

func ids(list []Scheme) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestEligibleLandBounds(t *testing.T) {
	threeAcres := 3 * 0.4047

	max2 := Scheme{Eligibility: Eligibility{LandSize: &LandRange{Max: hectares(2)}}}
	if !max2.Eligible(threeAcres, "Karnataka") {
		t.Error("3 acres should qualify for a 2 ha maximum")
	}

	max1 := Scheme{Eligibility: Eligibility{LandSize: &LandRange{Max: hectares(1)}}}
	if max1.Eligible(threeAcres, "Karnataka") {
		t.Error("3 acres should not qualify for a 1 ha maximum")
	}

	atLeast := Scheme{Eligibility: Eligibility{LandSize: &LandRange{Min: hectares(0.1)}}}
	if atLeast.Eligible(0.05, "Karnataka") {
		t.Error("0.05 ha should fall below a 0.1 ha minimum")
	}
	if !atLeast.Eligible(0.1, "Karnataka") {
		t.Error("the minimum itself should qualify")
	}
}

func TestEligibleState(t *testing.T) {
	s := Scheme{Eligibility: Eligibility{State: "Karnataka"}}
	if !s.Eligible(1, "karnataka") {
		t.Error("state match should be case-insensitive")
	}
	if s.Eligible(1, "Kerala") {
		t.Error("scheme scoped to another state should be excluded")
	}
	if !(Scheme{}).Eligible(1000, "") {
		t.Error("unconstrained scheme should always qualify")
	}
}

func TestFilterCatalog(t *testing.T) {
	tests := []struct {
		name     string
		hectares float64
		state    string
		want     []string
	}{
		{"small karnataka farm", 1.2, "Karnataka", []string{"pm-kisan", "raitha-bandhu", "soil-health-card", "kisan-credit-card"}},
		{"small kerala farm", 1.2, "Kerala", []string{"pm-kisan", "soil-health-card", "kisan-credit-card"}},
		{"large farm", 12, "Karnataka", []string{"soil-health-card", "kisan-credit-card"}},
		{"tiny plot", 0.05, "Karnataka", []string{"pm-kisan", "raitha-bandhu", "soil-health-card"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(Catalog(), tt.hectares, tt.state))
			if len(got) != len(tt.want) {
				t.Fatalf("Filter = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Filter = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestCatalogIsCopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "changed"
	if Catalog()[0].Name == "changed" {
		t.Error("Catalog should return a copy")
	}
	if len(c) != 4 {
		t.Errorf("catalog has %d schemes, want 4", len(c))
	}
}
