package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultState is the operating state used when none is configured.
const DefaultState = "Karnataka"

// Render formats p as the profile context block for DefaultState.
func Render(p *Profile) string {
	return RenderIn(p, DefaultState)
}

// RenderIn formats p as the profile context block. It never fails: every
// missing field is replaced by a neutral default.
func RenderIn(p *Profile, state string) string {
	if p == nil {
		p = &Profile{}
	}
	if state == "" {
		state = DefaultState
	}

	name := orDefault(p.FullName, "Farmer")
	district := orDefault(p.District, state)

	size := p.LandSize
	if size <= 0 {
		size = 1
	}
	unit := orDefault(string(p.LandUnit), string(Acres))

	crops := "mixed crops"
	if nonEmpty := trimAll(p.CropsGrown); len(nonEmpty) > 0 {
		crops = strings.Join(nonEmpty, ", ")
	}

	experience := p.FarmingExperience
	if experience <= 0 {
		experience = 1
	}

	var b strings.Builder
	b.WriteString("\nFARMER PROFILE CONTEXT:\n")
	fmt.Fprintf(&b, "- Name: %s\n", name)
	fmt.Fprintf(&b, "- Location: %s, %s, India\n", district, state)
	fmt.Fprintf(&b, "- Farm Size: %s %s\n", strconv.FormatFloat(size, 'f', -1, 64), unit)
	fmt.Fprintf(&b, "- Soil Type: %s\n", orDefault(p.SoilType, "mixed"))
	fmt.Fprintf(&b, "- Primary Crops: %s\n", crops)
	fmt.Fprintf(&b, "- Farming Experience: %d years\n", experience)
	fmt.Fprintf(&b, "- Irrigation Method: %s\n", orDefault(p.IrrigationType, "traditional"))
	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("- Tailor the advice to this farmer's profile\n")
	b.WriteString("- Take their crops, soil type and location into account\n")
	b.WriteString("- Address the farmer respectfully and personally\n")
	b.WriteString("- Keep recommendations practical for their farm size and experience\n")
	fmt.Fprintf(&b, "- Consider local conditions in %s district of %s\n", district, state)
	b.WriteString("- Use clear, practical English suitable for farmers\n")
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func trimAll(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
