// Package profile stores farmer profiles and renders them into the context
// block every agent prompt starts with.
package profile

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when advice is requested for a uid with no profile.
var ErrNotFound = errors.New("profile not found")

// LandUnit is the unit LandSize is expressed in.
type LandUnit string

const (
	Acres    LandUnit = "acres"
	Hectares LandUnit = "hectares"
)

// AcresToHectares converts acres to hectares.
const AcresToHectares = 0.4047

// Preferences are the farmer's notification switches.
type Preferences struct {
	AudioNotifications bool `json:"audioNotifications"`
	DailySummary       bool `json:"dailySummary"`
	MarketAlerts       bool `json:"marketAlerts"`
}

// Profile is a farmer's identity and farm attributes. CropsGrown is ordered;
// the first entry is the primary crop and the list may be empty.
type Profile struct {
	UserID            string         `json:"userId"`
	FullName          string         `json:"fullName"`
	PhoneNumber       string         `json:"phoneNumber"`
	District          string         `json:"district"`
	LandSize          float64        `json:"landSize"`
	LandUnit          LandUnit       `json:"landUnit"`
	SoilType          string         `json:"soilType"`
	CropsGrown        []string       `json:"cropsGrown"`
	FarmingExperience int            `json:"farmingExperience"`
	IrrigationType    string         `json:"irrigationType"`
	Language          string         `json:"language"`
	Preferences       Preferences    `json:"preferences"`
	Extra             map[string]any `json:"extra,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// PrimaryCrop returns the first crop, lowercased, or "" when none is recorded.
func (p *Profile) PrimaryCrop() string {
	if len(p.CropsGrown) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(p.CropsGrown[0]))
}

// Hectares returns the land size in hectares.
func (p *Profile) Hectares() float64 {
	if p.LandUnit == Hectares {
		return p.LandSize
	}
	return p.LandSize * AcresToHectares
}

// Clone returns a deep copy so cached values can be handed out safely.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.CropsGrown != nil {
		c.CropsGrown = append([]string(nil), p.CropsGrown...)
	}
	if p.Extra != nil {
		c.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Patch is a merge-style partial update. Nil fields are left unchanged.
type Patch struct {
	FullName          *string           `json:"fullName,omitempty"`
	PhoneNumber       *string           `json:"phoneNumber,omitempty"`
	District          *string           `json:"district,omitempty"`
	LandSize          *float64          `json:"landSize,omitempty"`
	LandUnit          *LandUnit         `json:"landUnit,omitempty"`
	SoilType          *string           `json:"soilType,omitempty"`
	CropsGrown        *[]string         `json:"cropsGrown,omitempty"`
	FarmingExperience *int              `json:"farmingExperience,omitempty"`
	IrrigationType    *string           `json:"irrigationType,omitempty"`
	Language          *string           `json:"language,omitempty"`
	Preferences       *PreferencesPatch `json:"preferences,omitempty"`
}

// PreferencesPatch updates individual preference switches.
type PreferencesPatch struct {
	AudioNotifications *bool `json:"audioNotifications,omitempty"`
	DailySummary       *bool `json:"dailySummary,omitempty"`
	MarketAlerts       *bool `json:"marketAlerts,omitempty"`
}

// Apply merges patch into p.
func (p *Profile) Apply(patch Patch) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		p.PhoneNumber = *patch.PhoneNumber
	}
	if patch.District != nil {
		p.District = *patch.District
	}
	if patch.LandSize != nil {
		p.LandSize = *patch.LandSize
	}
	if patch.LandUnit != nil {
		p.LandUnit = *patch.LandUnit
	}
	if patch.SoilType != nil {
		p.SoilType = *patch.SoilType
	}
	if patch.CropsGrown != nil {
		p.CropsGrown = append([]string(nil), (*patch.CropsGrown)...)
	}
	if patch.FarmingExperience != nil {
		p.FarmingExperience = *patch.FarmingExperience
	}
	if patch.IrrigationType != nil {
		p.IrrigationType = *patch.IrrigationType
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if pp := patch.Preferences; pp != nil {
		if pp.AudioNotifications != nil {
			p.Preferences.AudioNotifications = *pp.AudioNotifications
		}
		if pp.DailySummary != nil {
			p.Preferences.DailySummary = *pp.DailySummary
		}
		if pp.MarketAlerts != nil {
			p.Preferences.MarketAlerts = *pp.MarketAlerts
		}
	}
}

// Validate checks the fields the store constrains.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("uid is required")
	}
	if p.LandUnit != Acres && p.LandUnit != Hectares {
		return errors.New("landUnit must be acres or hectares")
	}
	if p.LandSize < 0 {
		return errors.New("landSize must be non-negative")
	}
	if p.FarmingExperience < 0 {
		return errors.New("farmingExperience must be non-negative")
	}
	return nil
}
