// Package profile classifies survey respondents into commuter profiles.
package profile

import "strings"

// ID identifies a commuter profile
type ID string

// Profile identifiers
const (
	PeakRoutineCommuter ID = "PeakRoutineCommuter"
	FlexibleAvoider     ID = "FlexibleAvoider"
	InflexibleTolerant  ID = "InflexibleTolerant"
	AdaptiveMiddayRider ID = "AdaptiveMiddayRider"
	LateResponder       ID = "LateResponder"
	// UnknownProfile is part of the table but Classify never returns it.
	UnknownProfile ID = "UnknownProfile"
)

// Metadata describes a profile for prompt composition and display
type Metadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

// order is the display order used by All
var order = []ID{
	PeakRoutineCommuter,
	FlexibleAvoider,
	InflexibleTolerant,
	AdaptiveMiddayRider,
	LateResponder,
	UnknownProfile,
}

// metadata is populated once at package init and never written afterwards.
var metadata = map[ID]Metadata{
	PeakRoutineCommuter: {
		Name:        "Peak Routine Commuter",
		Description: "A person with a fixed, early commute schedule who is less likely to change their plans, even when faced with crowding.",
		Traits: []string{
			"Early departure",
			"fixed schedule (5+ days/week)",
			"low flexibility",
			"low digital openness",
			"takes the bus anyway when crowded",
		},
	},
	FlexibleAvoider: {
		Name:        "Flexible Avoider",
		Description: "A person who is highly flexible and actively avoids crowded buses by changing their departure time, route, or waiting for the next one.",
		Traits: []string{
			"High flexibility",
			"proactive crowd avoidance",
			"digital-open",
			"willing to change plans to avoid discomfort",
		},
	},
	InflexibleTolerant: {
		Name:        "Inflexible Tolerant",
		Description: "Someone who reports high crowding but is not affected by it. They have a fixed routine and a high tolerance for discomfort, making them unlikely to change their travel habits.",
		Traits: []string{
			"High crowding experience",
			"high tolerance",
			"fixed schedule",
			"unaffected by crowding",
			"low digital openness",
		},
	},
	AdaptiveMiddayRider: {
		Name:        "Adaptive Midday Rider",
		Description: "A commuter with some flexibility who rides during midday hours. Their choices are context-driven, and they are open to new tools and ideas but not necessarily proactive planners.",
		Traits: []string{
			"Midday/later departure",
			"some flexibility",
			"open to new ideas",
			"context-driven choices",
		},
	},
	LateResponder: {
		Name:        "Late Responder",
		Description: "A commuter who doesn't proactively plan for crowding but will react in the moment to adjust their travel. They are responsive to real-time information.",
		Traits: []string{
			"Doesn't proactively plan",
			"reacts in the moment",
			"responsive to real-time info",
			"will wait or switch lines when faced with crowding",
		},
	},
	UnknownProfile: {
		Name:        "Unknown Profile",
		Description: "A commuter profile could not be determined based on the provided answers.",
		Traits:      []string{"No clear match found"},
	},
}

// Describe returns the metadata for a profile.
// The returned value is a copy; callers may modify it freely.
func Describe(id ID) (Metadata, bool) {
	m, ok := metadata[id]
	if !ok {
		return Metadata{}, false
	}
	m.Traits = append([]string(nil), m.Traits...)
	return m, true
}

// All returns every profile identifier in display order, including UnknownProfile.
func All() []ID {
	return append([]ID(nil), order...)
}

// DisplayName returns the human-readable name of the profile
func (id ID) DisplayName() string {
	if m, ok := metadata[id]; ok {
		return m.Name
	}
	return string(id)
}

// TraitsText joins the traits into the comma separated form used in prompts.
func (m Metadata) TraitsText() string {
	return strings.Join(m.Traits, ", ")
}

// ParseID resolves an identifier or display name ("Late Responder") to an ID.
func ParseID(s string) (ID, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if key == "" {
		return "", false
	}
	for _, id := range order {
		if strings.ToLower(string(id)) == key {
			return id, true
		}
	}
	return "", false
}
