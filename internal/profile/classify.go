package profile

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Canonical survey answer keys
const (
	KeyDepartureTime      = "departure-time"
	KeyCommuteFrequency   = "commute-frequency"
	KeyCrowdingExperience = "crowding-experience"
	KeyChangeWillingness  = "change-willingness"
	KeyFullBusResponse    = "full-bus-response"
)

// DepartureTime is the usual departure slot.
type DepartureTime string

// Departure time values
const (
	DepartureBeforeNine  DepartureTime = "before-9am"
	DepartureNineOrLater DepartureTime = "9am-or-later"
)

// CommuteFrequency is the number of commuting days per week.
type CommuteFrequency string

// Commute frequency values
const (
	Frequency1To2   CommuteFrequency = "1-2-days"
	Frequency3To4   CommuteFrequency = "3-4-days"
	Frequency5Plus  CommuteFrequency = "5+-days"
	FrequencyRemote CommuteFrequency = "remote"
)

// Crowding is the perceived peak-hour crowding.
type Crowding string

// Crowding values
const (
	CrowdingNone     Crowding = "not-crowded"
	CrowdingSlight   Crowding = "slightly-crowded"
	CrowdingVery     Crowding = "very-crowded"
	CrowdingOverfull Crowding = "overcrowded"
)

// FullBusResponse is what the rider does when the bus arrives 90% full.
type FullBusResponse string

// Full bus response values
const (
	ResponseWaitNext    FullBusResponse = "wait-next"
	ResponseChangeTime  FullBusResponse = "change-time"
	ResponseSwitchLine  FullBusResponse = "switch-line"
	ResponseBoardAnyway FullBusResponse = "board-anyway"
	ResponseCancelDelay FullBusResponse = "cancel-delay"
)

// Answers holds the five classifier inputs.
// The zero value of every field means "no signal": empty strings for the
// enumerations and 0 for ChangeWillingness (the Likert scale runs 1-5).
type Answers struct {
	DepartureTime      DepartureTime    `json:"departure-time,omitempty"`
	CommuteFrequency   CommuteFrequency `json:"commute-frequency,omitempty"`
	CrowdingExperience Crowding         `json:"crowding-experience,omitempty"`
	ChangeWillingness  int              `json:"change-willingness,omitempty"`
	FullBusResponse    FullBusResponse  `json:"full-bus-response,omitempty"`
}

// rule is one entry of the decision list
type rule struct {
	name   string
	match  func(a Answers) bool
	result ID
}

// FallbackRule names the unconditional branch taken when no rule matched.
const FallbackRule = "fallback"

// rules is evaluated top to bottom and the first match wins.
var rules = []rule{
	{
		name: "flexible-avoider",
		match: func(a Answers) bool {
			return a.ChangeWillingness >= 4 &&
				oneOf(a.FullBusResponse, ResponseWaitNext, ResponseChangeTime, ResponseSwitchLine)
		},
		result: FlexibleAvoider,
	},
	{
		name: "inflexible-tolerant",
		match: func(a Answers) bool {
			return oneOf(a.CrowdingExperience, CrowdingVery, CrowdingOverfull) &&
				a.ChangeWillingness <= 2 &&
				a.FullBusResponse == ResponseBoardAnyway
		},
		result: InflexibleTolerant,
	},
	{
		name: "peak-routine-commuter",
		match: func(a Answers) bool {
			return a.DepartureTime == DepartureBeforeNine &&
				a.CommuteFrequency == Frequency5Plus &&
				a.ChangeWillingness <= 2
		},
		result: PeakRoutineCommuter,
	},
	{
		name: "late-responder",
		match: func(a Answers) bool {
			return a.ChangeWillingness >= 3 &&
				oneOf(a.FullBusResponse, ResponseWaitNext, ResponseSwitchLine)
		},
		result: LateResponder,
	},
	{
		name: "adaptive-midday-rider",
		match: func(a Answers) bool {
			return a.DepartureTime == DepartureNineOrLater && a.ChangeWillingness >= 3
		},
		result: AdaptiveMiddayRider,
	},
}

// fallback is returned when no rule matched, so UnknownProfile is unreachable.
// TODO: switch to UnknownProfile once product confirms the intended fallback.
const fallback = AdaptiveMiddayRider

// Classify maps survey answers to exactly one profile.
// It never fails and never returns UnknownProfile.
func Classify(a Answers) ID {
	id, _ := Explain(a)
	return id
}

// Explain classifies the answers and also reports the name of the rule that
// matched, or FallbackRule when none did.
func Explain(a Answers) (ID, string) {
	for _, r := range rules {
		if r.match(a) {
			return r.result, r.name
		}
	}
	return fallback, FallbackRule
}

// Rules returns the rule names in evaluation order, followed by FallbackRule.
func Rules() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.name)
	}
	return append(names, FallbackRule)
}

// ClassifyMap classifies a raw answer mapping keyed by the canonical keys.
// Missing or malformed entries are treated as "no signal".
func ClassifyMap(raw map[string]any) ID {
	return Classify(FromMap(raw))
}

// FromMap coerces a raw answer mapping into Answers without failing.
func FromMap(raw map[string]any) Answers {
	return Answers{
		DepartureTime:      DepartureTime(stringValue(raw[KeyDepartureTime])),
		CommuteFrequency:   CommuteFrequency(stringValue(raw[KeyCommuteFrequency])),
		CrowdingExperience: Crowding(stringValue(raw[KeyCrowdingExperience])),
		ChangeWillingness:  CoerceLikert(raw[KeyChangeWillingness]),
		FullBusResponse:    FullBusResponse(stringValue(raw[KeyFullBusResponse])),
	}
}

// CoerceLikert converts a Likert answer to an int.
// Integers of any width, json.Number, integral floats and numeric strings
// are accepted; anything else, or a value outside the int32 range, is 0.
func CoerceLikert(v any) int {
	switch n := v.(type) {
	case int:
		return clampInt(int64(n))
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return clampInt(n)
	case uint:
		return clampUint(uint64(n))
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return clampUint(uint64(n))
	case uint64:
		return clampUint(n)
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return clampInt(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return clampInt(int64(i))
	default:
		return 0
	}
}

func clampInt(i int64) int {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0
	}
	return int(i)
}

func clampUint(u uint64) int {
	if u > math.MaxInt32 {
		return 0
	}
	return int(u)
}

func floatToInt(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func stringValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func oneOf[T comparable](v T, options ...T) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
