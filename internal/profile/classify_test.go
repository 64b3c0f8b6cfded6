package profile

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMap_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		answers  map[string]any
		expected ID
	}{
		{
			name:     "empty mapping falls back",
			answers:  map[string]any{},
			expected: AdaptiveMiddayRider,
		},
		{
			name:     "nil mapping falls back",
			answers:  nil,
			expected: AdaptiveMiddayRider,
		},
		{
			name: "early full-week low willingness",
			answers: map[string]any{
				KeyDepartureTime:     "before-9am",
				KeyCommuteFrequency:  "5+-days",
				KeyChangeWillingness: 1,
			},
			expected: PeakRoutineCommuter,
		},
		{
			name: "overcrowded and boards anyway",
			answers: map[string]any{
				KeyCrowdingExperience: "overcrowded",
				KeyChangeWillingness:  2,
				KeyFullBusResponse:    "board-anyway",
			},
			expected: InflexibleTolerant,
		},
		{
			name: "medium willingness switches line",
			answers: map[string]any{
				KeyChangeWillingness: 3,
				KeyFullBusResponse:   "switch-line",
			},
			expected: LateResponder,
		},
		{
			name: "later departure with willingness",
			answers: map[string]any{
				KeyDepartureTime:     "9am-or-later",
				KeyChangeWillingness: 4,
			},
			expected: AdaptiveMiddayRider,
		},
		{
			name: "high willingness changes time",
			answers: map[string]any{
				KeyChangeWillingness: 4,
				KeyFullBusResponse:   "change-time",
			},
			expected: FlexibleAvoider,
		},
		{
			name: "willingness as string",
			answers: map[string]any{
				KeyChangeWillingness: "5",
				KeyFullBusResponse:   "wait-next",
			},
			expected: FlexibleAvoider,
		},
		{
			name: "willingness as JSON number",
			answers: map[string]any{
				KeyChangeWillingness: float64(3),
				KeyFullBusResponse:   "wait-next",
			},
			expected: LateResponder,
		},
		{
			name: "malformed willingness coerces to zero",
			answers: map[string]any{
				KeyChangeWillingness: "lots",
				KeyFullBusResponse:   "wait-next",
			},
			expected: AdaptiveMiddayRider,
		},
		{
			name: "wrong value types are ignored",
			answers: map[string]any{
				KeyDepartureTime:     42,
				KeyCommuteFrequency:  []string{"5+-days"},
				KeyChangeWillingness: map[string]int{"x": 1},
				KeyFullBusResponse:   true,
			},
			expected: AdaptiveMiddayRider,
		},
		{
			name: "unknown keys are ignored",
			answers: map[string]any{
				"favourite-colour":   "blue",
				KeyDepartureTime:     "before-9am",
				KeyCommuteFrequency:  "5+-days",
				KeyChangeWillingness: 2,
			},
			expected: PeakRoutineCommuter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.expected, ClassifyMap(tt.answers))
			})
		})
	}
}

func TestClassify_RuleOneBeatsRuleFour(t *testing.T) {
	a := Answers{ChangeWillingness: 5, FullBusResponse: ResponseWaitNext}

	id, rule := Explain(a)
	assert.Equal(t, FlexibleAvoider, id)
	assert.Equal(t, "flexible-avoider", rule)
}

func TestClassify_InflexibleBeatsPeakRoutine(t *testing.T) {
	a := Answers{
		DepartureTime:      DepartureBeforeNine,
		CommuteFrequency:   Frequency5Plus,
		CrowdingExperience: CrowdingVery,
		ChangeWillingness:  1,
		FullBusResponse:    ResponseBoardAnyway,
	}

	assert.Equal(t, InflexibleTolerant, Classify(a))
}

func TestClassify_LateResponderBeatsMidday(t *testing.T) {
	a := Answers{
		DepartureTime:     DepartureNineOrLater,
		ChangeWillingness: 3,
		FullBusResponse:   ResponseSwitchLine,
	}

	assert.Equal(t, LateResponder, Classify(a))
}

func TestExplain_Fallback(t *testing.T) {
	id, rule := Explain(Answers{FullBusResponse: ResponseCancelDelay, ChangeWillingness: 5})
	assert.Equal(t, AdaptiveMiddayRider, id)
	assert.Equal(t, FallbackRule, rule)
}

func TestRules_Order(t *testing.T) {
	assert.Equal(t, []string{
		"flexible-avoider",
		"inflexible-tolerant",
		"peak-routine-commuter",
		"late-responder",
		"adaptive-midday-rider",
		FallbackRule,
	}, Rules())
}

// allAnswerCombinations enumerates every canonical value plus the empty
// "no signal" value for each field, and willingness from -1 to 6.
func allAnswerCombinations() []Answers {
	departures := []DepartureTime{"", DepartureBeforeNine, DepartureNineOrLater}
	frequencies := []CommuteFrequency{"", Frequency1To2, Frequency3To4, Frequency5Plus, FrequencyRemote}
	crowding := []Crowding{"", CrowdingNone, CrowdingSlight, CrowdingVery, CrowdingOverfull}
	responses := []FullBusResponse{"", ResponseWaitNext, ResponseChangeTime, ResponseSwitchLine, ResponseBoardAnyway, ResponseCancelDelay}

	var out []Answers
	for _, d := range departures {
		for _, f := range frequencies {
			for _, c := range crowding {
				for w := -1; w <= 6; w++ {
					for _, r := range responses {
						out = append(out, Answers{
							DepartureTime:      d,
							CommuteFrequency:   f,
							CrowdingExperience: c,
							ChangeWillingness:  w,
							FullBusResponse:    r,
						})
					}
				}
			}
		}
	}
	return out
}

func TestClassify_TotalAndNeverUnknown(t *testing.T) {
	reachable := map[ID]bool{}
	for _, a := range allAnswerCombinations() {
		id := Classify(a)
		require.NotEqual(t, UnknownProfile, id, "answers %+v", a)
		_, ok := Describe(id)
		require.True(t, ok, "classified to undescribed profile %q", id)
		reachable[id] = true
	}

	// every active profile is reachable, UnknownProfile is not
	assert.Len(t, reachable, 5)
	assert.False(t, reachable[UnknownProfile])
}

func TestClassify_Deterministic(t *testing.T) {
	combos := allAnswerCombinations()
	first := make([]ID, len(combos))
	for i, a := range combos {
		first[i] = Classify(a)
	}
	for i, a := range combos {
		assert.Equal(t, first[i], Classify(a))
	}
}

func TestClassify_Concurrent(t *testing.T) {
	a := Answers{ChangeWillingness: 3, FullBusResponse: ResponseSwitchLine}

	var wg sync.WaitGroup
	results := make([]ID, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Classify(a)
		}(i)
	}
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, LateResponder, id)
	}
}

func TestCoerceLikert(t *testing.T) {
	tests := []struct {
		in       any
		expected int
	}{
		{nil, 0},
		{3, 3},
		{int64(4), 4},
		{int32(2), 2},
		{float64(5), 5},
		{float32(1), 1},
		{2.5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{" 4 ", 4},
		{"", 0},
		{"four", 0},
		{true, 0},
		{int8(5), 5},
		{int16(3), 3},
		{uint(5), 5},
		{uint8(4), 4},
		{uint16(2), 2},
		{uint32(1), 1},
		{uint64(5), 5},
		{json.Number("5"), 5},
		{json.Number("3.7"), 0},
		{json.Number("x"), 0},
		{int64(math.MaxInt32) + 1, 0},
		{uint64(math.MaxUint64), 0},
		{"99999999999", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, CoerceLikert(tt.in), "input %#v", tt.in)
	}
}

func TestClassifyMap_IntegerWidths(t *testing.T) {
	inputs := []any{uint(5), int8(5), int16(5), uint64(5), json.Number("5")}

	for _, in := range inputs {
		raw := map[string]any{
			KeyChangeWillingness: in,
			KeyFullBusResponse:   "wait-next",
		}
		assert.Equal(t, FlexibleAvoider, ClassifyMap(raw), "willingness %#v", in)
	}
}

func TestClassifyMap_UseNumberDecoding(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"change-willingness": 5, "full-bus-response": "wait-next"}`))
	dec.UseNumber()

	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	assert.Equal(t, FlexibleAvoider, ClassifyMap(raw))
}
