package survey

import (
	"sort"
	"strconv"

	"github.com/jonathan/commuter-advisor/internal/profile"
)

// Collect normalises label-or-value answers keyed by question key and builds
// classifier input. Answers that cannot be normalised are dropped and
// reported; they become "no signal" rather than failing classification.
func Collect(raw map[string]string) (profile.Answers, []error) {
	normalized := make(map[string]any, len(raw))
	var errs []error

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, err := Normalize(key, raw[key])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		normalized[key] = value
	}

	return profile.FromMap(normalized), errs
}

// ToMap converts classifier input back to canonical key/value strings,
// omitting "no signal" fields.
func ToMap(a profile.Answers) map[string]string {
	out := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set(profile.KeyDepartureTime, string(a.DepartureTime))
	set(profile.KeyCommuteFrequency, string(a.CommuteFrequency))
	set(profile.KeyCrowdingExperience, string(a.CrowdingExperience))
	if a.ChangeWillingness != 0 {
		out[profile.KeyChangeWillingness] = strconv.Itoa(a.ChangeWillingness)
	}
	set(profile.KeyFullBusResponse, string(a.FullBusResponse))
	return out
}
