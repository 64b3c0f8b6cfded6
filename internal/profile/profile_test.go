package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_AllProfiles(t *testing.T) {
	for _, id := range All() {
		m, ok := Describe(id)
		require.True(t, ok, "missing metadata for %s", id)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Description)
		assert.NotEmpty(t, m.Traits)
	}
}

func TestDescribe_Unknown(t *testing.T) {
	_, ok := Describe(ID("Nope"))
	assert.False(t, ok)
}

func TestDescribe_ReturnsCopy(t *testing.T) {
	m, ok := Describe(FlexibleAvoider)
	require.True(t, ok)
	m.Traits[0] = "mutated"

	again, _ := Describe(FlexibleAvoider)
	assert.Equal(t, "High flexibility", again.Traits[0])
}

func TestUnknownProfile_DefinedButUnreachable(t *testing.T) {
	// The sentinel is in the table so downstream prompt composition can
	// describe it, but Classify falls back to AdaptiveMiddayRider instead.
	m, ok := Describe(UnknownProfile)
	require.True(t, ok)
	assert.Equal(t, "Unknown Profile", m.Name)

	assert.Equal(t, AdaptiveMiddayRider, Classify(Answers{}))
}

func TestAll_Order(t *testing.T) {
	ids := All()
	assert.Len(t, ids, 6)
	assert.Equal(t, PeakRoutineCommuter, ids[0])
	assert.Equal(t, UnknownProfile, ids[len(ids)-1])

	ids[0] = "changed"
	assert.Equal(t, PeakRoutineCommuter, All()[0])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Late Responder", LateResponder.DisplayName())
	assert.Equal(t, "Custom", ID("Custom").DisplayName())
}

func TestTraitsText(t *testing.T) {
	m, _ := Describe(AdaptiveMiddayRider)
	assert.Equal(t, "Midday/later departure, some flexibility, open to new ideas, context-driven choices", m.TraitsText())
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in       string
		expected ID
		ok       bool
	}{
		{"LateResponder", LateResponder, true},
		{"Late Responder", LateResponder, true},
		{" flexible avoider ", FlexibleAvoider, true},
		{"unknownprofile", UnknownProfile, true},
		{"", "", false},
		{"Bus Driver", "", false},
	}

	for _, tt := range tests {
		id, ok := ParseID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.expected, id, tt.in)
	}
}
