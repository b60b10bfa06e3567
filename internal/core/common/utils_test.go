package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"bare", `{"name": "Nami"}`, "Nami"},
		{"fenced", "```json\n{\"name\": \"Nami\"}\n```", "Nami"},
		{"prose", `Here is the card: {"name": "Zoro"} hope it helps`, "Zoro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[sample](tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestParseJSON_Errors(t *testing.T) {
	_, err := ParseJSON[sample]("no object here")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseJSON[sample]("} backwards {")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseJSON[sample](`{"name": }`)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in   any
		want *int
	}{
		{nil, nil},
		{float64(2000), intPtr(2000)},
		{float64(2.6), intPtr(3)},
		{"5", intPtr(5)},
		{" 2,000 ", intPtr(2000)},
		{"+1000", intPtr(1000)},
		{"", nil},
		{"n/a", nil},
		{true, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseInt(tt.in), "input %#v", tt.in)
	}
}

func TestParseString(t *testing.T) {
	assert.Equal(t, "", ParseString(nil))
	assert.Equal(t, "Nami", ParseString("  Nami "))
	assert.Equal(t, "1000", ParseString(float64(1000)))
	assert.Equal(t, "1.5", ParseString(1.5))
}

func intPtr(v int) *int {
	return &v
}
