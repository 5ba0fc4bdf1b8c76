package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{65, "1:05"},
		{600, "10:00"},
		{3725, "62:05"},
		{-3, "0:00"},
		{12.7, "0:12"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(tt.seconds))
	}
}

func TestCitation_Label(t *testing.T) {
	timed := Citation{Index: 1, Title: "Some Talk", Timestamp: "1:05", Similarity: 0.873}
	assert.Equal(t, "Some Talk @ 1:05 (sim: 0.87)", timed.Label())

	text := Citation{Index: 2, Title: "An Article", Similarity: 0.5}
	assert.Equal(t, "An Article (sim: 0.50)", text.Label())
}
