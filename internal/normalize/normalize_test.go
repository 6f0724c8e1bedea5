package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "collapses whitespace runs",
			input:    "great   product,    love it",
			expected: "great product, love it",
		},
		{
			name:     "strips newlines and carriage returns",
			input:    "line one\r\nline two\nline three",
			expected: "line one line two line three",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  \t padded \n ",
			expected: "padded",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input)
			assert.Equal(t, tt.expected, got)

			assert.NotContains(t, got, "\n")
			assert.NotContains(t, got, "\r")
			assert.NotContains(t, got, "  ")
		})
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{
		"a  b\nc",
		"already clean",
		"\"quoted\" text,\twith separators",
	}

	for _, input := range inputs {
		once := CleanText(input)
		assert.Equal(t, once, CleanText(once), "input %q", input)
	}
}

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"thousands separator with decimal", "1,234.56", 1234.56, true},
		{"comma as decimal separator", "12,5", 12.5, true},
		{"currency prefix", "$49.99", 49.99, true},
		{"embedded in label", "4.5 out of 5", 4.5, true},
		{"no digits", "no digits", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 0.0001)
			}
		})
	}
}

func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"numeric rating", "4.5", "4.5"},
		{"numeric rounded to one decimal", "4.67", "4.7"},
		{"integer rating", "5", "5.0"},
		{"star glyphs", "★★★★", "4"},
		{"emoji stars", "⭐⭐⭐", "3"},
		{"raw text fallback", "excellent", "excellent"},
		{"empty", "", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRating(tt.input))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"iso format passes through", "2024-03-05", "2024-03-05"},
		{"us format", "03/05/2024", "2024-03-05"},
		{"european format", "05.03.2024", "2024-03-05"},
		{"date embedded in text", "posted on 03/05/2024 by user", "2024-03-05"},
		{"unrecognized text unchanged", "yesterday", "yesterday"},
		{"empty", "", "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDate(tt.input))
		})
	}
}

func TestReviewID(t *testing.T) {
	id := ReviewID("alice", "lovely serum", "2024-03-05", "https://shop.tiktok.com/vn/product/1")

	require.Len(t, id, 12)
	assert.Equal(t, strings.ToLower(id), id)

	// Same inputs always yield the same id.
	again := ReviewID("alice", "lovely serum", "2024-03-05", "https://shop.tiktok.com/vn/product/1")
	assert.Equal(t, id, again)

	// Changing any field changes the id.
	other := ReviewID("alice", "terrible serum", "2024-03-05", "https://shop.tiktok.com/vn/product/1")
	assert.NotEqual(t, id, other)
}
