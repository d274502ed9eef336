package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateSlashFormat(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"01/02/2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"1/2/2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"31/12/1999", time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"  15/06/2023  ", time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDate(tt.input)
			require.NotNil(t, got)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseDateBracketedFormat(t *testing.T) {
	got := ParseDate("Date(2024,2,1)")
	require.NotNil(t, got)
	// The month is taken at face value; the export quirk of zero-indexed
	// months is deliberately not compensated for.
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *got)
}

func TestParseDateGarbage(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"hello",
		"2024-02-01",
		"13/13/2024",
		"32/01/2024",
		"Date(2024,2)",
		"Date(2024,2,30)",
		"Date(2024,0,15)",
		"Date(a,b,c)",
		"Date(2024,2,1",
		"//",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Nil(t, ParseDate(input))
		})
	}
}
