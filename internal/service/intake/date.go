package intake

import (
	"strconv"
	"strings"
	"time"
)

// ParseDate normalizes the date encodings seen in form-response exports.
// It tries day/month/year with slash separators, then the textual
// "Date(year,month,day)" form some exports emit. Anything else, including
// arbitrary garbage, yields nil.
//
// The month in the Date(...) form is taken at face value, matching what
// the sheet currently delivers; no zero-index adjustment is applied.
func ParseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if t, err := time.Parse("2/1/2006", value); err == nil {
		return &t
	}

	if t := parseBracketedDate(value); t != nil {
		return t
	}

	return nil
}

func parseBracketedDate(value string) *time.Time {
	if !strings.HasPrefix(value, "Date(") || !strings.HasSuffix(value, ")") {
		return nil
	}

	parts := strings.Split(value[len("Date("):len(value)-1], ",")
	if len(parts) != 3 {
		return nil
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components; an encoding that does
	// not round-trip was not a real calendar date.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}
