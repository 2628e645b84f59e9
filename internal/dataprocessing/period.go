package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sentimentpulse/pkg/contracts/domain"
)

// NormalizeMonth returns the three-letter English abbreviation of month.
// Matching is case-insensitive and full month names are accepted.
func NormalizeMonth(month string) (string, error) {
	m := strings.TrimSpace(month)
	if len(m) < 3 {
		return "", fmt.Errorf("unrecognised month %q", month)
	}
	abbr := strings.ToUpper(m[:1]) + strings.ToLower(m[1:3])
	if _, err := time.Parse("Jan", abbr); err != nil {
		return "", fmt.Errorf("unrecognised month %q", month)
	}
	if len(m) > 3 {
		full := strings.ToLower(m)
		if !strings.HasPrefix(strings.ToLower(fullMonthName(abbr)), full) {
			return "", fmt.Errorf("unrecognised month %q", month)
		}
	}
	return abbr, nil
}

func fullMonthName(abbr string) string {
	t, _ := time.Parse("Jan", abbr)
	return t.Month().String()
}

// ParsePeriod parses a "Mon YYYY" reporting period into the first day of
// that month, UTC.
func ParsePeriod(month string, year int) (time.Time, error) {
	abbr, err := NormalizeMonth(month)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(domain.PeriodLayout, fmt.Sprintf("%s %04d", abbr, year))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %s %d: %w", abbr, year, err)
	}
	return t, nil
}

// ParseYear accepts integral years written as "2024" or "2024.0"
func ParseYear(value string) (int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("year is empty")
	}
	if year, err := strconv.Atoi(v); err == nil {
		return year, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid year %q", value)
	}
	return int(f), nil
}

// ParseScore parses a sentiment score cell
func ParseScore(value string) (float64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, fmt.Errorf("score is empty")
	}
	score, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q", value)
	}
	return score, nil
}
