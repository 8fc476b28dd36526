package shared

import (
	"errors"
	"strings"
	"time"
)

var errPeriodFormat = errors.New("period must be in YYYY-MM format")

// ParsePeriod accepts a YYYY-MM commission period and returns it normalized.
func ParsePeriod(value string) (string, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return "", errPeriodFormat
	}
	return parsed.Format("2006-01"), nil
}
