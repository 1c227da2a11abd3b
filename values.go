package sheetorm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SerialEpoch is day zero of spreadsheet serial day numbers.
var SerialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

const secondsPerDay = 86400

var decimalRegexp = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// cellText converts a raw cell value to the text the codec parses.
func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return strconv.FormatFloat(SerialFromTime(val), 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseNumber parses a decimal number that may contain thousands separators.
func ParseNumber(s string) (float64, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
	if !decimalRegexp.MatchString(clean) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
	}
	return f, nil
}

// ParseCurrency parses US currency text such as "$1,234.56", "$ 100.00",
// "-$5" or "($5.00)".
func ParseCurrency(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = strings.Replace(clean, "$", "", 1)
	f, err := ParseNumber(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a currency amount", ErrInvalidValue, s)
	}
	if negative {
		f = -f
	}
	return f, nil
}

// ParseInteger parses a whole number; integral decimals such as "12.0" are accepted.
func ParseInteger(s string) (int64, error) {
	f, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, s)
	}
	return int64(f), nil
}

// ParseBool parses TRUE/FALSE, 1/0 and yes/no in any case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, s)
}

// ParsePhoneNumber strips a leading +1 country code and every non-digit.
// ok is false when no digits remain.
func ParsePhoneNumber(s string) (n int64, ok bool, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+1")
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false, nil
	}
	n, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not a phone number", ErrInvalidValue, s)
	}
	return n, true, nil
}

// TimeFromSerial converts a serial day number to a UTC wall-clock time,
// rounded to the millisecond.
func TimeFromSerial(serial float64) time.Time {
	days := math.Floor(serial)
	millis := math.Round((serial - days) * secondsPerDay * 1000)
	return SerialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(millis) * time.Millisecond)
}

// SerialFromTime converts a time to a serial day number using its wall clock
// in its own location.
func SerialFromTime(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	secs := wall.Unix() - SerialEpoch.Unix()
	return (float64(secs) + float64(wall.Nanosecond())/1e9) / secondsPerDay
}
