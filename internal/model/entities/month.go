package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnknownMonth = errors.New("unknown month")

// Month is a calendar month picked in the form.
type Month time.Month

var monthsByName = func() map[string]Month {
	m := make(map[string]Month, 12)
	for i := time.January; i <= time.December; i++ {
		m[strings.ToLower(i.String())] = Month(i)
	}
	return m
}()

// ParseMonth accepts the English month name ("June", "june", " JUNE ").
func ParseMonth(name string) (Month, error) {
	if m, ok := monthsByName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, name)
}

func (m Month) String() string { return time.Month(m).String() }

// Number is the two-digit month used in climate record dates ("06").
func (m Month) Number() string { return fmt.Sprintf("%02d", int(m)) }

// Code is the three-letter key of the climatology tables ("JUN").
func (m Month) Code() string { return strings.ToUpper(m.String()[:3]) }

// Months lists the twelve names in calendar order, as offered by the form.
func Months() []string {
	out := make([]string, 0, 12)
	for i := time.January; i <= time.December; i++ {
		out = append(out, i.String())
	}
	return out
}
