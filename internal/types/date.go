// Package types implements the calendar types used by budgenv.
//
// Dates are kept as the strings clients send. Only the shape is checked,
// "2024-13-45" is a valid Day.
package types

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dayPattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	monthPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)
)

// Day is a calendar day formatted as YYYY-MM-DD.
type Day string

// Month is a calendar month formatted as YYYY-MM.
type Month string

// Valid reports whether the day has the YYYY-MM-DD shape.
func (d Day) Valid() bool {
	return dayPattern.MatchString(string(d))
}

// Comparable returns the day as the integer YYYYMMDD, which orders like the
// calendar for all valid days.
func (d Day) Comparable() (int, error) {
	return toInt(string(d))
}

func (d Day) String() string {
	return string(d)
}

// Valid reports whether the month has the YYYY-MM shape.
func (m Month) Valid() bool {
	return monthPattern.MatchString(string(m))
}

func (m Month) String() string {
	return string(m)
}

func toInt(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, "-", ""))
}
