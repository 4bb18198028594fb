package mensa

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var datePattern = regexp.MustCompile(`tag_(\d{4})(\d{1,3})`)

// ResolveDate decodes the year and day offset embedded in a menu link.
//
// The upstream page counts days from January 1st, so offset 0 is January 1st
// and offset 1 is January 2nd. This is one less than the usual day-of-year
// and is kept as-is: changing it would move every emitted date by one day.
func ResolveDate(href string) (year, offset int, date time.Time, err error) {
	match := datePattern.FindStringSubmatch(href)
	if match == nil {
		return 0, 0, time.Time{}, newFormatError("date", href, fmt.Errorf("no tag marker found"))
	}

	year, err = strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, time.Time{}, newFormatError("date", href, err)
	}
	offset, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, time.Time{}, newFormatError("date", href, err)
	}

	return year, offset, DateFromOffset(year, offset), nil
}

func DateFromOffset(year, offset int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// DayOffset is the inverse of DateFromOffset for the calendar day of t.
func DayOffset(t time.Time) int {
	return t.YearDay() - 1
}

// MatchesDate reports whether a decoded (year, offset) pair falls on the
// calendar day of target.
func MatchesDate(year, offset int, target time.Time) bool {
	return year == target.Year() && offset == DayOffset(target)
}
