package locale

import (
	"fmt"
	"strings"
	"time"
)

// WeekdayStyle selects the weekday header labels.
type WeekdayStyle string

const (
	WeekdayLong      WeekdayStyle = "long"
	WeekdayLongLower WeekdayStyle = "long-lower"
	WeekdayShort     WeekdayStyle = "short"
)

// MonthStyle selects how the month name in the header is written.
type MonthStyle string

const (
	MonthLong    MonthStyle = "long"
	MonthShort   MonthStyle = "short"
	MonthNarrow  MonthStyle = "narrow"
	MonthNumeric MonthStyle = "numeric"
	Month2Digit  MonthStyle = "2-digit"
)

var weekdayLabels = map[WeekdayStyle][7]string{
	WeekdayLong:      {"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"},
	WeekdayLongLower: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	WeekdayShort:     {"S", "M", "T", "W", "T", "F", "S"},
}

var koWeekdayLabels = [7]string{"일", "월", "화", "수", "목", "금", "토"}

var monthLongNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"ko": {"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
}

var monthShortNames = map[string][12]string{
	"en": {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	"ko": {"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
}

// ParseWeekdayStyle falls back to WeekdayShort for unknown values.
func ParseWeekdayStyle(s string) WeekdayStyle {
	switch WeekdayStyle(strings.ToLower(strings.TrimSpace(s))) {
	case WeekdayLong:
		return WeekdayLong
	case WeekdayLongLower:
		return WeekdayLongLower
	default:
		return WeekdayShort
	}
}

// ParseMonthStyle falls back to MonthLong for unknown values.
func ParseMonthStyle(s string) MonthStyle {
	switch m := MonthStyle(strings.ToLower(strings.TrimSpace(s))); m {
	case MonthShort, MonthNarrow, MonthNumeric, Month2Digit:
		return m
	default:
		return MonthLong
	}
}

// Formatter produces header and weekday labels for one language.
type Formatter struct {
	lang string
}

// New returns a Formatter for lang ("en", "ko"). Unknown languages use "en".
func New(lang string) Formatter {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := monthLongNames[lang]; !ok {
		lang = "en"
	}
	return Formatter{lang: lang}
}

// Lang returns the effective language code.
func (f Formatter) Lang() string {
	return f.lang
}

// Weekday returns the header label of w.
func (f Formatter) Weekday(w time.Weekday, style WeekdayStyle) string {
	i := (int(w)%7 + 7) % 7
	if f.lang == "ko" {
		return koWeekdayLabels[i]
	}
	labels, ok := weekdayLabels[style]
	if !ok {
		labels = weekdayLabels[WeekdayShort]
	}
	return labels[i]
}

// Weekdays returns labels for the given header order.
func (f Formatter) Weekdays(order [7]time.Weekday, style WeekdayStyle) []string {
	out := make([]string, len(order))
	for i, w := range order {
		out[i] = f.Weekday(w, style)
	}
	return out
}

// Month returns the month name in the requested style.
func (f Formatter) Month(m time.Month, style MonthStyle) string {
	i := int(m) - 1
	if i < 0 || i > 11 {
		return fmt.Sprint(int(m))
	}
	switch style {
	case MonthShort:
		return monthShortNames[f.lang][i]
	case MonthNarrow:
		if f.lang == "ko" {
			return monthShortNames[f.lang][i]
		}
		return monthLongNames[f.lang][i][:1]
	case MonthNumeric:
		return fmt.Sprint(int(m))
	case Month2Digit:
		return fmt.Sprintf("%02d", int(m))
	default:
		return monthLongNames[f.lang][i]
	}
}

// Header returns "<month> <year>", e.g. "March 2024" or "2024년 3월".
func (f Formatter) Header(year int, m time.Month, style MonthStyle) string {
	if f.lang == "ko" {
		name := f.Month(m, style)
		if style == MonthNumeric || style == Month2Digit {
			name += "월"
		}
		return fmt.Sprintf("%d년 %s", year, name)
	}
	return fmt.Sprintf("%s %d", f.Month(m, style), year)
}
