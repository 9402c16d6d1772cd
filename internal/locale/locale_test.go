package locale

import (
	"reflect"
	"testing"
	"time"
)

func TestWeekdaysFollowStartAndStyle(t *testing.T) {
	f := New("en")
	order := [7]time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday}

	cases := map[WeekdayStyle][]string{
		WeekdayLong:      {"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"},
		WeekdayLongLower: {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		WeekdayShort:     {"M", "T", "W", "T", "F", "S", "S"},
	}
	for style, want := range cases {
		if got := f.Weekdays(order, style); !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %v, want %v", style, got, want)
		}
	}
}

func TestHeader(t *testing.T) {
	en := New("EN")
	cases := []struct {
		style MonthStyle
		want  string
	}{
		{MonthLong, "March 2024"},
		{MonthShort, "Mar 2024"},
		{MonthNarrow, "M 2024"},
		{MonthNumeric, "3 2024"},
		{Month2Digit, "03 2024"},
	}
	for _, tc := range cases {
		if got := en.Header(2024, time.March, tc.style); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.style, got, tc.want)
		}
	}

	if got := New("ko").Header(2024, time.March, MonthLong); got != "2024년 3월" {
		t.Fatalf("unexpected korean header %q", got)
	}
}

func TestKoreanHeaderKeepsMonthSuffix(t *testing.T) {
	ko := New("ko")
	cases := []struct {
		style MonthStyle
		want  string
	}{
		{MonthLong, "2024년 3월"},
		{MonthShort, "2024년 3월"},
		{MonthNumeric, "2024년 3월"},
		{Month2Digit, "2024년 03월"},
	}
	for _, tc := range cases {
		if got := ko.Header(2024, time.March, tc.style); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.style, got, tc.want)
		}
	}
}

func TestUnknownValuesFallBack(t *testing.T) {
	if New("xx").Lang() != "en" {
		t.Fatalf("expected en fallback")
	}
	if ParseWeekdayStyle("weird") != WeekdayShort {
		t.Fatalf("expected short weekday fallback")
	}
	if ParseMonthStyle("") != MonthLong {
		t.Fatalf("expected long month fallback")
	}
	if ParseMonthStyle(" 2-Digit ") != Month2Digit {
		t.Fatalf("expected 2-digit month style")
	}
}
