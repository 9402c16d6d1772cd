package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"monthcal/internal/eventindex"
)

var sampleICS = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//monthcal//test//EN",
	"BEGIN:VEVENT",
	"UID:conf-1",
	"DTSTAMP:20240101T000000Z",
	"SUMMARY:Conference",
	"LOCATION:Hall A",
	"DTSTART;VALUE=DATE:20240310",
	"DTEND;VALUE=DATE:20240313",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTAMP:20240101T000000Z",
	"SUMMARY:Standup",
	"DTSTART:20240304T090000Z",
	"DTEND:20240304T091500Z",
	"RRULE:FREQ=WEEKLY;COUNT=4",
	"EXDATE:20240311T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTAMP:20240101T000000Z",
	"RECURRENCE-ID:20240318T090000Z",
	"SUMMARY:Standup (moved)",
	"DTSTART:20240318T100000Z",
	"DTEND:20240318T101500Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"DTSTAMP:20240101T000000Z",
	"SUMMARY:No UID",
	"DTSTART:20240301T090000Z",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

func marchRange() ExpandConfig {
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:        time.Date(2024, time.March, 31, 23, 59, 59, 0, time.UTC),
	}
}

func TestParseICS(t *testing.T) {
	events, err := ParseICS(Source{ID: "test"}, []byte(sampleICS))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 usable VEVENTs, got %d", len(events))
	}

	conf := events[0]
	if conf.UID != "conf-1" || !conf.AllDay || conf.Location != "Hall A" {
		t.Fatalf("unexpected all-day event %+v", conf)
	}
	standup := events[1]
	if standup.RawRRule == "" || len(standup.ExDates) != 1 || standup.AllDay {
		t.Fatalf("unexpected recurring event %+v", standup)
	}
	if !events[2].IsOverride || events[2].Recurrence == nil {
		t.Fatalf("expected override, got %+v", events[2])
	}
}

func TestParseICSRejectsEmptyBody(t *testing.T) {
	if _, err := ParseICS(Source{ID: "x"}, nil); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestExpandAppliesRecurrenceRules(t *testing.T) {
	parsed, err := ParseICS(Source{ID: "test"}, []byte(sampleICS))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Expand(parsed, marchRange())
	if err != nil {
		t.Fatalf("expand: %v", err)
	}

	titles := make([]string, 0, len(res.Events))
	for _, ev := range res.Events {
		titles = append(titles, ev.Start.Format("02")+" "+ev.Title)
	}
	want := []string{"04 Standup", "10 Conference", "18 Standup (moved)", "25 Standup"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected expansion %v, want %v", titles, want)
	}

	conf := res.Events[1]
	if conf.End.Day() != 12 {
		t.Fatalf("exclusive DTEND must become inclusive day 12, got %d", conf.End.Day())
	}
	if conf.Payload["source_id"] != "test" || conf.Payload["uid"] != "conf-1" {
		t.Fatalf("unexpected payload %+v", conf.Payload)
	}
	if res.Events[2].Start.Hour() != 10 {
		t.Fatalf("override start not applied: %s", res.Events[2].Start)
	}

	idx := eventindex.Build(res.Events, 2024, time.March)
	for _, d := range []int{4, 10, 11, 12, 18, 25} {
		if !idx.HasEvent(d) {
			t.Fatalf("expected day %d marked", d)
		}
	}
	if idx.HasEvent(13) || idx.HasEvent(9) {
		t.Fatalf("unexpected marks %v", idx.DayMap)
	}
}

func TestExpandTruncatesRunawayRules(t *testing.T) {
	ev := ParsedEvent{
		UID:      "daily",
		Start:    time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=DAILY",
	}
	cfg := marchRange()
	cfg.MaxOccurrencesPerEvent = 5
	res, err := Expand([]ParsedEvent{ev}, cfg)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(res.Events) != 5 || len(res.TruncatedUIDs) != 1 {
		t.Fatalf("expected 5 events and one truncated uid, got %d / %v", len(res.Events), res.TruncatedUIDs)
	}
}

func TestExpandRejectsInvertedRange(t *testing.T) {
	cfg := marchRange()
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart
	if _, err := Expand(nil, cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMonthWindow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	start, end := MonthWindow(now, 1, 1)
	if !start.Equal(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", start)
	}
	if end.Month() != time.April || end.Day() != 30 {
		t.Fatalf("unexpected end %s", end)
	}
}

func TestFetcherUsesConditionalRequests(t *testing.T) {
	var hits, notModified int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			atomic.AddInt32(&notModified, 1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "s", URL: srv.URL + "/private.ics?token=secret"}

	first, err := f.FetchOne(context.Background(), src)
	if err != nil || first.FromCache {
		t.Fatalf("first fetch: %+v %v", first, err)
	}
	second, err := f.FetchOne(context.Background(), src)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.FromCache || string(second.Body) != sampleICS {
		t.Fatalf("expected cached body on 304")
	}
	if atomic.LoadInt32(&notModified) != 1 {
		t.Fatalf("expected one conditional hit, got %d", notModified)
	}
}

func TestFetcherFallsBackToCacheOnServerError(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), srv.Client())
	src := Source{ID: "s", URL: srv.URL}
	if _, err := f.FetchOne(context.Background(), src); err != nil {
		t.Fatalf("prime: %v", err)
	}

	fail.Store(true)
	res, err := f.FetchOne(context.Background(), src)
	if err != nil || !res.FromCache {
		t.Fatalf("expected cache fallback, got %+v %v", res, err)
	}

	other := Source{ID: "cold", URL: srv.URL + "/other"}
	results, errs := f.FetchAll(context.Background(), []Source{other})
	if len(results) != 0 || len(errs) != 1 {
		t.Fatalf("expected a cold failure, got %d results %d errs", len(results), len(errs))
	}
}

func TestLoaderPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	l := &Loader{
		Fetcher:  NewFetcher(t.TempDir(), srv.Client()),
		Sources:  []Source{{ID: "a", URL: srv.URL}},
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC) },
	}
	events, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://example.com/path/private.ics?token=abcd")
	if got != "https://example.com/...(redacted)" {
		t.Fatalf("unexpected redaction %q", got)
	}
	if redactURL("not a url") != "ics://...(redacted)" {
		t.Fatalf("expected opaque redaction")
	}
}
