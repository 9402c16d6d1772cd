package model

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestCloneIsolatesPayload(t *testing.T) {
	orig := Event{
		ID:    "e1",
		Start: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
		Payload: map[string]any{
			"tags":   []any{"a", "b"},
			"nested": map[string]any{"room": "101"},
		},
	}

	cp := orig.Clone()
	if !reflect.DeepEqual(cp, orig) {
		t.Fatalf("clone not deep-equal: %#v vs %#v", cp, orig)
	}

	cp.Payload["nested"].(map[string]any)["room"] = "202"
	cp.Payload["tags"].([]any)[0] = "z"

	if orig.Payload["nested"].(map[string]any)["room"] != "101" {
		t.Fatalf("nested map aliased with clone")
	}
	if orig.Payload["tags"].([]any)[0] != "a" {
		t.Fatalf("nested slice aliased with clone")
	}
}

type roomInfo struct {
	Name  string
	Attrs map[string]string
	next  *roomInfo
}

func TestCloneIsolatesTypedPayload(t *testing.T) {
	count := 3
	info := &roomInfo{Name: "101", Attrs: map[string]string{"floor": "1"}}
	orig := Event{
		ID: "typed",
		Payload: map[string]any{
			"labels": map[string]string{"k": "host"},
			"nums":   []int{1, 2},
			"count":  &count,
			"room":   info,
			"byName": map[string]roomInfo{"a": {Attrs: map[string]string{"x": "1"}}},
			"grid":   [2][]int{{1}, {2}},
			"none":   nil,
		},
	}

	cp := orig.Clone()
	if !reflect.DeepEqual(cp.Payload, orig.Payload) {
		t.Fatalf("clone not deep-equal: %#v vs %#v", cp.Payload, orig.Payload)
	}

	orig.Payload["labels"].(map[string]string)["k"] = "mutated"
	orig.Payload["nums"].([]int)[0] = 99
	count = 7
	info.Name = "202"
	info.Attrs["floor"] = "9"
	orig.Payload["byName"].(map[string]roomInfo)["a"].Attrs["x"] = "2"
	orig.Payload["grid"].([2][]int)[0][0] = 5

	if got := cp.Payload["labels"].(map[string]string)["k"]; got != "host" {
		t.Fatalf("typed map aliased: %q", got)
	}
	if got := cp.Payload["nums"].([]int)[0]; got != 1 {
		t.Fatalf("typed slice aliased: %d", got)
	}
	if got := *cp.Payload["count"].(*int); got != 3 {
		t.Fatalf("pointer aliased: %d", got)
	}
	room := cp.Payload["room"].(*roomInfo)
	if room == info || room.Name != "101" || room.Attrs["floor"] != "1" {
		t.Fatalf("struct pointer aliased: %+v", room)
	}
	if got := cp.Payload["byName"].(map[string]roomInfo)["a"].Attrs["x"]; got != "1" {
		t.Fatalf("map inside struct value aliased: %q", got)
	}
	if got := cp.Payload["grid"].([2][]int)[0][0]; got != 1 {
		t.Fatalf("slice inside array aliased: %d", got)
	}
	if v, ok := cp.Payload["none"]; !ok || v != nil {
		t.Fatalf("nil entry lost: %v %v", v, ok)
	}
}

func TestCloneHandlesPointerCycles(t *testing.T) {
	a := &roomInfo{Name: "a"}
	a.next = a
	loop := []any{nil}
	loop[0] = &loop

	count := &countBox{N: 1}
	cp := Event{Payload: map[string]any{"self": a, "loop": &loop, "box": count, "n": &count.N}}.Clone()
	if cp.Payload["self"].(*roomInfo) == a {
		t.Fatalf("pointer not copied")
	}
	copied := cp.Payload["loop"].(*[]any)
	if copied == &loop || (*copied)[0].(*[]any) != copied {
		t.Fatalf("cycle not rebuilt inside the copy")
	}
	if got := *cp.Payload["n"].(*int); got != 1 || cp.Payload["box"].(*countBox).N != 1 {
		t.Fatalf("pointer to first field copied wrong: %d", got)
	}
}

type countBox struct{ N int }

func TestCloneEventsNil(t *testing.T) {
	out := CloneEvents(nil)
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestValidate(t *testing.T) {
	day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		ev   Event
		ok   bool
	}{
		{"valid", Event{Start: day, End: day}, true},
		{"missing start", Event{End: day}, false},
		{"missing end", Event{Start: day}, false},
		{"reversed", Event{Start: day, End: day.AddDate(0, 0, -1)}, false},
	}
	for _, tc := range cases {
		err := Validate(tc.ev)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			var me *MalformedEventError
			if !errors.As(err, &me) {
				t.Fatalf("%s: expected MalformedEventError, got %v", tc.name, err)
			}
		}
	}
}

func TestCalendarDateSameMonth(t *testing.T) {
	d := DateOf(time.Date(2024, time.March, 15, 13, 0, 0, 0, time.UTC))
	if d.String() != "2024-03-15" {
		t.Fatalf("unexpected date %s", d)
	}
	if !d.SameMonth(2024, time.March) {
		t.Fatalf("expected same month")
	}
	if d.SameMonth(2023, time.March) {
		t.Fatalf("different year must not match")
	}
}
