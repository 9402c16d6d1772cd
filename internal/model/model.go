package model

import (
	"fmt"
	"reflect"
	"time"
)

// CalendarDate is a plain (year, month, day) triple without time of day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d CalendarDate) SameMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Event is a host-supplied record with a start and end date.
// The calendar core never mutates an Event it was handed; it works on
// copies produced by Clone.
type Event struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	AllDay bool   `json:"all_day,omitempty" yaml:"all_day,omitempty"`

	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`

	// Payload carries arbitrary host data (source id, location, ...).
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Clone returns a deep copy of e. Every map, slice, pointer and exported
// struct field reachable from Payload is copied as well, whatever its
// static type, so neither side can observe the other's edits.
func (e Event) Clone() Event {
	out := e
	if e.Payload != nil {
		out.Payload = cloneMap(e.Payload)
	}
	return out
}

// CloneEvents deep-copies a slice of events. A nil input yields an empty,
// non-nil slice.
func CloneEvents(in []Event) []Event {
	out := make([]Event, len(in))
	for i, ev := range in {
		out[i] = ev.Clone()
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	seen := make(map[copyKey]reflect.Value)
	for k, v := range in {
		if v == nil {
			out[k] = nil
			continue
		}
		out[k] = deepCopy(reflect.ValueOf(v), seen).Interface()
	}
	return out
}

// copyKey identifies a copied pointer. The type is part of the key because
// a struct and its first field share an address.
type copyKey struct {
	addr uintptr
	typ  reflect.Type
}

// deepCopy copies maps, slices, arrays, pointers, interfaces and the
// exported fields of structs recursively. Unexported struct fields,
// channels and funcs are shared. seen maps already copied pointers to their
// copies so cyclic graphs terminate.
func deepCopy(v reflect.Value, seen map[copyKey]reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value(), seen))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i), seen))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i), seen))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := copyKey{addr: v.Pointer(), typ: v.Type()}
		if c, ok := seen[key]; ok {
			return c
		}
		out := reflect.New(v.Elem().Type())
		seen[key] = out
		out.Elem().Set(deepCopy(v.Elem(), seen))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem(), seen))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if f := out.Field(i); f.CanSet() {
				f.Set(deepCopy(v.Field(i), seen))
			}
		}
		return out
	default:
		return v
	}
}

// MalformedEventError describes an event whose dates cannot be used to
// compute a day range.
type MalformedEventError struct {
	ID     string
	Reason string
}

func (e *MalformedEventError) Error() string {
	if e.ID == "" {
		return "malformed event: " + e.Reason
	}
	return "malformed event " + e.ID + ": " + e.Reason
}

// Validate checks that the event has usable start/end dates.
func Validate(e Event) error {
	switch {
	case e.Start.IsZero():
		return &MalformedEventError{ID: e.ID, Reason: "missing start"}
	case e.End.IsZero():
		return &MalformedEventError{ID: e.ID, Reason: "missing end"}
	case e.End.Before(e.Start):
		return &MalformedEventError{ID: e.ID, Reason: "end before start"}
	}
	return nil
}
