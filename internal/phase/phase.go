// Package phase derives a product's lifecycle phase from its four optional
// window timestamps. The timestamps arrive as free text from the admin path;
// anything unparseable is treated as absent, never as an error.
package phase

import (
	"strings"
	"time"
)

// Phase is the lifecycle state of a product within its wave.
type Phase string

const (
	// Collecting means members may still register purchase intent.
	Collecting Phase = "collecting"
	// Active means the selection window has closed and purchasing is open.
	Active Phase = "active"
	// Closed products are dropped from the read model entirely.
	Closed Phase = "closed"
)

// Schedule carries the four window edges exactly as stored.
type Schedule struct {
	SelectStart string
	SelectEnd   string
	SaleStart   string
	SaleEnd     string
}

var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	time.RFC3339,
}

var dateOnlyLayouts = []string{
	"2006-01-02",
	"2006/01/02",
}

// parseStart parses a window-start edge. Date-only values begin at midnight.
func parseStart(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, raw, time.Local); err == nil {
			return t, true
		}
	}
	for _, l := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(l, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseEnd parses a window-end edge. A date-only value means the whole day is
// still inside the window, so it resolves to the canonical end-of-day instant.
func parseEnd(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.ParseInLocation(l, raw, time.Local); err == nil {
			return t, true
		}
	}
	for _, l := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(l, raw, time.Local); err == nil {
			return endOfDay(t), true
		}
	}
	return time.Time{}, false
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Resolve maps a schedule and the current instant to a phase.
//
// A product with no schedule at all is always open for registration. Once any
// edge is present only the end bounds are authoritative: a missing start is
// treated as already started, a missing or unparseable end closes that branch.
func Resolve(s Schedule, now time.Time) Phase {
	selStart, okSelStart := parseStart(s.SelectStart)
	selEnd, okSelEnd := parseEnd(s.SelectEnd)
	_, okSaleStart := parseStart(s.SaleStart)
	saleEnd, okSaleEnd := parseEnd(s.SaleEnd)

	if !okSelStart && !okSelEnd && !okSaleStart && !okSaleEnd {
		return Collecting
	}
	if okSelEnd && !now.After(selEnd) && (!okSelStart || !now.Before(selStart)) {
		return Collecting
	}
	if okSelEnd && okSaleEnd && now.After(selEnd) && !now.After(saleEnd) {
		return Active
	}
	return Closed
}

// EndLabel renders the "ends at" display string for the relevant end edge of
// the given phase. The time-of-day portion is dropped when the stored end
// equals the canonical end-of-day instant.
func EndLabel(s Schedule, p Phase) string {
	var raw string
	switch p {
	case Collecting:
		raw = s.SelectEnd
	case Active:
		raw = s.SaleEnd
	default:
		return ""
	}
	end, ok := parseEnd(raw)
	if !ok {
		return ""
	}
	if end.Hour() == 23 && end.Minute() == 59 && end.Second() == 59 {
		return end.Format("2006-01-02")
	}
	return end.Format("2006-01-02 15:04")
}
