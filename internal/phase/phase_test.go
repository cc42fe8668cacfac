package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveNoSchedule(t *testing.T) {
	now := time.Now()
	assert.Equal(t, Collecting, Resolve(Schedule{}, now))
	// garbage in every field reads as no schedule at all
	s := Schedule{SelectStart: "??", SelectEnd: "not a date", SaleStart: "-", SaleEnd: "soon"}
	assert.Equal(t, Collecting, Resolve(s, now))
}

func TestResolveWindows(t *testing.T) {
	// selection [T1,T2], sale (T2,T3]
	s := Schedule{
		SelectStart: "2026-08-01 10:00",
		SelectEnd:   "2026-08-10 22:00",
		SaleStart:   "2026-08-10 22:00",
		SaleEnd:     "2026-08-20 22:00",
	}
	at := func(v string) time.Time {
		ts, err := time.ParseInLocation("2006-01-02 15:04", v, time.Local)
		assert.NoError(t, err)
		return ts
	}

	assert.Equal(t, Closed, Resolve(s, at("2026-07-31 09:00")), "before T1")
	assert.Equal(t, Collecting, Resolve(s, at("2026-08-05 12:00")), "inside selection window")
	assert.Equal(t, Collecting, Resolve(s, at("2026-08-10 22:00")), "selection end inclusive")
	assert.Equal(t, Active, Resolve(s, at("2026-08-15 12:00")), "inside sale window")
	assert.Equal(t, Active, Resolve(s, at("2026-08-20 22:00")), "sale end inclusive")
	assert.Equal(t, Closed, Resolve(s, at("2026-08-21 00:00")), "after T3")
}

func TestResolveMissingStart(t *testing.T) {
	// a missing selection start is treated as already started
	s := Schedule{SelectEnd: "2026-08-10 22:00"}
	now := time.Date(2026, 8, 5, 12, 0, 0, 0, time.Local)
	assert.Equal(t, Collecting, Resolve(s, now))

	late := time.Date(2026, 8, 11, 0, 0, 0, 0, time.Local)
	assert.Equal(t, Closed, Resolve(s, late), "no sale end means no active phase")
}

func TestResolveInvalidStartIgnored(t *testing.T) {
	s := Schedule{
		SelectStart: "whenever",
		SelectEnd:   "2026-08-10 22:00",
	}
	now := time.Date(2026, 8, 5, 12, 0, 0, 0, time.Local)
	assert.Equal(t, Collecting, Resolve(s, now))
}

func TestResolveIsPure(t *testing.T) {
	s := Schedule{
		SelectStart: "2026-08-01 10:00",
		SelectEnd:   "2026-08-10 22:00",
		SaleEnd:     "2026-08-20 22:00",
	}
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.Local)
	first := Resolve(s, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Resolve(s, now))
	}
}

func TestResolveDateOnlyEnd(t *testing.T) {
	// a date-only end keeps the whole day open
	s := Schedule{SelectEnd: "2026-08-10"}
	now := time.Date(2026, 8, 10, 18, 30, 0, 0, time.Local)
	assert.Equal(t, Collecting, Resolve(s, now))
	next := time.Date(2026, 8, 11, 0, 0, 0, 0, time.Local)
	assert.Equal(t, Closed, Resolve(s, next))
}

func TestEndLabel(t *testing.T) {
	s := Schedule{
		SelectEnd: "2026-08-10",
		SaleEnd:   "2026-08-20 21:30",
	}
	assert.Equal(t, "2026-08-10", EndLabel(s, Collecting), "date-only end drops the time of day")
	assert.Equal(t, "2026-08-20 21:30", EndLabel(s, Active))
	assert.Equal(t, "", EndLabel(s, Closed))
	assert.Equal(t, "", EndLabel(Schedule{SelectEnd: "garbage"}, Collecting))

	eod := Schedule{SelectEnd: "2026-08-10 23:59:59"}
	assert.Equal(t, "2026-08-10", EndLabel(eod, Collecting), "explicit end-of-day drops the time of day")
}
