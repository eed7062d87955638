// Package idle provides idle-window deadlines for cooperative scheduling.
//
// A Source hands out one Deadline per scheduling turn. Frames models a
// display refresh: each window opens on a ticker and closes after a fixed
// budget. Immediate opens windows back to back. Units and Unlimited are
// deterministic deadlines for tests and synchronous flushing.
package idle

import (
	"context"
	"sync/atomic"
	"time"
)

// Deadline reports how much time is left in an idle window.
type Deadline interface {
	TimeRemaining() time.Duration
}

// Source produces idle windows.
type Source interface {
	// Next blocks until the next idle window opens or ctx is done.
	Next(ctx context.Context) (Deadline, error)
}

// Clock is the time source used by deadlines.
type Clock func() time.Time

type untilDeadline struct {
	at  time.Time
	now Clock
}

func (d untilDeadline) TimeRemaining() time.Duration {
	left := d.at.Sub(d.now())
	if left < 0 {
		return 0
	}
	return left
}

// Until returns a deadline that expires at t.
func Until(t time.Time) Deadline {
	return untilDeadline{at: t, now: time.Now}
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }

// Unlimited returns a deadline that never expires.
func Unlimited() Deadline {
	return unlimited{}
}

// UnitDeadline grants a fixed number of work units to a loop that performs
// a unit and then checks the deadline. Each TimeRemaining call consumes one
// unit and reports time left only while units remain.
type UnitDeadline struct {
	left atomic.Int64
}

// Units returns a deadline that admits exactly n units of work (at least
// one, since a turn always performs a unit before checking).
func Units(n int) *UnitDeadline {
	d := &UnitDeadline{}
	d.left.Store(int64(n))
	return d
}

// TimeRemaining implements Deadline.
func (d *UnitDeadline) TimeRemaining() time.Duration {
	if d.left.Add(-1) <= 0 {
		return 0
	}
	return time.Hour
}

// Left returns the unused units.
func (d *UnitDeadline) Left() int {
	n := d.left.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
