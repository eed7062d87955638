package fiber

import (
	"fmt"
	"time"
)

// CommitReport summarizes one commit.
type CommitReport struct {
	// Seq numbers commits from 1.
	Seq uint64

	// Root names the render root: "#root" for a full render, otherwise the
	// component whose state update scheduled it.
	Root string

	// Partial is true when only a component subtree was re-rendered.
	Partial bool

	// Created, Updated and Deleted count fibers by effect tag. Deleted counts
	// deletion roots.
	Created int
	Updated int
	Deleted int

	// Inserted and Removed count display nodes attached to and detached
	// from their parents.
	Inserted int
	Removed  int

	// Changed counts updated nodes whose property delta was not empty.
	Changed int

	// EffectsRun and Cleanups count effect callbacks and cleanups invoked,
	// including unmount cleanups.
	EffectsRun int
	Cleanups   int

	// Units is the number of fibers processed for this pass. Restarts counts
	// passes abandoned in favour of this one.
	Units    int
	Restarts int

	// LiveFibers is the arena size after garbage collection.
	LiveFibers int

	Duration time.Duration
}

// String renders the report on one line.
func (r CommitReport) String() string {
	return fmt.Sprintf("commit #%d %s: +%d ~%d(%d changed) -%d, effects %d, cleanups %d, units %d",
		r.Seq, r.Root, r.Created, r.Updated, r.Changed, r.Deleted, r.EffectsRun, r.Cleanups, r.Units)
}
