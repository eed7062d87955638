package idle

import (
	"context"
	"time"
)

// Frames opens one window per frame interval, each lasting Budget.
type Frames struct {
	Interval time.Duration
	Budget   time.Duration

	ticker *time.Ticker
}

// NewFrames creates a frame source. Non-positive values fall back to 16ms
// frames with an 8ms budget.
func NewFrames(interval, budget time.Duration) *Frames {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	if budget <= 0 {
		budget = interval / 2
	}
	if budget > interval {
		budget = interval
	}
	return &Frames{Interval: interval, Budget: budget}
}

// Next implements Source.
func (f *Frames) Next(ctx context.Context) (Deadline, error) {
	if f.ticker == nil {
		f.ticker = time.NewTicker(f.Interval)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case now := <-f.ticker.C:
		return untilDeadline{at: now.Add(f.Budget), now: time.Now}, nil
	}
}

// Stop releases the ticker.
func (f *Frames) Stop() {
	if f.ticker != nil {
		f.ticker.Stop()
		f.ticker = nil
	}
}

// Immediate opens a window of Budget as soon as it is asked for.
type Immediate struct {
	Budget time.Duration
}

// Next implements Source.
func (i Immediate) Next(ctx context.Context) (Deadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i.Budget <= 0 {
		return Unlimited(), nil
	}
	return Until(time.Now().Add(i.Budget)), nil
}
