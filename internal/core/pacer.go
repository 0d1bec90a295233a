package core

import "time"

const (
	// DefaultRate is the generation rate used when none is configured.
	DefaultRate = 40
	// MaxRate bounds the generation rate.
	MaxRate = 240

	maxLag = 100 * time.Millisecond
)

// Pacer gates generation advances to a steady rate independent of how often
// the host loop ticks.
type Pacer struct {
	rate        int
	step        time.Duration
	accumulator time.Duration
	last        time.Time
}

// NewPacer constructs a Pacer targeting rate generations per second.
func NewPacer(rate int) *Pacer {
	p := &Pacer{}
	p.SetRate(rate)
	p.accumulator = p.step
	return p
}

// SetRate changes the generation rate, clamped to [1, MaxRate]. Non-positive
// values select DefaultRate.
func (p *Pacer) SetRate(rate int) {
	if rate <= 0 {
		rate = DefaultRate
	}
	if rate > MaxRate {
		rate = MaxRate
	}
	p.rate = rate
	p.step = time.Second / time.Duration(rate)
}

// Rate returns the generation rate.
func (p *Pacer) Rate() int { return p.rate }

// Interval returns the time between generations.
func (p *Pacer) Interval() time.Duration { return p.step }

// Due returns how many generations are owed at now and consumes them. Debt
// beyond maxLag is discarded.
func (p *Pacer) Due(now time.Time) int {
	if p.last.IsZero() {
		p.last = now
	}
	if delta := now.Sub(p.last); delta > 0 {
		p.accumulator += delta
	}
	p.last = now

	if limit := time.Duration(p.maxCatchUp()) * p.step; p.accumulator > limit {
		p.accumulator = limit
	}
	n := int(p.accumulator / p.step)
	p.accumulator -= time.Duration(n) * p.step
	return n
}

// maxCatchUp is the most generations a single Due call may return.
func (p *Pacer) maxCatchUp() int {
	if n := int(maxLag / p.step); n > 1 {
		return n
	}
	return 1
}
