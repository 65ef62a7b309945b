package usecase

import "sync"

// Cooldown is a two-state machine: Ready (remaining == 0) and Busy
// (remaining > 0). Arming happens only on a CLOSE action; each decision call
// consumes one bar of an active cooldown. The counter never goes negative.
type Cooldown struct {
	mu        sync.Mutex
	bars      int
	remaining int
}

func NewCooldown(bars int) *Cooldown {
	return &Cooldown{bars: bars}
}

// Tick consumes one decision call and returns the cooldown input value for
// the policy: 1.0 when Ready, 0.0 while Busy.
func (c *Cooldown) Tick() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
		return 0.0
	}
	return 1.0
}

// Arm transitions Ready→Busy for the configured number of bars.
func (c *Cooldown) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = c.bars
}

// Remaining returns the bars left in the current cooldown.
func (c *Cooldown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
