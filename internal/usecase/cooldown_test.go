package usecase

import "testing"

func TestCooldownReadyByDefault(t *testing.T) {
	c := NewCooldown(12)
	if v := c.Tick(); v != 1.0 {
		t.Fatalf("fresh cooldown tick = %v, want 1.0", v)
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", c.Remaining())
	}
}

func TestCooldownConsumesExactlyN(t *testing.T) {
	const n = 12
	c := NewCooldown(n)
	c.Arm()

	for i := 0; i < n; i++ {
		if c.Remaining() == 0 {
			t.Fatalf("cooldown exhausted after %d ticks, want %d", i, n)
		}
		if v := c.Tick(); v != 0.0 {
			t.Fatalf("tick %d = %v, want 0.0 while busy", i, v)
		}
	}
	if c.Remaining() != 0 {
		t.Fatalf("remaining = %d after %d ticks, want 0", c.Remaining(), n)
	}
	if v := c.Tick(); v != 1.0 {
		t.Fatalf("tick after cooldown = %v, want 1.0", v)
	}
	if c.Remaining() != 0 {
		t.Fatal("counter must never go negative")
	}
}

func TestCooldownRearm(t *testing.T) {
	c := NewCooldown(3)
	c.Arm()
	c.Tick()
	c.Arm()
	if c.Remaining() != 3 {
		t.Fatalf("re-arm remaining = %d, want 3", c.Remaining())
	}
}
