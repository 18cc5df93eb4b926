package security

import "testing"

func TestNewGlobalLimiterAllowsWithinBurst(t *testing.T) {
	l := NewGlobalLimiter(10, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("Allow() call %d = false; want true within burst", i)
		}
	}
	if l.Allow() {
		t.Fatalf("Allow() after burst exhausted = true; want false")
	}
}

func TestNewGlobalLimiterDefaultsOnInvalidInput(t *testing.T) {
	l := NewGlobalLimiter(0, 0)
	if l.Burst() != 400 {
		t.Fatalf("Burst() = %d; want default 400", l.Burst())
	}
	if float64(l.Limit()) != 200 {
		t.Fatalf("Limit() = %v; want default 200", l.Limit())
	}
}
