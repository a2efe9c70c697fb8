package engine

import (
	"errors"
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDecayNow(t *testing.T) {
	got, err := Decay(rfc3339(testNow), testNow)
	if err != nil {
		t.Fatalf("Decay: %v", err)
	}
	if got != 1.0 {
		t.Errorf("Decay(now) = %v, want 1.0", got)
	}
}

func TestDecayHalfLife(t *testing.T) {
	got, err := Decay(rfc3339(testNow.Add(-8*time.Hour)), testNow)
	if err != nil {
		t.Fatalf("Decay: %v", err)
	}
	if !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("Decay(now-8h) = %v, want 0.5", got)
	}
}

func TestDecayBounds(t *testing.T) {
	ages := []time.Duration{
		0, time.Minute, time.Hour, 8 * time.Hour, 24 * time.Hour, 30 * 24 * time.Hour,
	}
	for _, age := range ages {
		got, err := Decay(rfc3339(testNow.Add(-age)), testNow)
		if err != nil {
			t.Fatalf("Decay(age %v): %v", age, err)
		}
		if got < 0 || got > 1 {
			t.Errorf("Decay(age %v) = %v, out of [0,1]", age, got)
		}
	}
}

func TestDecayFutureTimestamp(t *testing.T) {
	// A timestamp ahead of now counts as age zero, not an error.
	got, err := Decay(rfc3339(testNow.Add(2*time.Hour)), testNow)
	if err != nil {
		t.Fatalf("Decay: %v", err)
	}
	if got != 1.0 {
		t.Errorf("Decay(future) = %v, want 1.0", got)
	}
}

func TestDecayInvalidTimestamp(t *testing.T) {
	for _, ts := range []string{"", "not-a-time", "2026-13-45"} {
		_, err := Decay(ts, testNow)
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Decay(%q) error = %v, want ErrInvalidTimestamp", ts, err)
		}
	}
}
