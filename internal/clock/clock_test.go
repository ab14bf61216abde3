package clock

import (
	"testing"
	"time"
)

func TestSystemNeverGoesBackwards(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	readings := []time.Time{base, base.Add(-time.Hour), base.Add(2 * time.Second)}
	i := 0
	s := &System{now: func() time.Time {
		r := readings[i]
		i++
		return r
	}}

	if got := s.Now(); !got.Equal(base) {
		t.Fatalf("expected %v, got %v", base, got)
	}
	if got := s.Now(); !got.Equal(base) {
		t.Fatalf("expected clock to hold at %v after step back, got %v", base, got)
	}
	if got := s.Now(); !got.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("expected clock to resume, got %v", got)
	}
}

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC)
	f := NewFake(start)
	f.Advance(48 * time.Hour)
	if got := f.Now(); !got.Equal(start.Add(48 * time.Hour)) {
		t.Fatalf("expected advanced time, got %v", got)
	}
	f.Set(start)
	if got := f.Now(); !got.Equal(start) {
		t.Fatalf("expected reset time, got %v", got)
	}
}
