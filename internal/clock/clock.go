// Package clock supplies the current time to the escrow ledger.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// System reads the wall clock but never hands out a time earlier than one it
// already returned, so a stepped-back host clock cannot reopen a closed window.
type System struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewSystem() *System {
	return &System{now: time.Now}
}

func (s *System) Now() time.Time {
	t := s.now().UTC().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Before(s.last) {
		return s.last
	}
	s.last = t
	return t
}

// Fake is a manually driven clock for tests.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

func NewFake(start time.Time) *Fake {
	return &Fake{t: start.UTC()}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.t = t.UTC()
	f.mu.Unlock()
}
