package log

import "sync/atomic"

// Sampler thins out repeated log lines on hot paths: the first event is let
// through, then every Every-th. It is safe for concurrent use and does not
// allocate.
type Sampler struct {
	Every uint64
	n     atomic.Uint64
}

// NewSampler returns a sampler that allows the first event and every
// every-th after it.
func NewSampler(every uint64) *Sampler {
	if every == 0 {
		every = 1
	}
	return &Sampler{Every: every}
}

// Allow records one event and reports whether it should be logged, along
// with the running event count.
func (s *Sampler) Allow() (bool, uint64) {
	n := s.n.Add(1)
	every := s.Every
	if every == 0 {
		every = 1
	}
	return n == 1 || n%every == 0, n
}

// Count returns the number of events seen so far.
func (s *Sampler) Count() uint64 {
	return s.n.Load()
}
