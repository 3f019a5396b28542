package orapool

import (
	"time"

	"github.com/jackc/puddle"
)

// Stat is a snapshot of client-side pool statistics.
type Stat struct {
	s *puddle.Stat
}

func (s *Stat) AcquireCount() int64 {
	return s.s.AcquireCount()
}

func (s *Stat) AcquireDuration() time.Duration {
	return s.s.AcquireDuration()
}

func (s *Stat) AcquiredSessions() int {
	return int(s.s.AcquiredResources())
}

func (s *Stat) CanceledAcquireCount() int64 {
	return s.s.CanceledAcquireCount()
}

func (s *Stat) ConstructingSessions() int {
	return int(s.s.ConstructingResources())
}

func (s *Stat) EmptyAcquireCount() int64 {
	return s.s.EmptyAcquireCount()
}

func (s *Stat) IdleSessions() int {
	return int(s.s.IdleResources())
}

func (s *Stat) MaxSessions() int {
	return int(s.s.MaxResources())
}

func (s *Stat) TotalSessions() int {
	return int(s.s.TotalResources())
}
