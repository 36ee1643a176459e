package service

import "time"

// SetClock replaces the time source of s.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
