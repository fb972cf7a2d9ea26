package session

import "collabotp/pkg/statevector"

// runCleanup prunes every registered log down to the lower bound: the
// minimum vector component any currently known user still needs (spec
// §4.5 Cleanup, supplemented from inf_adopted_algorithm_cleanup's "lower
// bound = per-user minimum across all known user vectors"). The formula
// belongs to adopted.Algorithm.Cleanup's contract; only the session knows
// the per-user vectors it is computed from, since that bookkeeping lives
// in roster.User.Vector rather than in the algorithm itself.
func (s *Session) runCleanup() {
	s.alg.Cleanup(s.lowerBound())
}

func (s *Session) lowerBound() *statevector.StateVector {
	users := s.users.All()
	mins := make(map[uint64]uint64)
	for _, u := range users {
		for _, id := range u.Vector.Keys() {
			mins[id] = u.Vector.Get(id)
		}
	}
	for id := range mins {
		for _, u := range users {
			if n := u.Vector.Get(id); n < mins[id] {
				mins[id] = n
			}
		}
	}
	lb := statevector.New()
	for id, n := range mins {
		_ = lb.Set(id, n)
	}
	return lb
}
