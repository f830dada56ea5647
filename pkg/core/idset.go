package core

// idSet is an insertion-ordered set. Removal is lazy: removed keys stay in
// the order slice and are skipped by drain.
type idSet[K comparable] struct {
	order []K
	// position of each member in order
	members map[K]int
}

func (s *idSet[K]) insert(k K) bool {
	if s.members == nil {
		s.members = make(map[K]int)
	}
	if _, ok := s.members[k]; ok {
		return false
	}
	s.members[k] = len(s.order)
	s.order = append(s.order, k)
	return true
}

func (s *idSet[K]) remove(k K) bool {
	if _, ok := s.members[k]; !ok {
		return false
	}
	delete(s.members, k)
	return true
}

func (s *idSet[K]) contains(k K) bool {
	_, ok := s.members[k]
	return ok
}

func (s *idSet[K]) len() int {
	return len(s.members)
}

// drain returns the members in insertion order and empties the set.
func (s *idSet[K]) drain() []K {
	out := make([]K, 0, len(s.members))
	for i, k := range s.order {
		if pos, ok := s.members[k]; ok && pos == i {
			out = append(out, k)
		}
	}
	clear(s.members)
	s.order = s.order[:0]
	return out
}
