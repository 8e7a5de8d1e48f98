package collector

import "sync"

// SeenIndex tracks every record ID accepted during one run. It is created
// empty at run start, grows insert-only, and is thrown away with the run;
// nothing persists across runs. Check-and-insert is a single atomic
// operation so concurrent strategies cannot both claim the same ID.
type SeenIndex struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewSeenIndex() *SeenIndex {
	return &SeenIndex{ids: make(map[string]struct{})}
}

// Add records id and reports whether it was new.
func (s *SeenIndex) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *SeenIndex) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok
}

func (s *SeenIndex) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
