package ecs

// store is the type erased view of a sparseSet the World keeps per kind.
type store interface {
	has(id entityID) bool
	remove(id entityID) bool
	len() int
}

// sparseSet stores components of one kind keyed by entity id. Values stay
// packed in dense; sparse maps an id to its dense index plus one.
type sparseSet[T any] struct {
	dense  []entityID
	values []*T
	sparse []int
}

func (s *sparseSet[T]) has(id entityID) bool {
	if id == 0 || int(id) > len(s.sparse) {
		return false
	}
	return s.sparse[id-1] > 0
}

func (s *sparseSet[T]) get(id entityID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return s.values[s.sparse[id-1]-1], true
}

func (s *sparseSet[T]) set(id entityID, v *T) {
	for int(id) > len(s.sparse) {
		s.sparse = append(s.sparse, 0)
	}
	if idx := s.sparse[id-1]; idx > 0 {
		s.values[idx-1] = v
		return
	}
	s.dense = append(s.dense, id)
	s.values = append(s.values, v)
	s.sparse[id-1] = len(s.dense)
}

func (s *sparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id-1] - 1
	last := len(s.dense) - 1
	lastID := s.dense[last]

	s.dense[idx] = lastID
	s.values[idx] = s.values[last]
	s.sparse[lastID-1] = idx + 1

	s.values[last] = nil
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	s.sparse[id-1] = 0
	return true
}

func (s *sparseSet[T]) len() int {
	return len(s.dense)
}
