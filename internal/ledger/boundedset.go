package ledger

import "strconv"

// BoundedSet is an insertion-ordered set with a capacity fixed when the
// owning record is created. The capacity is persisted with the members so
// every stored record carries its own size budget.
//
// BoundedSet values are immutable from the outside: With returns a fresh
// copy and never appends into a backing array shared with the receiver.
type BoundedSet[T comparable] struct {
	Capacity int `json:"capacity"`
	Members  []T `json:"members"`
}

// NewBoundedSet returns an empty set holding at most capacity members.
func NewBoundedSet[T comparable](capacity int, initial ...T) (BoundedSet[T], error) {
	s := BoundedSet[T]{Capacity: capacity, Members: []T{}}
	for _, m := range initial {
		next, _, err := s.With(m)
		if err != nil {
			return BoundedSet[T]{}, err
		}
		s = next
	}
	return s, nil
}

// Contains reports whether v is a member.
func (s BoundedSet[T]) Contains(v T) bool {
	for _, m := range s.Members {
		if m == v {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s BoundedSet[T]) Len() int {
	return len(s.Members)
}

// Full reports whether no further member can be added.
func (s BoundedSet[T]) Full() bool {
	return len(s.Members) >= s.Capacity
}

// With returns a copy of s that includes v. Adding an existing member is a
// no-op reported through added=false. Adding to a full set fails with
// CAPACITY_EXCEEDED.
func (s BoundedSet[T]) With(v T) (next BoundedSet[T], added bool, err error) {
	if s.Contains(v) {
		return s, false, nil
	}
	if s.Full() {
		return s, false, NewError(CodeCapacityExceeded, "capacity", strconv.Itoa(s.Capacity))
	}
	members := make([]T, len(s.Members), len(s.Members)+1)
	copy(members, s.Members)
	members = append(members, v)
	return BoundedSet[T]{Capacity: s.Capacity, Members: members}, true, nil
}
