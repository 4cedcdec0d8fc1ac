package repo

import (
	"fmt"

	"token-backend/utils"
)

// EventStore remembers which logs were already handled.
type EventStore struct {
	seen utils.Map[string, struct{}]
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func eventKey(tx string, idx uint) string {
	return fmt.Sprintf("%s:%d", tx, idx)
}

// FirstSeen 幂等检查：首次出现返回 true 并记录
func (s *EventStore) FirstSeen(tx string, idx uint) bool {
	_, existed := s.seen.TestAndSet(eventKey(tx, idx), struct{}{})
	return !existed
}

// Exists reports whether the log was handled, without recording it.
func (s *EventStore) Exists(tx string, idx uint) bool {
	_, ok := s.seen.Get(eventKey(tx, idx))
	return ok
}

// Forget drops a log, used when a reorg removes it.
func (s *EventStore) Forget(tx string, idx uint) {
	s.seen.Del(eventKey(tx, idx))
}

func (s *EventStore) Len() int {
	return s.seen.Len()
}
